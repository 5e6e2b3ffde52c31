package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg config.JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		util.Success(c, gin.H{"userId": id})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	cfg := config.JWTConfig{Secret: "secret", Issuer: "nutritrack"}
	r := newRouter(cfg)

	token, err := util.GenerateJWT(9, cfg.Secret, cfg.Issuer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"bad token", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
