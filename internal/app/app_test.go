package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/util"
	"nutritrack_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: gin.TestMode, Timezone: "UTC"},
		JWT:       config.JWTConfig{Secret: "test-secret", Issuer: "nutritrack"},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		Analysis: config.AnalysisConfig{
			MaxRangeDays:    31,
			CacheTTLMinutes: 5,
			ParallelDays:    2,
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	a := Build(testConfig(), db, nil)
	t.Cleanup(func() { a.stop() })
	return a
}

func request(t *testing.T, a *App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w.Code
}

func TestRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	token, err := util.GenerateJWT(7, a.Config.JWT.Secret, a.Config.JWT.Issuer, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"streak without token", http.MethodGet, "/api/analysis/streak", "", http.StatusUnauthorized},
		{"streak with token", http.MethodGet, "/api/analysis/streak", token, http.StatusOK},
		{"saved snapshots", http.MethodGet, "/api/analysis/snapshots", token, http.StatusOK},
		{"food log by id", http.MethodGet, "/api/food-logs/1", token, http.StatusNotFound},
		{"goal analysis is not an id", http.MethodGet, "/api/goals/analysis", token, http.StatusOK},
		{"notifications", http.MethodGet, "/api/notifications", token, http.StatusOK},
		{"forged token", http.MethodGet, "/api/goals", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := request(t, a, tt.method, tt.path, tt.token); got != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestApplyConfigUpdatesAnalysisAndLogLevel(t *testing.T) {
	a := newTestApp(t)
	old := logger.Level()
	t.Cleanup(func() { logger.SetLevel(old.String()) })

	token, _ := util.GenerateJWT(7, a.Config.JWT.Secret, a.Config.JWT.Issuer, time.Hour)
	path := "/api/analysis/period?start=2024-03-01&end=2024-03-10"
	if got := request(t, a, http.MethodGet, path, token); got != http.StatusOK {
		t.Fatalf("period before reload = %d", got)
	}

	reloaded := testConfig()
	reloaded.Analysis.MaxRangeDays = 7
	reloaded.Log.Level = "warn"
	a.ApplyConfig(reloaded)

	if got := request(t, a, http.MethodGet, path, token); got != http.StatusBadRequest {
		t.Fatalf("period after reload = %d", got)
	}
	if logger.Level() != zapcore.WarnLevel {
		t.Fatalf("log level = %v", logger.Level())
	}
}
