package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/util"
)

func TestParseInsights(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		summary string
		recs    int
	}{
		{"plain json", `{"summary":"good","recommendations":["more water"]}`, "good", 1},
		{"fenced json", "```json\n{\"summary\":\"fenced\",\"recommendations\":[\"a\",\"b\"]}\n```", "fenced", 2},
		{"free text", "Eat more vegetables.", "Eat more vegetables.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInsights(tt.reply)
			if got["summary"] != tt.summary || len(got.Recommendations()) != tt.recs {
				t.Fatalf("insights = %v", got)
			}
		})
	}
}

func TestAIServiceGenerate(t *testing.T) {
	var received ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": `{"summary":"balanced day"}`}},
			},
		})
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL + "/", APIKey: "key", Model: "test-model", TimeoutSeconds: 5})
	got, err := svc.Generate(context.Background(), InsightDaily, map[string]int{"calories": 1800})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got["summary"] != "balanced day" {
		t.Fatalf("insights = %v", got)
	}
	if received.Model != "test-model" || len(received.Messages) != 2 || received.Messages[0].Role != "system" {
		t.Fatalf("request = %+v", received)
	}
}

func TestAIServiceFailuresAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	for _, cfg := range []config.AIConfig{{}, {BaseURL: srv.URL}} {
		_, err := NewAIService(cfg).Generate(context.Background(), InsightPeriod, nil)
		if !errors.Is(err, util.ErrInsightUnavailable) {
			t.Fatalf("base url %q: err = %v", cfg.BaseURL, err)
		}
	}
}
