package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutritrack_backend/internal/analysis"
	"nutritrack_backend/internal/config"
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/repository"
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// asUser 代替 JWT 中间件写入身份
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != 0 {
			c.Set(util.ContextUserKey, &util.Claims{UserID: id})
		}
		c.Next()
	}
}

func newTestRouter(t *testing.T, userID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newTestDB(t)
	loc := time.UTC
	cache := repository.NewMemoryAnalysisCache()
	foodLogs := repository.NewFoodLogRepository(db)
	nutrientGoals := repository.NewNutrientGoalRepository(db)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db))

	analysisService := service.NewAnalysisService(foodLogs, nutrientGoals, repository.NewProgressRepository(db), cache,
		service.NoopInsightGenerator{}, config.AnalysisConfig{MaxRangeDays: 31, CacheTTLMinutes: 5, ParallelDays: 2}, loc)

	foodLogCtl := NewFoodLogController(service.NewFoodLogService(foodLogs, cache, loc), loc)
	nutrientCtl := NewNutrientGoalController(service.NewNutrientGoalService(nutrientGoals, cache))
	analysisCtl := NewAnalysisController(analysisService, loc)
	goalCtl := NewGoalController(service.NewGoalService(repository.NewGoalRepository(db), notifications, nil, loc))
	challengeCtl := NewChallengeController(service.NewChallengeService(repository.NewChallengeRepository(db), analysisService, notifications, loc))
	notificationCtl := NewNotificationController(notifications, service.NewReminderService(foodLogs, notifications, loc))

	r := gin.New()
	r.GET("/api/health", NewHealthController(db, nil).HealthCheck)

	api := r.Group("/api", asUser(userID))
	api.POST("/food-logs", foodLogCtl.Create)
	api.GET("/food-logs", foodLogCtl.List)
	api.GET("/food-logs/:id", foodLogCtl.Get)
	api.DELETE("/food-logs/:id", foodLogCtl.Delete)
	api.PUT("/nutrient-goals", nutrientCtl.Set)
	api.GET("/nutrient-goals", nutrientCtl.List)
	api.GET("/analysis/daily", analysisCtl.GetDaily)
	api.POST("/analysis/daily/snapshot", analysisCtl.SaveSnapshot)
	api.GET("/analysis/snapshots", analysisCtl.ListSnapshots)
	api.GET("/analysis/period", analysisCtl.GetPeriod)
	api.GET("/analysis/streak", analysisCtl.GetStreak)
	api.POST("/goals", goalCtl.Create)
	api.GET("/goals", goalCtl.List)
	api.POST("/goals/:id/progress", goalCtl.UpdateProgress)
	api.PATCH("/goals/:id/status", goalCtl.SetStatus)
	api.POST("/challenges", challengeCtl.Create)
	api.POST("/challenges/:id/join", challengeCtl.Join)
	api.POST("/challenges/:id/track", challengeCtl.Track)
	api.GET("/challenges/:id/leaderboard", challengeCtl.Leaderboard)
	api.GET("/notifications", notificationCtl.List)
	api.PATCH("/notifications/read", notificationCtl.MarkRead)
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r *gin.Engine, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, env
}

func TestFoodLogEndpoints(t *testing.T) {
	r := newTestRouter(t, 1)

	code, env := do(t, r, http.MethodPost, "/api/food-logs", gin.H{
		"logDate": "2024-03-01", "mealType": "lunch", "foodItem": "salad", "calories": 420,
		"macronutrients": gin.H{"proteins": 20, "carbs": 30, "fats": 15},
	})
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, env.Message)
	}
	var created model.FoodLog
	json.Unmarshal(env.Data, &created)

	code, env = do(t, r, http.MethodGet, "/api/food-logs?date=2024-03-01", nil)
	var logs []model.FoodLog
	json.Unmarshal(env.Data, &logs)
	if code != http.StatusOK || len(logs) != 1 || logs[0].FoodItem != "salad" {
		t.Fatalf("list = %d %v", code, logs)
	}

	path := fmt.Sprintf("/api/food-logs/%d", created.ID)
	code, env = do(t, r, http.MethodGet, path, nil)
	var fetched model.FoodLog
	json.Unmarshal(env.Data, &fetched)
	if code != http.StatusOK || fetched.ID != created.ID || fetched.Calories != 420 {
		t.Fatalf("get = %d %+v", code, fetched)
	}
	if code, _ := do(t, r, http.MethodDelete, path, nil); code != http.StatusOK {
		t.Fatalf("delete = %d", code)
	}
	if code, _ := do(t, r, http.MethodDelete, path, nil); code != http.StatusNotFound {
		t.Fatalf("second delete = %d", code)
	}
	if code, _ := do(t, r, http.MethodGet, path, nil); code != http.StatusNotFound {
		t.Fatalf("get deleted = %d", code)
	}
}

func TestSavedSnapshotsAreListedByRange(t *testing.T) {
	r := newTestRouter(t, 1)

	for _, date := range []string{"2024-03-01", "2024-03-03"} {
		if code, _ := do(t, r, http.MethodPost, "/api/food-logs", gin.H{"logDate": date, "mealType": "lunch", "foodItem": "soup", "calories": 300}); code != http.StatusCreated {
			t.Fatalf("create %s = %d", date, code)
		}
		if code, env := do(t, r, http.MethodPost, "/api/analysis/daily/snapshot?date="+date, nil); code != http.StatusOK {
			t.Fatalf("snapshot %s = %d %s", date, code, env.Message)
		}
	}

	code, env := do(t, r, http.MethodGet, "/api/analysis/snapshots?start=2024-03-01&end=2024-03-07", nil)
	var list []model.Progress
	json.Unmarshal(env.Data, &list)
	if code != http.StatusOK || len(list) != 2 || list[0].Date != "2024-03-01" || list[1].CalorieIntake != 300 {
		t.Fatalf("snapshots = %d %+v", code, list)
	}

	if code, _ := do(t, r, http.MethodGet, "/api/analysis/snapshots?start=2024-01-01&end=2024-03-07", nil); code != http.StatusBadRequest {
		t.Fatalf("oversized range = %d", code)
	}
}

func TestValidationErrorsAreBadRequests(t *testing.T) {
	r := newTestRouter(t, 1)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"meal type", http.MethodPost, "/api/food-logs", gin.H{"foodItem": "x", "mealType": "brunch"}},
		{"missing food item", http.MethodPost, "/api/food-logs", gin.H{"calories": 10}},
		{"bad date", http.MethodGet, "/api/food-logs?date=yesterday", nil},
		{"reversed range", http.MethodGet, "/api/analysis/period?start=2024-03-05&end=2024-03-01", nil},
		{"range too long", http.MethodGet, "/api/analysis/period?start=2024-01-01&end=2024-03-01", nil},
		{"goal type", http.MethodPost, "/api/goals", gin.H{"type": "sleep", "target": 8}},
		{"nutrient target", http.MethodPut, "/api/nutrient-goals", gin.H{"nutrient": "iron", "dailyTarget": -1}},
		{"bad id", http.MethodPost, "/api/goals/abc/progress", gin.H{"value": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, env := do(t, r, tt.method, tt.path, tt.body); code != http.StatusBadRequest {
				t.Fatalf("status = %d (%s)", code, env.Message)
			}
		})
	}
}

func TestPeriodAnalysisDefaultsToAWeek(t *testing.T) {
	r := newTestRouter(t, 1)

	code, env := do(t, r, http.MethodGet, "/api/analysis/period?end=2024-03-07", nil)
	if code != http.StatusOK {
		t.Fatalf("period = %d %s", code, env.Message)
	}
	var result service.PeriodAnalysis
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.StartDate != "2024-03-01" || len(result.DailyRecords) != 7 {
		t.Fatalf("period = %s..%s with %d days", result.StartDate, result.EndDate, len(result.DailyRecords))
	}
}

func TestGoalEndpoints(t *testing.T) {
	r := newTestRouter(t, 1)

	code, env := do(t, r, http.MethodPost, "/api/goals", gin.H{"type": "weight", "title": "cut", "target": 70, "startingPoint": 80})
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, env.Message)
	}
	var goal model.Goal
	json.Unmarshal(env.Data, &goal)

	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/goals/%d/progress", goal.ID), gin.H{"value": 70})
	if code != http.StatusOK {
		t.Fatalf("progress = %d %s", code, env.Message)
	}
	var result service.ProgressResult
	json.Unmarshal(env.Data, &result)
	if !result.Completed || len(result.NewMilestones) != 4 {
		t.Fatalf("result = %+v", result)
	}

	// 已完成的目标不能继续更新
	if code, _ := do(t, r, http.MethodPost, fmt.Sprintf("/api/goals/%d/progress", goal.ID), gin.H{"value": 69}); code != http.StatusConflict {
		t.Fatalf("progress on completed goal = %d", code)
	}
	if code, _ := do(t, r, http.MethodPost, "/api/goals/999/progress", gin.H{"value": 1}); code != http.StatusNotFound {
		t.Fatalf("missing goal = %d", code)
	}

	_, env = do(t, r, http.MethodGet, "/api/notifications", nil)
	var notes []model.Notification
	json.Unmarshal(env.Data, &notes)
	if len(notes) != 5 {
		t.Fatalf("notifications = %d", len(notes))
	}
}

func TestChallengeEndpoints(t *testing.T) {
	r := newTestRouter(t, 1)
	today := analysis.DateKey(time.Now().UTC())

	code, env := do(t, r, http.MethodPost, "/api/challenges", gin.H{
		"title": "Log daily", "type": "logging_streak", "startDate": today, "durationDays": 7,
		"targets": gin.H{"total_logs": 10},
	})
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, env.Message)
	}
	var c model.Challenge
	json.Unmarshal(env.Data, &c)

	if code, _ := do(t, r, http.MethodPost, fmt.Sprintf("/api/challenges/%d/track", c.ID), nil); code != http.StatusForbidden {
		t.Fatalf("track before join = %d", code)
	}
	if code, _ := do(t, r, http.MethodPost, fmt.Sprintf("/api/challenges/%d/join", c.ID), nil); code != http.StatusCreated {
		t.Fatalf("join = %d", code)
	}
	if code, _ := do(t, r, http.MethodPost, fmt.Sprintf("/api/challenges/%d/join", c.ID), nil); code != http.StatusConflict {
		t.Fatalf("second join = %d", code)
	}
	if code, _ := do(t, r, http.MethodPost, fmt.Sprintf("/api/challenges/%d/track", c.ID), nil); code != http.StatusOK {
		t.Fatalf("track = %d", code)
	}

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/challenges/%d/leaderboard", c.ID), nil)
	var board []service.LeaderboardEntry
	json.Unmarshal(env.Data, &board)
	if code != http.StatusOK || len(board) != 1 || board[0].Rank != 1 || board[0].UserID != 1 {
		t.Fatalf("leaderboard = %d %+v", code, board)
	}
}

func TestNotificationInbox(t *testing.T) {
	r := newTestRouter(t, 1)

	_, env := do(t, r, http.MethodPost, "/api/goals", gin.H{"type": "weight", "title": "cut", "target": 70, "startingPoint": 80})
	var goal model.Goal
	json.Unmarshal(env.Data, &goal)
	do(t, r, http.MethodPost, fmt.Sprintf("/api/goals/%d/progress", goal.ID), gin.H{"value": 70})

	_, env = do(t, r, http.MethodGet, "/api/notifications", nil)
	var notes []model.Notification
	json.Unmarshal(env.Data, &notes)
	if len(notes) < 2 {
		t.Fatalf("notifications = %d", len(notes))
	}

	ids := []uint{notes[0].ID, notes[1].ID}
	if code, env := do(t, r, http.MethodPatch, "/api/notifications/read", gin.H{"ids": ids}); code != http.StatusOK {
		t.Fatalf("mark read = %d %s", code, env.Message)
	}
	if code, _ := do(t, r, http.MethodPatch, "/api/notifications/read", gin.H{"ids": []uint{}}); code != http.StatusBadRequest {
		t.Fatalf("empty mark read = %d", code)
	}

	_, env = do(t, r, http.MethodGet, "/api/notifications?unread=true", nil)
	var unread []model.Notification
	json.Unmarshal(env.Data, &unread)
	if len(unread) != len(notes)-2 {
		t.Fatalf("unread = %d, want %d", len(unread), len(notes)-2)
	}
}

func TestUnauthenticatedRequests(t *testing.T) {
	r := newTestRouter(t, 0)
	if code, _ := do(t, r, http.MethodGet, "/api/analysis/streak", nil); code != http.StatusUnauthorized {
		t.Fatalf("streak without user = %d", code)
	}
	code, env := do(t, r, http.MethodGet, "/api/health", nil)
	if code != http.StatusOK || !bytes.Contains(env.Data, []byte(`"cache":"memory"`)) {
		t.Fatalf("health = %d %s", code, env.Data)
	}
}
