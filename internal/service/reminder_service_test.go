package service

import (
	"context"
	"testing"
	"time"

	"nutritrack_backend/internal/model"
)

func TestMaybeRemind(t *testing.T) {
	f := newFixture(t, time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC))
	svc := NewReminderService(f.foodLogs, f.notifier, time.UTC)
	ctx := context.Background()

	f.addLog(t, 1, time.Date(2024, 3, 4, 12, 15, 0, 0, time.UTC), "lunch", 650)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"breakfast not logged", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC), "breakfast"},
		{"lunch already logged", time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC), ""},
		{"afternoon has no reminder", time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC), ""},
		{"dinner not logged", time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), "dinner"},
		{"late night has no reminder", time.Date(2024, 3, 4, 22, 0, 0, 0, time.UTC), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := svc.MaybeRemind(ctx, 1, tt.at)
			if err != nil {
				t.Fatalf("remind: %v", err)
			}
			if tt.want == "" {
				if n != nil {
					t.Fatalf("unexpected reminder %+v", n)
				}
				return
			}
			if n == nil || n.Data["meal_type"] != tt.want || n.Type != model.NotifyMealReminder {
				t.Fatalf("reminder = %+v", n)
			}
		})
	}

	if got := len(f.notifier.ofType(model.NotifyMealReminder)); got != 2 {
		t.Fatalf("reminders sent = %d", got)
	}
}
