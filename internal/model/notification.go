package model

import "gorm.io/datatypes"

type NotificationType string

const (
	NotifyGoalMilestone      NotificationType = "goal_milestone"
	NotifyGoalCompleted      NotificationType = "goal_completed"
	NotifyChallengeMilestone NotificationType = "challenge_milestone"
	NotifyChallengeCompleted NotificationType = "challenge_completed"
	NotifyMealReminder       NotificationType = "meal_reminder"
)

type Notification struct {
	BaseModel
	UserID  uint              `gorm:"index;not null" json:"userId"`
	Type    NotificationType  `gorm:"size:32;not null" json:"type"`
	Title   string            `gorm:"size:255" json:"title"`
	Message string            `gorm:"type:text" json:"message"`
	Data    datatypes.JSONMap `json:"data,omitempty"`
	Read    bool              `gorm:"default:false" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}
