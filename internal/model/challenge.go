package model

import (
	"time"

	"nutritrack_backend/internal/analysis"

	"gorm.io/datatypes"
)

type ChallengeStatus string

const (
	ChallengeActive ChallengeStatus = "active"
	ChallengeClosed ChallengeStatus = "closed"
)

type ParticipationStatus string

const (
	ParticipationJoined    ParticipationStatus = "joined"
	ParticipationCompleted ParticipationStatus = "completed"
)

type Challenge struct {
	BaseModel
	CreatorID    uint                                   `gorm:"index;not null" json:"creatorId"`
	Title        string                                 `gorm:"size:255;not null" json:"title"`
	Description  string                                 `gorm:"type:text" json:"description"`
	Type         string                                 `gorm:"size:32;not null" json:"type"`
	Targets      datatypes.JSONType[map[string]float64] `json:"targets"`
	StartDate    string                                 `gorm:"size:10;not null" json:"startDate"`
	DurationDays int                                    `gorm:"not null" json:"durationDays"`
	Status       ChallengeStatus                        `gorm:"size:20;default:active" json:"status"`
	Participants []UserChallenge                        `gorm:"foreignKey:ChallengeID" json:"participants,omitempty"`
}

func (Challenge) TableName() string {
	return "challenges"
}

func (c Challenge) ChallengeType() analysis.ChallengeType {
	return analysis.ChallengeType(c.Type)
}

// Window 挑战覆盖的日期区间 [start, end]
func (c Challenge) Window(loc *time.Location) (time.Time, time.Time, error) {
	start, err := analysis.ParseDate(c.StartDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	days := c.DurationDays
	if days < 1 {
		days = 1
	}
	return start, start.AddDate(0, 0, days-1), nil
}

// UserChallenge 用户参与挑战的进度
type UserChallenge struct {
	BaseModel
	ChallengeID       uint                                   `gorm:"uniqueIndex:idx_challenge_user;not null" json:"challengeId"`
	UserID            uint                                   `gorm:"uniqueIndex:idx_challenge_user;index;not null" json:"userId"`
	Completion        float64                                `gorm:"default:0" json:"completion"`
	Metrics           datatypes.JSONType[map[string]float64] `json:"metrics"`
	MilestonesReached datatypes.JSONType[[]float64]          `json:"milestonesReached"`
	Status            ParticipationStatus                    `gorm:"size:20;default:joined" json:"status"`
	LastTrackedAt     *time.Time                             `json:"lastTrackedAt,omitempty"`
	CompletedAt       *time.Time                             `json:"completedAt,omitempty"`
}

func (UserChallenge) TableName() string {
	return "user_challenges"
}

// ReachedThreshold 该完成度阈值是否已经通知过
func (u UserChallenge) ReachedThreshold(threshold float64) bool {
	for _, t := range u.MilestonesReached.Data() {
		if t == threshold {
			return true
		}
	}
	return false
}
