package util

import "errors"

var (
	ErrInvalidDateRange    = errors.New("end date is before start date")
	ErrRangeTooLarge       = errors.New("date range exceeds the allowed number of days")
	ErrInvalidDate         = errors.New("date must be formatted as yyyy-mm-dd")
	ErrInvalidMealType     = errors.New("meal type must be breakfast, lunch, dinner or snack")
	ErrInvalidNutrient     = errors.New("invalid nutrient name or value")
	ErrInvalidSource       = errors.New("source must be manual, photo, voice or ai")
	ErrFoodLogNotFound     = errors.New("food log not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrGoalNotActive       = errors.New("goal is not active")
	ErrInvalidGoalStatus   = errors.New("invalid goal status")
	ErrUnsupportedGoalType = errors.New("unsupported goal type")
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrInvalidChallenge    = errors.New("challenge needs a valid type, targets and duration")
	ErrNotEnrolled         = errors.New("user has not joined this challenge")
	ErrAlreadyEnrolled     = errors.New("user already joined this challenge")
	ErrChallengeClosed     = errors.New("challenge is closed")
	ErrInsightUnavailable  = errors.New("insight generator unavailable")
)
