package analysis

import "errors"

var (
	ErrInvalidRange        = errors.New("end date is before start date")
	ErrUnsupportedGoalType = errors.New("unsupported goal type")
)
