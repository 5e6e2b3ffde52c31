package controller

import (
	"errors"
	"net/http"

	"nutritrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

var badRequestErrors = []error{
	util.ErrInvalidDateRange,
	util.ErrRangeTooLarge,
	util.ErrInvalidDate,
	util.ErrInvalidMealType,
	util.ErrInvalidNutrient,
	util.ErrInvalidSource,
	util.ErrInvalidGoalStatus,
	util.ErrUnsupportedGoalType,
	util.ErrInvalidChallenge,
}

var notFoundErrors = []error{
	util.ErrFoodLogNotFound,
	util.ErrGoalNotFound,
	util.ErrChallengeNotFound,
}

var conflictErrors = []error{
	util.ErrGoalNotActive,
	util.ErrAlreadyEnrolled,
	util.ErrChallengeClosed,
}

func matches(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondError 把服务层错误映射为统一响应
func respondError(ctx *gin.Context, err error) {
	switch {
	case matches(err, badRequestErrors):
		util.BadRequest(ctx, err.Error())
	case matches(err, notFoundErrors):
		util.NotFound(ctx, err.Error())
	case matches(err, conflictErrors):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrInsightUnavailable):
		util.BadGateway(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// currentUser 未登录时直接返回 401
func currentUser(ctx *gin.Context) (uint, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return user.UserID, true
}

func pathID(ctx *gin.Context) (uint, bool) {
	id, ok := util.ParseIDParam(ctx, "id")
	if !ok {
		util.BadRequest(ctx, "Invalid id")
	}
	return id, ok
}
