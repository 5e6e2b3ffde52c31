package controller

import (
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NutrientGoalController struct {
	NutrientGoalService *service.NutrientGoalService
}

func NewNutrientGoalController(nutrientGoalService *service.NutrientGoalService) *NutrientGoalController {
	return &NutrientGoalController{NutrientGoalService: nutrientGoalService}
}

// Set 同一营养素重复设置时覆盖原目标
func (c *NutrientGoalController) Set(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.SetNutrientGoalInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.NutrientGoalService.Set(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

func (c *NutrientGoalController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	goals, err := c.NutrientGoalService.List(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}
