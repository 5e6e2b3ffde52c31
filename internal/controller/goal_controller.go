package controller

import (
	"nutritrack_backend/internal/model"
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GoalController 处理体重、营养、习惯等目标的API请求
type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

// @Summary 创建目标
// @Description 自动生成 25/50/75/100% 四个里程碑
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param goal body service.CreateGoalInput true "目标信息"
// @Success 201 {object} util.Response
// @Router /api/goals [post]
func (c *GoalController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateGoalInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, goal)
}

// @Summary 获取目标列表
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param type query string false "目标类型"
// @Param status query string false "目标状态"
// @Success 200 {object} util.Response
// @Router /api/goals [get]
func (c *GoalController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	status := model.GoalStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		respondError(ctx, util.ErrInvalidGoalStatus)
		return
	}

	goals, err := c.GoalService.List(ctx.Request.Context(), userID, ctx.Query("type"), status)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goals)
}

// @Summary 更新目标进度
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "目标ID"
// @Param progress body service.UpdateProgressInput true "当前数值"
// @Success 200 {object} util.Response
// @Router /api/goals/{id}/progress [post]
func (c *GoalController) UpdateProgress(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.UpdateProgressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.GoalService.UpdateProgress(ctx.Request.Context(), userID, id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 目标分析
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param type query string false "目标类型"
// @Success 200 {object} util.Response
// @Router /api/goals/analysis [get]
func (c *GoalController) Analyze(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	result, err := c.GoalService.AnalyzeGoals(ctx.Request.Context(), userID, ctx.Query("type"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Adjust 修改目标值、截止日期或标题
func (c *GoalController) Adjust(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req service.AdjustGoalInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.AdjustGoal(ctx.Request.Context(), userID, id, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (c *GoalController) SetStatus(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	goal, err := c.GoalService.SetStatus(ctx.Request.Context(), userID, id, model.GoalStatus(req.Status))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, goal)
}
