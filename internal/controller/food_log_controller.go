package controller

import (
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

type FoodLogController struct {
	FoodLogService *service.FoodLogService
	Loc            *time.Location
}

func NewFoodLogController(foodLogService *service.FoodLogService, loc *time.Location) *FoodLogController {
	return &FoodLogController{FoodLogService: foodLogService, Loc: loc}
}

// @Summary 记录饮食
// @Tags 饮食记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param log body service.CreateFoodLogInput true "饮食记录"
// @Success 201 {object} util.Response
// @Router /api/food-logs [post]
func (c *FoodLogController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateFoodLogInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	log, err := c.FoodLogService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, log)
}

// @Summary 按日期获取饮食记录
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 yyyy-mm-dd，默认今天"
// @Success 200 {object} util.Response
// @Router /api/food-logs [get]
func (c *FoodLogController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	date, err := util.ParseDateQuery(ctx, "date", time.Now().In(c.Loc), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	logs, err := c.FoodLogService.ListByDate(ctx.Request.Context(), userID, date)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}

// @Summary 获取单条饮食记录
// @Tags 饮食记录
// @Produce json
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/food-logs/{id} [get]
func (c *FoodLogController) Get(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	log, err := c.FoodLogService.Get(ctx.Request.Context(), userID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, log)
}

// @Summary 删除饮食记录
// @Tags 饮食记录
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} util.Response
// @Router /api/food-logs/{id} [delete]
func (c *FoodLogController) Delete(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	if err := c.FoodLogService.Delete(ctx.Request.Context(), userID, id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}
