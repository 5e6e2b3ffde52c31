package controller

import (
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	ReminderService     *service.ReminderService
}

func NewNotificationController(notificationService *service.NotificationService, reminderService *service.ReminderService) *NotificationController {
	return &NotificationController{NotificationService: notificationService, ReminderService: reminderService}
}

// @Summary 获取通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "只看未读"
// @Param limit query int false "数量，默认 50"
// @Success 200 {object} util.Response
// @Router /api/notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	unread, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	list, err := c.NotificationService.List(ctx.Request.Context(), userID, unread, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

type markReadRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

func (c *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req markReadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.NotificationService.MarkRead(ctx.Request.Context(), userID, req.IDs); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": len(req.IDs)})
}

// @Summary 检查是否需要用餐提醒
// @Description 当前处于正餐时段且当天该餐还没有记录时生成提醒，否则 data 中 reminded 为 false
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/reminders/meal [post]
func (c *NotificationController) MealReminder(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	n, err := c.ReminderService.MaybeRemind(ctx.Request.Context(), userID, time.Now())
	if err != nil {
		respondError(ctx, err)
		return
	}
	if n == nil {
		util.Success(ctx, gin.H{"reminded": false})
		return
	}
	util.Success(ctx, gin.H{"reminded": true, "notification": n})
}
