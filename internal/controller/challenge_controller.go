package controller

import (
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// @Summary 创建挑战
// @Tags 挑战
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param challenge body service.CreateChallengeInput true "挑战信息"
// @Success 201 {object} util.Response
// @Router /api/challenges [post]
func (c *ChallengeController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req service.CreateChallengeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

func (c *ChallengeController) Join(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	participation, err := c.ChallengeService.Join(ctx.Request.Context(), userID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, participation)
}

// Track 重新统计当前用户的挑战进度
func (c *ChallengeController) Track(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx)
	if !ok {
		return
	}

	participation, err := c.ChallengeService.TrackProgress(ctx.Request.Context(), userID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, participation)
}

func (c *ChallengeController) Leaderboard(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	board, err := c.ChallengeService.Leaderboard(ctx.Request.Context(), id, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, board)
}
