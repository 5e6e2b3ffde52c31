package controller

import (
	"nutritrack_backend/internal/service"
	"nutritrack_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
)

// AnalysisController 营养分析接口
type AnalysisController struct {
	AnalysisService *service.AnalysisService
	Loc             *time.Location
}

func NewAnalysisController(analysisService *service.AnalysisService, loc *time.Location) *AnalysisController {
	return &AnalysisController{AnalysisService: analysisService, Loc: loc}
}

// @Summary 单日营养分析
// @Tags 营养分析
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 yyyy-mm-dd，默认今天"
// @Success 200 {object} util.Response
// @Router /api/analysis/daily [get]
func (c *AnalysisController) GetDaily(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	date, err := util.ParseDateQuery(ctx, "date", c.AnalysisService.Today(), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result, err := c.AnalysisService.GetDailyAnalysis(ctx.Request.Context(), userID, date)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 保存单日营养快照
// @Tags 营养分析
// @Produce json
// @Security BearerAuth
// @Param date query string false "日期 yyyy-mm-dd，默认今天"
// @Success 200 {object} util.Response
// @Router /api/analysis/daily/snapshot [post]
func (c *AnalysisController) SaveSnapshot(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	date, err := util.ParseDateQuery(ctx, "date", c.AnalysisService.Today(), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	snapshot, err := c.AnalysisService.SaveDailySnapshot(ctx.Request.Context(), userID, date)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, snapshot)
}

// @Summary 已保存的营养快照
// @Description start 默认为 end 前 6 天，end 默认今天
// @Tags 营养分析
// @Produce json
// @Security BearerAuth
// @Param start query string false "开始日期"
// @Param end query string false "结束日期"
// @Success 200 {object} util.Response
// @Router /api/analysis/snapshots [get]
func (c *AnalysisController) ListSnapshots(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	end, err := util.ParseDateQuery(ctx, "end", c.AnalysisService.Today(), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	start, err := util.ParseDateQuery(ctx, "start", end.AddDate(0, 0, -6), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	list, err := c.AnalysisService.ListSnapshots(ctx.Request.Context(), userID, start, end)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// @Summary 多日营养趋势
// @Description start 默认为 end 前 6 天，end 默认今天
// @Tags 营养分析
// @Produce json
// @Security BearerAuth
// @Param start query string false "开始日期"
// @Param end query string false "结束日期"
// @Success 200 {object} util.Response
// @Router /api/analysis/period [get]
func (c *AnalysisController) GetPeriod(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	end, err := util.ParseDateQuery(ctx, "end", c.AnalysisService.Today(), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}
	start, err := util.ParseDateQuery(ctx, "start", end.AddDate(0, 0, -6), c.Loc)
	if err != nil {
		respondError(ctx, err)
		return
	}

	result, err := c.AnalysisService.AnalyzePeriod(ctx.Request.Context(), userID, start, end)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 记录连续天数
// @Tags 营养分析
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/analysis/streak [get]
func (c *AnalysisController) GetStreak(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}

	streak, err := c.AnalysisService.GetStreak(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, streak)
}
