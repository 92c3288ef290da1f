package controller

import (
	"concept_review_backend/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetLeaderboard godoc
// @Summary 获取排行榜
// @Description 某一天（UTC+8）的组别排行、个人前 N 名与学生详情。未指定学号时详情取个人榜第一名
// @Tags 排行榜
// @Produce json
// @Param student_id query string false "学号"
// @Param date query string false "日期 YYYY-MM-DD，默认今天"
// @Success 200 {object} service.Leaderboard
// @Failure 400 {object} util.ErrorResponse "日期格式错误"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	board, err := c.LeaderboardService.Get(ctx.Request.Context(), ctx.Query("student_id"), ctx.Query("date"))
	if err != nil {
		respondError(ctx, "获取排行榜失败", err)
		return
	}

	ctx.JSON(http.StatusOK, board)
}
