package controller

import (
	"concept_review_backend/internal/service"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/logger"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	SurveyService *service.SurveyService
	AuthService   *service.AuthService
}

func NewAdminController(surveyService *service.SurveyService, authService *service.AuthService) *AdminController {
	return &AdminController{
		SurveyService: surveyService,
		AuthService:   authService,
	}
}

// LoginRequest 管理员登录
// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 管理员登录
// @Tags 管理后台
// @Accept json
// @Produce json
// @Param body body LoginRequest true "账号密码"
// @Success 200 {object} object "token 与过期时间"
// @Failure 400 {object} util.ErrorResponse "请求参数错误"
// @Failure 401 {object} util.ErrorResponse "账号或密码错误"
// @Failure 404 {object} util.ErrorResponse "未启用管理员登录"
// @Router /api/admin/login [post]
func (c *AdminController) Login(ctx *gin.Context) {
	if !c.AuthService.Enabled() {
		util.NotFound(ctx, "admin login is disabled")
		return
	}

	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}

	token, expiresAt, err := c.AuthService.Login(req.Username, req.Password)
	if err != nil {
		respondError(ctx, "登录失败", err)
		return
	}

	util.Success(ctx, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// ListSurveyData godoc
// @Summary 后台问卷列表
// @Description 分页、搜索（学号/姓名/组别）、排序与日期筛选（UTC+8 自然日）
// @Tags 管理后台
// @Produce json
// @Param page query int false "页码，默认 1"
// @Param limit query int false "每页条数，默认 50"
// @Param search query string false "关键字"
// @Param sortBy query string false "排序字段，默认 submitTime"
// @Param sortOrder query string false "asc 或 desc，默认 desc"
// @Param startDate query string false "起始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD（含当天）"
// @Success 200 {object} object "data 与 pagination"
// @Failure 400 {object} util.ErrorResponse "日期格式错误"
// @Failure 401 {object} util.ErrorResponse "未登录"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Security BearerAuth
// @Router /api/admin/survey-data [get]
func (c *AdminController) ListSurveyData(ctx *gin.Context) {
	var params service.AdminListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rows, pagination, err := c.SurveyService.AdminList(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, "获取数据失败", err)
		return
	}

	util.Success(ctx, gin.H{
		"data":       rows,
		"pagination": pagination,
	})
}

// ExportSurveyData godoc
// @Summary 导出问卷数据
// @Description 按当前筛选条件导出全部记录。CSV 为 UTF-8 带 BOM，中文表头
// @Tags 管理后台
// @Produce text/csv
// @Param format query string false "csv 或 xlsx，默认 csv"
// @Param search query string false "关键字"
// @Param sortBy query string false "排序字段"
// @Param sortOrder query string false "asc 或 desc"
// @Param startDate query string false "起始日期 YYYY-MM-DD"
// @Param endDate query string false "结束日期 YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} util.ErrorResponse "参数错误"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Security BearerAuth
// @Router /api/admin/survey-data/export [get]
func (c *AdminController) ExportSurveyData(ctx *gin.Context) {
	var params service.AdminListParams
	if err := ctx.ShouldBindQuery(&params); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	file, err := c.SurveyService.Export(ctx.Request.Context(), params, ctx.Query("format"))
	if err != nil {
		respondError(ctx, "导出失败", err)
		return
	}

	exportedBy := ""
	if claims := util.GetAdminFromContext(ctx); claims != nil {
		exportedBy = claims.Username
	}
	logger.Log.Info("Survey data exported",
		zap.String("file", file.Name),
		zap.Int("bytes", len(file.Data)),
		zap.String("admin", exportedBy),
	)

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	ctx.Data(http.StatusOK, file.ContentType, file.Data)
}
