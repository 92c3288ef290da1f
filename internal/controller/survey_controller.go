package controller

import (
	"concept_review_backend/internal/service"
	"concept_review_backend/internal/util"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

type SurveyController struct {
	SurveyService  *service.SurveyService
	WebhookService *service.WebhookService
}

func NewSurveyController(surveyService *service.SurveyService, webhookService *service.WebhookService) *SurveyController {
	return &SurveyController{
		SurveyService:  surveyService,
		WebhookService: webhookService,
	}
}

// Submit godoc
// @Summary 提交互评问卷
// @Description 概念图总分与个人积分由服务端计算，客户端传入的分数会被忽略
// @Tags 问卷
// @Accept json
// @Produce json
// @Param body body service.SurveyPayload true "问卷内容"
// @Success 200 {object} object "提交成功"
// @Failure 400 {object} util.ErrorResponse "缺少必填字段"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/survey [post]
func (c *SurveyController) Submit(ctx *gin.Context) {
	var req service.SurveyPayload
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ValidationMessage(err))
		return
	}

	resp, err := c.SurveyService.Submit(ctx.Request.Context(), &req, util.SourceForm)
	if err != nil {
		respondError(ctx, "提交问卷失败", err)
		return
	}

	util.Success(ctx, gin.H{
		"id":                      resp.ID,
		"personal_score":          resp.PersonalScore,
		"concept_map_total_score": resp.ConceptMapTotalScore,
	})
}

// List godoc
// @Summary 查询问卷记录
// @Description 按学号或组别查询，学号优先；按提交时间由新到旧
// @Tags 问卷
// @Produce json
// @Param student_id query string false "学号"
// @Param group query string false "组别"
// @Param limit query int false "最多返回条数"
// @Success 200 {object} object
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/survey [get]
func (c *SurveyController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "100"))

	rows, err := c.SurveyService.ListByStudentOrGroup(ctx.Request.Context(), ctx.Query("student_id"), ctx.Query("group"), limit)
	if err != nil {
		respondError(ctx, "获取问卷数据失败", err)
		return
	}

	util.Success(ctx, gin.H{"data": rows})
}

// Webhook godoc
// @Summary 拉取第三方问卷回传
// @Description 从问卷平台拉取加密回传，AES-CBC 解密后按表单提交入库；同一回传重复拉取返回 409
// @Tags 问卷
// @Produce json
// @Param formId path string true "表单 ID"
// @Param responseId path string true "回传 ID"
// @Success 200 {object} object "提交成功"
// @Failure 400 {object} util.ErrorResponse "解密后的数据缺少必填字段"
// @Failure 409 {object} util.ErrorResponse "重复回传"
// @Failure 500 {object} util.ErrorResponse "上游或解密失败"
// @Router /api/survey/webhook/{formId}/{responseId} [post]
func (c *SurveyController) Webhook(ctx *gin.Context) {
	resp, err := c.WebhookService.Pull(ctx.Request.Context(), ctx.Param("formId"), ctx.Param("responseId"))
	if err != nil {
		respondError(ctx, "处理问卷回传失败", err)
		return
	}

	util.Success(ctx, gin.H{
		"id":                      resp.ID,
		"personal_score":          resp.PersonalScore,
		"concept_map_total_score": resp.ConceptMapTotalScore,
	})
}

// ImportRequest CSV 导入请求
type ImportRequest struct {
	CSVData string `json:"csvData"`
}

// Import godoc
// @Summary 批量导入问卷 CSV
// @Description 接受 JSON {csvData} 或 multipart 文件 file。缺少必填字段的行会被跳过
// @Tags 管理后台
// @Accept json,mpfd
// @Produce json
// @Param body body ImportRequest false "CSV 文本"
// @Param file formData file false "CSV 文件"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} util.ErrorResponse "没有 CSV 数据"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Security BearerAuth
// @Router /api/survey/import [post]
func (c *SurveyController) Import(ctx *gin.Context) {
	var csvData string
	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			util.BadRequest(ctx, "No CSV data provided")
			return
		}
		if fileHeader.Size > maxImportSize {
			util.BadRequest(ctx, "CSV file is too large")
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		csvData = string(data)
	} else {
		var req ImportRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		csvData = req.CSVData
	}

	if strings.TrimSpace(csvData) == "" {
		util.BadRequest(ctx, "No CSV data provided")
		return
	}

	result, err := c.SurveyService.Import(ctx.Request.Context(), csvData)
	if err != nil {
		respondError(ctx, "导入失败", err)
		return
	}

	util.Success(ctx, gin.H{
		"imported":    result.Imported,
		"skipped":     result.Skipped,
		"skippedRows": result.SkippedRows,
		"ids":         result.IDs,
	})
}
