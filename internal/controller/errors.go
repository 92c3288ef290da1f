package controller

import (
	"concept_review_backend/internal/service"
	"concept_review_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 按错误类别映射 HTTP 状态码；未识别的错误记日志后返回 500
func respondError(ctx *gin.Context, prefix string, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		util.BadRequest(ctx, util.ValidationMessage(verr.Err))
	case errors.Is(err, util.ErrInvalidDate):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrImageNotFound):
		util.NotFound(ctx, "圖片不存在")
	case errors.Is(err, util.ErrDuplicateSubmission):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidCredentials):
		util.Error(ctx, http.StatusUnauthorized, err.Error())
	case errors.Is(err, util.ErrWebhookDisabled):
		util.Error(ctx, http.StatusServiceUnavailable, err.Error())
	default:
		util.InternalServerError(ctx, prefix, err)
	}
}
