package controller

import (
	"concept_review_backend/internal/service"
	"concept_review_backend/internal/util"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

type ImageController struct {
	ImageService *service.ImageService
	MaxSizeMB    int
}

func NewImageController(imageService *service.ImageService, maxSizeMB int) *ImageController {
	return &ImageController{
		ImageService: imageService,
		MaxSizeMB:    maxSizeMB,
	}
}

// BlobInfo 已上传图片
type BlobInfo struct {
	Pathname   string    `json:"pathname"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Upload godoc
// @Summary 上传概念图
// @Description 任意常见图片格式，统一转为 JPEG（质量 90）后以 group-{星期}-{组别}.jpeg 覆盖保存
// @Tags 概念图
// @Accept mpfd
// @Produce json
// @Param file formData file true "图片"
// @Param group formData string true "组别"
// @Success 200 {object} service.UploadResult
// @Failure 400 {object} util.ErrorResponse "缺少文件或组别，或不是图片"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/upload [post]
func (c *ImageController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "未找到上傳文件")
		return
	}
	group := ctx.PostForm("group")
	if group == "" {
		util.BadRequest(ctx, "缺少組別")
		return
	}

	if c.MaxSizeMB > 0 && fileHeader.Size > int64(c.MaxSizeMB)<<20 {
		util.BadRequest(ctx, fmt.Sprintf("文件大小不能超過 %dMB", c.MaxSizeMB))
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

	result, err := c.ImageService.Upload(ctx.Request.Context(), data, fileHeader.Header.Get("Content-Type"), group)
	if err != nil {
		respondError(ctx, "上傳失敗", err)
		return
	}

	util.Success(ctx, gin.H{
		"message":        "上傳成功（已自動轉換為 JPEG）",
		"filename":       result.Filename,
		"url":            result.URL,
		"originalFormat": result.OriginalFormat,
		"originalSize":   result.OriginalSize,
		"convertedSize":  result.ConvertedSize,
	})
}

// GetImage godoc
// @Summary 获取今天某组的概念图
// @Tags 概念图
// @Produce json
// @Param group query string true "组别"
// @Success 200 {object} object "url 与 filename"
// @Failure 400 {object} util.ErrorResponse "缺少组别"
// @Failure 404 {object} util.ErrorResponse "图片不存在"
// @Router /api/image [get]
func (c *ImageController) GetImage(ctx *gin.Context) {
	group := ctx.Query("group")
	if group == "" {
		util.BadRequest(ctx, "缺少組別參數")
		return
	}

	info, err := c.ImageService.Find(ctx.Request.Context(), group)
	if err != nil {
		respondError(ctx, "獲取圖片失敗", err)
		return
	}

	util.Success(ctx, gin.H{
		"url":      info.URL,
		"filename": info.Name,
	})
}

// ListBlobs godoc
// @Summary 列出已上传的概念图
// @Tags 概念图
// @Produce json
// @Success 200 {object} object "count 与 blobs"
// @Failure 500 {object} util.ErrorResponse "服务器内部错误"
// @Router /api/blob-list [get]
func (c *ImageController) ListBlobs(ctx *gin.Context) {
	objects, err := c.ImageService.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, "獲取文件列表失敗", err)
		return
	}

	blobs := make([]BlobInfo, 0, len(objects))
	for _, obj := range objects {
		blobs = append(blobs, BlobInfo{
			Pathname:   obj.Name,
			URL:        obj.URL,
			Size:       obj.Size,
			UploadedAt: obj.LastModified,
		})
	}

	util.Success(ctx, gin.H{
		"count": len(blobs),
		"blobs": blobs,
	})
}

// GetGroups godoc
// @Summary 今天可选的组别
// @Description 周一 7 组，周二 8 组，其余 7 组
// @Tags 概念图
// @Produce json
// @Success 200 {object} object "dayOfWeek 与 groups"
// @Router /api/groups [get]
func (c *ImageController) GetGroups(ctx *gin.Context) {
	today := c.ImageService.Today()
	util.Success(ctx, gin.H{
		"dayOfWeek": int(today),
		"groups":    service.GroupOptions(today),
	})
}
