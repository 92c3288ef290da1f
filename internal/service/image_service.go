package service

import (
	"bytes"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/logger"
	"concept_review_backend/pkg/monitoring"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

var groupPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]{1,32}$`)

var chineseNumerals = []string{"一", "二", "三", "四", "五", "六", "七", "八", "九", "十"}

// GroupOption 上传页面的组别选项
type GroupOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UploadResult 上传并转换后的图片信息
type UploadResult struct {
	Filename       string `json:"filename"`
	URL            string `json:"url"`
	OriginalFormat string `json:"originalFormat"`
	OriginalSize   string `json:"originalSize"`
	ConvertedSize  string `json:"convertedSize"`
}

// GroupCount 当天的组数：周一 7 组，周二 8 组，其余 7 组
func GroupCount(dayOfWeek time.Weekday) int {
	if dayOfWeek == time.Tuesday {
		return 8
	}
	return 7
}

func GroupOptions(dayOfWeek time.Weekday) []GroupOption {
	n := GroupCount(dayOfWeek)
	options := make([]GroupOption, 0, n)
	for i := 1; i <= n; i++ {
		options = append(options, GroupOption{
			Value: fmt.Sprintf("%d", i),
			Label: "第" + chineseNumerals[i-1] + "組",
		})
	}
	return options
}

// ImageFilename 同一天同一组的图片总是覆盖同一个文件
func ImageFilename(dayOfWeek time.Weekday, group string) string {
	return fmt.Sprintf("group-%d-%s.jpeg", int(dayOfWeek), group)
}

func formatKB(size int) string {
	return fmt.Sprintf("%.2f KB", float64(size)/1024)
}

// ConvertToJPEG 解码任意支持的图片，按 EXIF 方向摆正，透明区域铺白底，
// maxWidth > 0 时等比缩小，最后编码为 JPEG
func ConvertToJPEG(data []byte, mimeType string, quality, maxWidth int) ([]byte, error) {
	var (
		img image.Image
		err error
	)
	if strings.Contains(mimeType, "webp") {
		img, err = webp.Decode(bytes.NewReader(data))
	} else {
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	canvas = imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

type ImageService struct {
	Storage *StorageService
	Cfg     config.UploadConfig
	Loc     *time.Location
	now     func() time.Time
}

func NewImageService(storage *StorageService, cfg config.UploadConfig, loc *time.Location) *ImageService {
	return &ImageService{Storage: storage, Cfg: cfg, Loc: loc, now: time.Now}
}

// Today 固定时区下今天是星期几（0 = 星期日）
func (s *ImageService) Today() time.Weekday {
	return s.now().In(s.Loc).Weekday()
}

// ValidateGroup 组别会出现在文件名中，只允许字母、数字、下划线与连字符
func ValidateGroup(group string) (string, error) {
	group = strings.TrimSpace(group)
	if group == "" {
		return "", &ValidationError{Err: errors.New("缺少組別")}
	}
	if !groupPattern.MatchString(group) {
		return "", &ValidationError{Err: fmt.Errorf("invalid group %q", group)}
	}
	return group, nil
}

func (s *ImageService) Upload(ctx context.Context, data []byte, declaredType, group string) (*UploadResult, error) {
	group, err := ValidateGroup(group)
	if err != nil {
		monitoring.ImageUploadCounter.WithLabelValues("invalid").Inc()
		return nil, err
	}

	mimeType, err := util.ValidateMimeType(data, declaredType, []string{util.MimeImage})
	if err != nil {
		monitoring.ImageUploadCounter.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Err: util.ErrNotAnImage}
	}

	converted, err := ConvertToJPEG(data, mimeType, s.Cfg.JPEGQuality, s.Cfg.MaxWidth)
	if err != nil {
		monitoring.ImageUploadCounter.WithLabelValues("invalid").Inc()
		return nil, &ValidationError{Err: err}
	}

	filename := ImageFilename(s.Today(), group)
	url, err := s.Storage.Upload(ctx, filename, bytes.NewReader(converted), int64(len(converted)), util.MimeJPEG)
	if err != nil {
		monitoring.ImageUploadCounter.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("store image: %w", err)
	}

	monitoring.ImageUploadCounter.WithLabelValues("success").Inc()
	logger.Log.Info("Concept map image uploaded",
		zap.String("filename", filename),
		zap.String("original_type", mimeType),
		zap.Int("original_size", len(data)),
		zap.Int("converted_size", len(converted)),
	)

	return &UploadResult{
		Filename:       filename,
		URL:            url,
		OriginalFormat: strings.TrimPrefix(mimeType, util.MimeImage),
		OriginalSize:   formatKB(len(data)),
		ConvertedSize:  formatKB(len(converted)),
	}, nil
}

// Find 今天该组已上传的图片
func (s *ImageService) Find(ctx context.Context, group string) (*ObjectInfo, error) {
	group, err := ValidateGroup(group)
	if err != nil {
		return nil, err
	}

	info, err := s.Storage.Stat(ctx, ImageFilename(s.Today(), group))
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, util.ErrImageNotFound
		}
		return nil, err
	}
	return info, nil
}

func (s *ImageService) List(ctx context.Context) ([]ObjectInfo, error) {
	return s.Storage.List(ctx, "group-")
}
