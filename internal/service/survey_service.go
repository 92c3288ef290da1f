package service

import (
	"concept_review_backend/internal/model"
	"concept_review_backend/internal/repository"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/logger"
	"concept_review_backend/pkg/monitoring"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// SurveyPayload 问卷表单提交内容，网页表单与 webhook 解密后的数据共用
type SurveyPayload struct {
	StudentID           string `json:"student_id" binding:"required"`
	StudentName         string `json:"student_name" binding:"required"`
	Group               string `json:"group" binding:"required"`
	Completeness        int    `json:"completeness" binding:"required,min=1,max=5"`
	Accuracy            int    `json:"accuracy" binding:"required,min=1,max=5"`
	Richness            int    `json:"richness" binding:"required,min=1,max=5"`
	Referability        int    `json:"referability" binding:"required,min=1,max=5"`
	Recommend           int    `json:"recommend" binding:"required,min=1,max=5"`
	Advantage           string `json:"advantage"`
	Suggest             string `json:"suggest"`
	SkillReflection     string `json:"skill_reflection"`
	CognitiveReflection string `json:"cognitive_reflection"`
	// 可选，缺省为服务器当前时间
	SubmitTime string `json:"submit_time"`
}

// AdminListParams 后台表格查询参数（原始字符串，由 service 解析）
type AdminListParams struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

const (
	DefaultAdminPage  = 1
	DefaultAdminLimit = 50
	MaxAdminLimit     = 500
)

type SurveyService struct {
	Repo *repository.SurveyResponseRepository
	Loc  *time.Location
	now  func() time.Time
}

func NewSurveyService(repo *repository.SurveyResponseRepository, loc *time.Location) *SurveyService {
	return &SurveyService{Repo: repo, Loc: loc, now: time.Now}
}

// ToResponse 把表单内容转为待入库记录，两个派生分数在此计算
func (s *SurveyService) ToResponse(p *SurveyPayload) (*model.SurveyResponse, error) {
	submitTime := s.now().UTC()
	if strings.TrimSpace(p.SubmitTime) != "" {
		t, err := util.ParseSubmitTime(p.SubmitTime, s.Loc)
		if err != nil {
			return nil, err
		}
		submitTime = t
	}

	resp := &model.SurveyResponse{
		StudentID:           strings.TrimSpace(p.StudentID),
		StudentName:         strings.TrimSpace(p.StudentName),
		GroupName:           strings.TrimSpace(p.Group),
		Completeness:        p.Completeness,
		Accuracy:            p.Accuracy,
		Richness:            p.Richness,
		Referability:        p.Referability,
		Recommend:           p.Recommend,
		Advantage:           p.Advantage,
		Suggest:             p.Suggest,
		SkillReflection:     p.SkillReflection,
		CognitiveReflection: p.CognitiveReflection,
		SubmitTime:          submitTime,
	}
	ApplyScores(resp)
	return resp, nil
}

// Submit 校验并写入一条互评记录；source 仅用于统计
func (s *SurveyService) Submit(ctx context.Context, p *SurveyPayload, source string) (*model.SurveyResponse, error) {
	// 只有空白的必填字段视为缺失
	p.StudentID = strings.TrimSpace(p.StudentID)
	p.StudentName = strings.TrimSpace(p.StudentName)
	p.Group = strings.TrimSpace(p.Group)

	if err := binding.Validator.ValidateStruct(p); err != nil {
		return nil, &ValidationError{Err: err}
	}

	resp, err := s.ToResponse(p)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	if err := s.Repo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("save survey response: %w", err)
	}

	monitoring.SubmissionCounter.WithLabelValues(source).Inc()
	logger.Log.Info("Survey response saved",
		zap.Uint("id", resp.ID),
		zap.String("student_id", resp.StudentID),
		zap.String("group", resp.GroupName),
		zap.String("source", source),
	)
	return resp, nil
}

// ListByStudentOrGroup 学号优先，其次组别
func (s *SurveyService) ListByStudentOrGroup(ctx context.Context, studentID, group string, limit int) ([]model.SurveyResponse, error) {
	return s.Repo.FindByStudentOrGroup(ctx, strings.TrimSpace(studentID), strings.TrimSpace(group), limit)
}

// BuildListQuery 把后台查询参数规范化为仓储查询；日期按固定时区的自然日解释
func (s *SurveyService) BuildListQuery(p AdminListParams) (repository.SurveyListQuery, error) {
	q := repository.SurveyListQuery{
		Page:     p.Page,
		Limit:    p.Limit,
		Search:   strings.TrimSpace(p.Search),
		SortBy:   p.SortBy,
		SortDesc: !strings.EqualFold(p.SortOrder, "asc"),
	}
	if q.Page < 1 {
		q.Page = DefaultAdminPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultAdminLimit
	}
	if q.Limit > MaxAdminLimit {
		q.Limit = MaxAdminLimit
	}
	if _, ok := repository.SortableColumns[q.SortBy]; !ok {
		q.SortBy = repository.DefaultSortBy
	}

	if strings.TrimSpace(p.StartDate) != "" {
		start, _, err := util.DayWindow(p.StartDate, s.now(), s.Loc)
		if err != nil {
			return q, err
		}
		q.StartTime = &start
	}
	if strings.TrimSpace(p.EndDate) != "" {
		_, end, err := util.DayWindow(p.EndDate, s.now(), s.Loc)
		if err != nil {
			return q, err
		}
		q.EndTime = &end
	}
	return q, nil
}

func (s *SurveyService) AdminList(ctx context.Context, p AdminListParams) ([]model.SurveyResponse, util.Pagination, error) {
	q, err := s.BuildListQuery(p)
	if err != nil {
		return nil, util.Pagination{}, err
	}

	rows, total, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, util.Pagination{}, err
	}
	return rows, util.NewPagination(q.Page, q.Limit, total), nil
}

// Export 与后台表格相同的筛选与排序，但不分页
func (s *SurveyService) Export(ctx context.Context, p AdminListParams, format string) (*ExportFile, error) {
	q, err := s.BuildListQuery(p)
	if err != nil {
		return nil, err
	}
	q.Page, q.Limit = 0, 0

	rows, _, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	date := s.now().In(s.Loc).Format(util.DateFormat)
	switch strings.ToLower(format) {
	case "xlsx":
		data, err := WriteSurveyXLSX(rows, s.Loc)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Name: "survey_data_" + date + ".xlsx", ContentType: util.MimeXLSX, Data: data}, nil
	case "", "csv":
		return &ExportFile{Name: "survey_data_" + date + ".csv", ContentType: util.MimeCSV, Data: WriteSurveyCSV(rows, s.Loc)}, nil
	default:
		return nil, &ValidationError{Err: fmt.Errorf("unsupported export format %q", format)}
	}
}

// ImportResult CSV 批量导入结果
type ImportResult struct {
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	SkippedRows []SkippedRow `json:"skippedRows"`
	IDs         []uint       `json:"ids"`
}

// Import 解析 CSV 并在一个事务内写入全部有效行；无效行跳过并记录
func (s *SurveyService) Import(ctx context.Context, csvData string) (*ImportResult, error) {
	rows, skipped, err := ParseSurveyCSV(csvData, s.Loc)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}

	for _, sk := range skipped {
		logger.Log.Warn("Skip csv row",
			zap.Int("row", sk.Row),
			zap.Strings("missing", sk.Missing),
			zap.String("reason", sk.Reason),
		)
	}

	if err := s.Repo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("import survey responses: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	monitoring.ImportRowCounter.WithLabelValues("imported").Add(float64(len(rows)))
	monitoring.ImportRowCounter.WithLabelValues("skipped").Add(float64(len(skipped)))
	if len(rows) > 0 {
		monitoring.SubmissionCounter.WithLabelValues(util.SourceImport).Add(float64(len(rows)))
	}
	logger.Log.Info("CSV import finished", zap.Int("imported", len(rows)), zap.Int("skipped", len(skipped)))

	return &ImportResult{Imported: len(rows), Skipped: len(skipped), SkippedRows: skipped, IDs: ids}, nil
}

// ValidationError 调用方输入有误，控制器映射为 400
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }
