package repository

import (
	"concept_review_backend/internal/model"
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SortableColumns 后台表格可排序字段（camelCase -> 列名）
var SortableColumns = map[string]string{
	"id":                   "id",
	"studentId":            "student_id",
	"studentName":          "student_name",
	"groupName":            "group_name",
	"completeness":         "completeness",
	"accuracy":             "accuracy",
	"richness":             "richness",
	"referability":         "referability",
	"recommend":            "recommend",
	"conceptMapTotalScore": "concept_map_total_score",
	"personalScore":        "personal_score",
	"submitTime":           "submit_time",
	"createdAt":            "created_at",
}

const DefaultSortBy = "submitTime"

// likeEscaper 搜索按字面匹配；用 '!' 作转义符，mysql/postgres/sqlite 写法一致
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// SurveyListQuery 后台查询条件；Limit <= 0 表示不分页
type SurveyListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortDesc  bool
	StartTime *time.Time
	EndTime   *time.Time
}

type SurveyResponseRepository struct {
	DB *gorm.DB
}

func NewSurveyResponseRepository(db *gorm.DB) *SurveyResponseRepository {
	return &SurveyResponseRepository{DB: db}
}

func (r *SurveyResponseRepository) Create(ctx context.Context, resp *model.SurveyResponse) error {
	return r.DB.WithContext(ctx).Create(resp).Error
}

// FindInWindow 返回 submit_time 落在 [start, end) 的记录，最新提交在前
func (r *SurveyResponseRepository) FindInWindow(ctx context.Context, start, end time.Time) ([]model.SurveyResponse, error) {
	var responses []model.SurveyResponse
	err := r.DB.WithContext(ctx).
		Where("submit_time >= ? AND submit_time < ?", start, end).
		Order("submit_time DESC").
		Order("id DESC").
		Find(&responses).Error
	return responses, err
}

// FindByStudentOrGroup studentID 优先；两者皆空时返回全部
func (r *SurveyResponseRepository) FindByStudentOrGroup(ctx context.Context, studentID, groupName string, limit int) ([]model.SurveyResponse, error) {
	var responses []model.SurveyResponse
	query := r.DB.WithContext(ctx).Model(&model.SurveyResponse{})
	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	} else if groupName != "" {
		query = query.Where("group_name = ?", groupName)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Order("submit_time DESC").Order("id DESC").Find(&responses).Error
	return responses, err
}

func (r *SurveyResponseRepository) List(ctx context.Context, q SurveyListQuery) ([]model.SurveyResponse, int64, error) {
	var responses []model.SurveyResponse
	var total int64

	query := r.DB.WithContext(ctx).Model(&model.SurveyResponse{})
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			"(LOWER(student_id) LIKE ? ESCAPE '!' OR LOWER(student_name) LIKE ? ESCAPE '!' OR LOWER(group_name) LIKE ? ESCAPE '!')",
			like, like, like,
		)
	}
	if q.StartTime != nil {
		query = query.Where("submit_time >= ?", *q.StartTime)
	}
	if q.EndTime != nil {
		query = query.Where("submit_time < ?", *q.EndTime)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := SortableColumns[q.SortBy]
	if !ok {
		column = SortableColumns[DefaultSortBy]
	}
	query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: q.SortDesc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.SortDesc})

	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * q.Limit).Limit(q.Limit)
	}

	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// CreateBatch 在同一事务中写入多条记录，失败整体回滚
func (r *SurveyResponseRepository) CreateBatch(ctx context.Context, responses []*model.SurveyResponse) error {
	if len(responses) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(responses, 100).Error
	})
}
