package service

import (
	"concept_review_backend/internal/model"
	"concept_review_backend/internal/util"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const utf8BOM = "\ufeff"

// ExportFile 导出结果
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// SkippedRow 导入时被跳过的数据行（从 1 开始计数，不含表头）
type SkippedRow struct {
	Row     int      `json:"row"`
	Missing []string `json:"missing,omitempty"`
	Reason  string   `json:"reason"`
}

type surveyColumn struct {
	Key     string
	Label   string
	// 自由文本列：导出时总是加引号并压平换行
	Text    bool
	Numeric bool
	Value   func(r *model.SurveyResponse, loc *time.Location) string
}

func intValue(get func(r *model.SurveyResponse) int) func(*model.SurveyResponse, *time.Location) string {
	return func(r *model.SurveyResponse, _ *time.Location) string {
		return strconv.Itoa(get(r))
	}
}

// surveyColumns 导出列顺序，表头沿用中文标签
var surveyColumns = []surveyColumn{
	{Key: "id", Label: "ID", Numeric: true, Value: func(r *model.SurveyResponse, _ *time.Location) string { return strconv.FormatUint(uint64(r.ID), 10) }},
	{Key: "student_id", Label: "學生ID", Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.StudentID }},
	{Key: "student_name", Label: "學生姓名", Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.StudentName }},
	{Key: "group", Label: "組別", Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.GroupName }},
	{Key: "completeness", Label: "完整性", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.Completeness })},
	{Key: "accuracy", Label: "準確性", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.Accuracy })},
	{Key: "richness", Label: "豐富性", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.Richness })},
	{Key: "referability", Label: "參考性", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.Referability })},
	{Key: "concept_map_total_score", Label: "概念圖總分", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.ConceptMapTotalScore })},
	{Key: "advantage", Label: "優點", Text: true, Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.Advantage }},
	{Key: "suggest", Label: "建議", Text: true, Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.Suggest }},
	{Key: "skill_reflection", Label: "技能反思", Text: true, Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.SkillReflection }},
	{Key: "cognitive_reflection", Label: "認知反思", Text: true, Value: func(r *model.SurveyResponse, _ *time.Location) string { return r.CognitiveReflection }},
	{Key: "recommend", Label: "推薦度", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.Recommend })},
	{Key: "personal_score", Label: "個人分數", Numeric: true, Value: intValue(func(r *model.SurveyResponse) int { return r.PersonalScore })},
	{Key: "submit_time", Label: "提交時間", Value: func(r *model.SurveyResponse, loc *time.Location) string { return util.FormatLocal(r.SubmitTime, loc) }},
}

// importRequired 导入时必须非空的列；两个派生分数会重新计算，文字回馈允许为空
var importRequired = []string{
	"student_id", "student_name", "group",
	"completeness", "accuracy", "richness", "referability", "recommend",
	"submit_time",
}

// flattenText 去掉 CR，把 LF 换成空格
func flattenText(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func csvCell(col surveyColumn, value string) string {
	if col.Text {
		return quoteCSV(flattenText(value))
	}
	if strings.ContainsAny(value, ",\"\r\n") {
		return quoteCSV(value)
	}
	return value
}

// WriteSurveyCSV UTF-8（带 BOM）CSV，Excel 可直接打开
func WriteSurveyCSV(rows []model.SurveyResponse, loc *time.Location) []byte {
	var b strings.Builder
	b.WriteString(utf8BOM)

	header := make([]string, len(surveyColumns))
	for i, col := range surveyColumns {
		header[i] = col.Label
	}
	b.WriteString(strings.Join(header, ","))

	cells := make([]string, len(surveyColumns))
	for i := range rows {
		for j, col := range surveyColumns {
			cells[j] = csvCell(col, col.Value(&rows[i], loc))
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(cells, ","))
	}
	b.WriteString("\n")
	return []byte(b.String())
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

// headerAliases 表头别名 -> 列 key；接受 snake_case、camelCase 与导出用的中文标签
var headerAliases = func() map[string]string {
	aliases := map[string]string{
		normalizeHeader("groupName"): "group",
	}
	for _, col := range surveyColumns {
		aliases[normalizeHeader(col.Key)] = col.Key
		aliases[normalizeHeader(col.Label)] = col.Key
	}
	return aliases
}()

// ParseSurveyCSV 解析导入 CSV。返回可入库的记录与被跳过的行；
// 只有整体无法解析（空内容、格式错误）时返回 error
func ParseSurveyCSV(data string, loc *time.Location) ([]*model.SurveyResponse, []SkippedRow, error) {
	data = strings.TrimPrefix(data, utf8BOM)
	if strings.TrimSpace(data) == "" {
		return nil, nil, util.ErrEmptyCSV
	}

	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, util.ErrEmptyCSV
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int)
	for i, name := range header {
		if key, ok := headerAliases[normalizeHeader(name)]; ok {
			if _, seen := index[key]; !seen {
				index[key] = i
			}
		}
	}

	responses := make([]*model.SurveyResponse, 0)
	skipped := make([]SkippedRow, 0)
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		values := make(map[string]string, len(index))
		for key, i := range index {
			if i < len(record) {
				values[key] = strings.TrimSpace(record[i])
			}
		}

		resp, skip := buildImportRow(values, loc)
		if skip != nil {
			skip.Row = row
			skipped = append(skipped, *skip)
			continue
		}
		responses = append(responses, resp)
	}

	return responses, skipped, nil
}

func buildImportRow(values map[string]string, loc *time.Location) (*model.SurveyResponse, *SkippedRow) {
	var missing []string
	for _, key := range importRequired {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &SkippedRow{Missing: missing, Reason: "missing required fields"}
	}

	ratings := make(map[string]int, 5)
	for _, key := range []string{"completeness", "accuracy", "richness", "referability", "recommend"} {
		n, err := strconv.Atoi(values[key])
		if err != nil {
			return nil, &SkippedRow{Reason: fmt.Sprintf("invalid %s %q", key, values[key])}
		}
		ratings[key] = n
	}

	submitTime, err := util.ParseSubmitTime(values["submit_time"], loc)
	if err != nil {
		return nil, &SkippedRow{Reason: err.Error()}
	}

	resp := &model.SurveyResponse{
		StudentID:           values["student_id"],
		StudentName:         values["student_name"],
		GroupName:           values["group"],
		Completeness:        ratings["completeness"],
		Accuracy:            ratings["accuracy"],
		Richness:            ratings["richness"],
		Referability:        ratings["referability"],
		Recommend:           ratings["recommend"],
		Advantage:           values["advantage"],
		Suggest:             values["suggest"],
		SkillReflection:     values["skill_reflection"],
		CognitiveReflection: values["cognitive_reflection"],
		SubmitTime:          submitTime,
	}
	ApplyScores(resp)
	return resp, nil
}
