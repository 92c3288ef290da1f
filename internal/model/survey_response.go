package model

import "time"

// SurveyResponse 一次同侪互评提交：评分者对某一组概念图的评分与文字回馈
// swagger:model
type SurveyResponse struct {
	AppendOnlyBase
	StudentID   string `gorm:"type:varchar(64);index;comment:评分学生学号" json:"studentId"`
	StudentName string `gorm:"type:varchar(64);comment:评分学生姓名" json:"studentName"`
	GroupName   string `gorm:"type:varchar(32);index;comment:被评组别" json:"groupName"`

	Completeness int `gorm:"type:smallint;comment:完整性" json:"completeness"`
	Accuracy     int `gorm:"type:smallint;comment:准确性" json:"accuracy"`
	Richness     int `gorm:"type:smallint;comment:丰富性" json:"richness"`
	Referability int `gorm:"type:smallint;comment:参考性" json:"referability"`
	Recommend    int `gorm:"type:smallint;comment:推荐度" json:"recommend"`

	ConceptMapTotalScore int `gorm:"comment:五项评分加总" json:"conceptMapTotalScore"`

	Advantage           string `gorm:"type:text;comment:优点" json:"advantage"`
	Suggest             string `gorm:"type:text;comment:建议" json:"suggest"`
	SkillReflection     string `gorm:"type:text;comment:技能反思" json:"skillReflection"`
	CognitiveReflection string `gorm:"type:text;comment:认知反思" json:"cognitiveReflection"`

	PersonalScore int       `gorm:"comment:评分者个人积分" json:"personalScore"`
	SubmitTime    time.Time `gorm:"index;comment:学生提交时间" json:"submitTime"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

// Ratings 五个评分维度
type Ratings struct {
	Completeness int
	Accuracy     int
	Richness     int
	Referability int
	Recommend    int
}

func (r *SurveyResponse) Ratings() Ratings {
	return Ratings{
		Completeness: r.Completeness,
		Accuracy:     r.Accuracy,
		Richness:     r.Richness,
		Referability: r.Referability,
		Recommend:    r.Recommend,
	}
}
