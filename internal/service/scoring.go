package service

import (
	"concept_review_backend/internal/model"
	"unicode/utf8"
)

// BaseReviewScore 完成一次互评的基本分
const BaseReviewScore = 10

// lengthTier 平均字数门槛及对应加分，从高到低匹配
var lengthTier = []struct {
	minAvg float64
	points int
}{
	{40, 25},
	{30, 20},
	{20, 15},
}

func tierPoints(texts ...string) int {
	if len(texts) == 0 {
		return 0
	}
	total := 0
	for _, t := range texts {
		total += utf8.RuneCountInString(t)
	}
	avg := float64(total) / float64(len(texts))
	for _, tier := range lengthTier {
		if avg >= tier.minAvg {
			return tier.points
		}
	}
	return 0
}

// CalculatePersonalScore 评分者个人积分：基本分 + 回馈（优点/建议）平均字数加分 + 反思平均字数加分
func CalculatePersonalScore(advantage, suggest, skillReflection, cognitiveReflection string) int {
	return BaseReviewScore +
		tierPoints(advantage, suggest) +
		tierPoints(skillReflection, cognitiveReflection)
}

// ConceptMapTotal 五个维度评分加总
func ConceptMapTotal(r model.Ratings) int {
	return r.Completeness + r.Accuracy + r.Richness + r.Referability + r.Recommend
}

// ApplyScores 依文字与评分重新计算两个派生分数
func ApplyScores(resp *model.SurveyResponse) {
	resp.ConceptMapTotalScore = ConceptMapTotal(resp.Ratings())
	resp.PersonalScore = CalculatePersonalScore(resp.Advantage, resp.Suggest, resp.SkillReflection, resp.CognitiveReflection)
}
