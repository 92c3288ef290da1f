package service

import (
	"concept_review_backend/internal/model"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePersonalScore(t *testing.T) {
	text := func(n int) string { return strings.Repeat("a", n) }

	cases := []struct {
		name                                  string
		advantage, suggest, skill, cognitive string
		want                                  int
	}{
		{"all empty", "", "", "", "", 10},
		{"all long", text(40), text(40), text(40), text(40), 60},
		{"feedback 30 only", text(30), text(30), "", "", 30},
		{"feedback 20 reflection 40", text(20), text(20), text(40), text(40), 50},
		{"just below 20", text(19), text(19), text(19), text(19), 10},
		{"mean of two", text(40), "", "", "", 25},
		{"fractional mean below tier", text(39), "", text(59), "", 10 + 0 + 15},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CalculatePersonalScore(c.advantage, c.suggest, c.skill, c.cognitive))
		})
	}
}

func TestCalculatePersonalScoreCountsCharacters(t *testing.T) {
	// 中文按字计，不按字节
	zh := strings.Repeat("好", 40)
	assert.Equal(t, 60, CalculatePersonalScore(zh, zh, zh, zh))

	short := strings.Repeat("好", 10)
	assert.Equal(t, 10, CalculatePersonalScore(short, short, short, short))
}

func TestCalculatePersonalScoreRange(t *testing.T) {
	for a := 0; a <= 50; a += 5 {
		for b := 0; b <= 50; b += 7 {
			score := CalculatePersonalScore(strings.Repeat("x", a), strings.Repeat("y", b), strings.Repeat("z", b), strings.Repeat("w", a))
			assert.GreaterOrEqual(t, score, 10)
			assert.LessOrEqual(t, score, 60)
		}
	}
}

func TestApplyScores(t *testing.T) {
	resp := &model.SurveyResponse{
		Completeness: 5, Accuracy: 4, Richness: 3, Referability: 2, Recommend: 1,
		ConceptMapTotalScore: 99,
		PersonalScore:        99,
	}
	ApplyScores(resp)

	assert.Equal(t, 15, resp.ConceptMapTotalScore)
	assert.Equal(t, 10, resp.PersonalScore)
}

func TestCalculatePersonalScoreMonotonic(t *testing.T) {
	allowed := map[int]bool{10: true, 25: true, 30: true, 35: true, 40: true, 45: true, 50: true, 55: true, 60: true}

	prev := 0
	for n := 0; n <= 60; n++ {
		s := strings.Repeat("字", n)
		score := CalculatePersonalScore(s, s, s, s)
		assert.True(t, allowed[score], "unexpected score %d", score)
		assert.GreaterOrEqual(t, score, prev, "length %d", n)
		prev = score
	}
}
