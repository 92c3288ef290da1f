package service

import (
	"concept_review_backend/internal/model"
	"concept_review_backend/internal/repository"
	"concept_review_backend/internal/util"
	"context"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

type GroupRank struct {
	Group      string `json:"group"`
	TotalScore int    `json:"total_score"`
}

type PersonalRank struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Score       int    `json:"score"`
}

// ResponseRecord 排行榜详情中的单条互评记录（snake_case 字段）
type ResponseRecord struct {
	ID                   uint   `json:"id"`
	StudentID            string `json:"student_id"`
	StudentName          string `json:"student_name"`
	Group                string `json:"group"`
	Completeness         int    `json:"completeness"`
	Accuracy             int    `json:"accuracy"`
	Richness             int    `json:"richness"`
	Referability         int    `json:"referability"`
	Recommend            int    `json:"recommend"`
	ConceptMapTotalScore int    `json:"concept_map_total_score"`
	Advantage            string `json:"advantage"`
	Suggest              string `json:"suggest"`
	SkillReflection      string `json:"skill_reflection"`
	CognitiveReflection  string `json:"cognitive_reflection"`
	PersonalScore        int    `json:"personal_score"`
	SubmitTime           string `json:"submit_time"`
}

type PersonalInfo struct {
	StudentName string           `json:"student_name"`
	StudentID   string           `json:"student_id"`
	Score       int              `json:"score,omitempty"`
	Records     []ResponseRecord `json:"records"`
}

type Leaderboard struct {
	GroupList    []GroupRank    `json:"groupList"`
	PersonalList []PersonalRank `json:"personalList"`
	PersonalInfo PersonalInfo   `json:"personalInfo"`
}

// RankGroups 按组别加总概念图总分，降序；同分保留输入中的先后顺序
func RankGroups(records []model.SurveyResponse) []GroupRank {
	index := make(map[string]int)
	groups := make([]GroupRank, 0)
	for _, r := range records {
		name := strings.TrimSpace(r.GroupName)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, GroupRank{Group: name})
		}
		groups[i].TotalScore += r.ConceptMapTotalScore
	}
	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].TotalScore > groups[b].TotalScore
	})
	return groups
}

// RankStudents 按学号加总个人积分；排除无姓名或总分 <= 0 的学生，取前 topN
func RankStudents(records []model.SurveyResponse, topN int) []PersonalRank {
	index := make(map[string]int)
	students := make([]PersonalRank, 0)
	for _, r := range records {
		id := strings.TrimSpace(r.StudentID)
		i, ok := index[id]
		if !ok {
			i = len(students)
			index[id] = i
			students = append(students, PersonalRank{StudentID: id, StudentName: r.StudentName})
		}
		students[i].Score += r.PersonalScore
	}

	ranked := make([]PersonalRank, 0, len(students))
	for _, s := range students {
		if strings.TrimSpace(s.StudentName) == "" || s.Score <= 0 {
			continue
		}
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// StudentDetail 指定学生在窗口内的全部记录；无记录时返回空详情
func StudentDetail(records []model.SurveyResponse, studentID string, loc *time.Location) PersonalInfo {
	info := PersonalInfo{Records: []ResponseRecord{}}
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return info
	}
	for _, r := range records {
		if strings.TrimSpace(r.StudentID) != studentID {
			continue
		}
		if len(info.Records) == 0 {
			info.StudentID = studentID
			info.StudentName = r.StudentName
		}
		info.Score += r.PersonalScore
		info.Records = append(info.Records, toRecord(r, loc))
	}
	return info
}

func toRecord(r model.SurveyResponse, loc *time.Location) ResponseRecord {
	return ResponseRecord{
		ID:                   r.ID,
		StudentID:            strings.TrimSpace(r.StudentID),
		StudentName:          r.StudentName,
		Group:                strings.TrimSpace(r.GroupName),
		Completeness:         r.Completeness,
		Accuracy:             r.Accuracy,
		Richness:             r.Richness,
		Referability:         r.Referability,
		Recommend:            r.Recommend,
		ConceptMapTotalScore: r.ConceptMapTotalScore,
		Advantage:            r.Advantage,
		Suggest:              r.Suggest,
		SkillReflection:      r.SkillReflection,
		CognitiveReflection:  r.CognitiveReflection,
		PersonalScore:        r.PersonalScore,
		SubmitTime:           util.FormatLocal(r.SubmitTime, loc),
	}
}

// BuildLeaderboard 纯函数：records 须已按提交时间由新到旧排序。
// studentID 为空时详情默认取个人榜第一名。
func BuildLeaderboard(records []model.SurveyResponse, studentID string, topN int, loc *time.Location) Leaderboard {
	board := Leaderboard{
		GroupList:    RankGroups(records),
		PersonalList: RankStudents(records, topN),
	}

	target := strings.TrimSpace(studentID)
	if target == "" && len(board.PersonalList) > 0 {
		target = board.PersonalList[0].StudentID
	}
	board.PersonalInfo = StudentDetail(records, target, loc)
	return board
}

type LeaderboardService struct {
	repo *repository.SurveyResponseRepository
	loc  *time.Location
	topN atomic.Int64
	now  func() time.Time
}

func NewLeaderboardService(repo *repository.SurveyResponseRepository, loc *time.Location, topN int) *LeaderboardService {
	s := &LeaderboardService{repo: repo, loc: loc, now: time.Now}
	s.SetTopN(topN)
	return s
}

// SetTopN 配置热加载时调整个人榜长度
func (s *LeaderboardService) SetTopN(n int) {
	if n > 0 {
		s.topN.Store(int64(n))
	}
}

// Get 查询某一天（固定时区）的排行榜；date 为空取今天
func (s *LeaderboardService) Get(ctx context.Context, studentID, date string) (*Leaderboard, error) {
	start, end, err := util.DayWindow(date, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.FindInWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}

	board := BuildLeaderboard(records, studentID, int(s.topN.Load()), s.loc)
	return &board, nil
}
