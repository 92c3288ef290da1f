package app

import (
	"bytes"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/database"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cret-pass"

func newTestApp(t *testing.T, adminEnabled bool, opts ...func(*config.Config)) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: gin.TestMode},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Storage:  config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Webhook:  config.WebhookConfig{Padding: "pkcs7"},
		Leaderboard: config.LeaderboardConfig{
			UTCOffsetHours: 8,
			TopN:           5,
		},
		Upload: config.UploadConfig{MaxSizeMB: 1, JPEGQuality: 80},
		Admin: config.AdminConfig{
			Enabled:      adminEnabled,
			Username:     "admin",
			PasswordHash: string(hash),
			JWTSecret:    "test-secret",
			ExpireTime:   time.Hour,
		},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	db, err := database.InitDB(&cfg.Database, true)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	a, err := Build(cfg, db, nil)
	require.NoError(t, err)
	return a
}

func do(a *App, method, target string, body []byte, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func surveyBody(studentID, name, group, submitTime string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"student_id":   studentID,
		"student_name": name,
		"group":        group,
		"completeness": 5,
		"accuracy":     5,
		"richness":     4,
		"referability": 4,
		"recommend":    3,
		"advantage":    strings.Repeat("好", 40),
		"suggest":      strings.Repeat("好", 40),
		"submit_time":  submitTime,
	})
	return body
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, false)

	w := do(a, http.MethodGet, "/api/health", nil, map[string]string{"Origin": "http://localhost:3000"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "ok", out["status"])
}

func TestSubmitAndLeaderboard(t *testing.T) {
	a := newTestApp(t, false)

	w := do(a, http.MethodPost, "/api/survey", surveyBody("S1", "Amy", "2", "2025-03-10 09:00:00"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	assert.Equal(t, true, out["success"])
	assert.EqualValues(t, 21, out["concept_map_total_score"])
	assert.EqualValues(t, 35, out["personal_score"])

	w = do(a, http.MethodPost, "/api/survey", surveyBody("S2", "Ben", "3", "2025-03-10 11:00:00"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(a, http.MethodPost, "/api/survey", surveyBody("S1", "Amy", "3", "2025-03-11 09:00:00"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, http.MethodGet, "/api/survey?student_id=S1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)

	w = do(a, http.MethodGet, "/api/leaderboard?date=2025-03-10&student_id=S2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board struct {
		GroupList []struct {
			Group      string `json:"group"`
			TotalScore int    `json:"total_score"`
		} `json:"groupList"`
		PersonalList []struct {
			StudentID string `json:"student_id"`
			Score     int    `json:"score"`
		} `json:"personalList"`
		PersonalInfo struct {
			StudentID string `json:"student_id"`
			Records   []struct {
				SubmitTime string `json:"submit_time"`
			} `json:"records"`
		} `json:"personalInfo"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.GroupList, 2)
	assert.Equal(t, 21, board.GroupList[0].TotalScore)
	assert.Len(t, board.PersonalList, 2)
	assert.Equal(t, "S2", board.PersonalInfo.StudentID)
	require.Len(t, board.PersonalInfo.Records, 1)
	assert.Equal(t, "2025-03-10 11:00:00", board.PersonalInfo.Records[0].SubmitTime)

	w = do(a, http.MethodGet, "/api/leaderboard?date=10-03-2025", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitValidation(t *testing.T) {
	a := newTestApp(t, false)

	w := do(a, http.MethodPost, "/api/survey", []byte(`{"student_id":"S1","group":"1","completeness":7,"accuracy":1,"richness":1,"referability":1,"recommend":1}`), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "missing required fields: student_name; invalid fields: completeness", out["error"])
}

func TestWebhookDisabled(t *testing.T) {
	a := newTestApp(t, false)
	w := do(a, http.MethodPost, "/api/survey/webhook/form/resp", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newTestApp(t, true)

	w := do(a, http.MethodPost, "/api/survey", surveyBody("S1", "Amy", "2", "2025-03-10 09:00:00"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(a, http.MethodGet, "/api/admin/survey-data", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	login := func(password string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"username": "admin", "password": password})
		return do(a, http.MethodPost, "/api/admin/login", body, nil)
	}
	w = login("wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = login(testPassword)
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	w = do(a, http.MethodGet, "/api/admin/survey-data?page=1&limit=10&sortBy=personalScore", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Len(t, out["data"], 1)
	pagination, _ := out["pagination"].(map[string]interface{})
	assert.EqualValues(t, 1, pagination["total"])
	assert.EqualValues(t, 10, pagination["limit"])

	w = do(a, http.MethodGet, "/api/admin/survey-data?startDate=bad", nil, bearer)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 导出链接用 query 携带 token
	w = do(a, http.MethodGet, "/api/admin/survey-data/export?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="survey_data_`)
	assert.Equal(t, util.MimeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), ",S1,Amy,2,")

	w = do(a, http.MethodGet, "/api/admin/survey-data/export?format=xlsx", nil, bearer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, util.MimeXLSX, w.Header().Get("Content-Type"))

	csvData := "student_id,student_name,group,completeness,accuracy,richness,referability,recommend,submit_time\n" +
		"S9,Zoe,4,1,2,3,4,5,2025-03-10 10:00:00\n" +
		"S10,,4,1,2,3,4,5,2025-03-10 10:00:00\n"
	body, _ := json.Marshal(map[string]string{"csvData": csvData})

	w = do(a, http.MethodPost, "/api/survey/import", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(a, http.MethodPost, "/api/survey/import", body, bearer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out = decode(t, w)
	assert.EqualValues(t, 1, out["imported"])
	assert.EqualValues(t, 1, out["skipped"])

	w = do(a, http.MethodPost, "/api/survey/import", []byte(`{"csvData":"  "}`), bearer)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No CSV data provided", decode(t, w)["error"])
}

func TestAdminLoginDisabled(t *testing.T) {
	a := newTestApp(t, false)

	w := do(a, http.MethodPost, "/api/admin/login", []byte(`{"username":"admin","password":"x"}`), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 未启用时后台接口不需要 token
	w = do(a, http.MethodGet, "/api/admin/survey-data", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func multipartUpload(t *testing.T, group string, data []byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if group != "" {
		require.NoError(t, mw.WriteField("group", group))
	}
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="map.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestImageRoutes(t *testing.T) {
	a := newTestApp(t, false)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 12, 12))))

	upload := func(group string, data []byte, contentType string) *httptest.ResponseRecorder {
		body, ct := multipartUpload(t, group, data, contentType)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		a.Router.ServeHTTP(w, req)
		return w
	}

	w := upload("", img.Bytes(), "image/png")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = upload("1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = upload("1", []byte("plain text"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload("1", img.Bytes(), "image/png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode(t, w)
	url, _ := out["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/group-"))
	assert.True(t, strings.HasSuffix(url, "-1.jpeg"))

	w = do(a, http.MethodGet, "/api/image?group=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, url, decode(t, w)["url"])

	w = do(a, http.MethodGet, "/api/image?group=2", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(a, http.MethodGet, "/api/image", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(a, http.MethodGet, "/api/blob-list", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = do(a, http.MethodGet, url, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))

	w = do(a, http.MethodGet, "/api/groups", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	groups := decode(t, w)["groups"].([]interface{})
	assert.GreaterOrEqual(t, len(groups), 7)
}

func TestUploadsServedWithDefaultStorageType(t *testing.T) {
	a := newTestApp(t, false, func(cfg *config.Config) { cfg.Storage.Type = "" })

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	body, ct := multipartUpload(t, "2", img.Bytes(), "image/png")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	url, _ := decode(t, w)["url"].(string)
	require.True(t, strings.HasPrefix(url, "/uploads/"))

	w = do(a, http.MethodGet, url, nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
