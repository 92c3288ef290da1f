package service

import (
	"bytes"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookKey = "0123456789abcdef"
	testWebhookIV  = "fedcba9876543210"
)

type memoryGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryGuard() *memoryGuard {
	return &memoryGuard{keys: make(map[string]bool)}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

func (g *memoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}

func (g *memoryGuard) held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.keys[key]
}

func encryptCBC(t *testing.T, plaintext []byte, padding string) string {
	t.Helper()
	block, err := aes.NewCipher([]byte(testWebhookKey))
	require.NoError(t, err)

	n := aes.BlockSize - len(plaintext)%aes.BlockSize
	switch padding {
	case "zero":
		if n == aes.BlockSize {
			n = 0
		}
		plaintext = append(plaintext, make([]byte, n)...)
	default:
		plaintext = append(plaintext, bytes.Repeat([]byte{byte(n)}, n)...)
	}

	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, []byte(testWebhookIV)).CryptBlocks(out, plaintext)
	return base64.StdEncoding.EncodeToString(out)
}

func validPayload() SurveyPayload {
	return SurveyPayload{
		StudentID:    "S100",
		StudentName:  "Amy",
		Group:        "2",
		Completeness: 5,
		Accuracy:     4,
		Richness:     3,
		Referability: 2,
		Recommend:    1,
		Advantage:    "清楚",
		SubmitTime:   "2025-03-10 10:00:00",
	}
}

type webhookFixture struct {
	svc   *WebhookService
	guard *memoryGuard
	// 上游返回内容，按请求路径区分
	bodies map[string]string
	status int
	hits   int
}

func newWebhookFixture(t *testing.T, padding string) *webhookFixture {
	t.Helper()
	f := &webhookFixture{guard: newMemoryGuard(), bodies: make(map[string]string), status: http.StatusOK}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits++
		body, ok := f.bodies[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(f.status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)

	survey := NewSurveyService(newTestRepo(t), testLoc)
	cfg := config.WebhookConfig{
		BaseURL: server.URL + "/responses",
		Key:     testWebhookKey,
		IV:      testWebhookIV,
		Padding: padding,
		Timeout: 2 * time.Second,
	}
	f.svc = NewWebhookService(cfg, survey, f.guard, server.Client())
	return f
}

func (f *webhookFixture) serve(t *testing.T, path string, payload interface{}, padding string) {
	t.Helper()
	plaintext, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope, err := json.Marshal(map[string]string{"data": encryptCBC(t, plaintext, padding)})
	require.NoError(t, err)
	f.bodies[path] = string(envelope)
}

func TestWebhookPull(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	f.serve(t, "/responses/form-1/resp-1", validPayload(), "pkcs7")

	resp, err := f.svc.Pull(context.Background(), "form-1", "resp-1")
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, "S100", resp.StudentID)
	assert.Equal(t, 15, resp.ConceptMapTotalScore)
	assert.Equal(t, 10, resp.PersonalScore)
	assert.Equal(t, time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC), resp.SubmitTime)
	assert.True(t, f.guard.held("survey:webhook:form-1:resp-1"))
}

func TestWebhookPullDuplicate(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	f.serve(t, "/responses/form-1/resp-1", validPayload(), "pkcs7")

	_, err := f.svc.Pull(context.Background(), "form-1", "resp-1")
	require.NoError(t, err)

	_, err = f.svc.Pull(context.Background(), "form-1", "resp-1")
	assert.ErrorIs(t, err, util.ErrDuplicateSubmission)
	assert.Equal(t, 1, f.hits)
}

func TestWebhookPullUpstreamErrorReleasesGuard(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")

	_, err := f.svc.Pull(context.Background(), "form-1", "missing")
	assert.ErrorIs(t, err, util.ErrWebhookUpstream)
	assert.False(t, f.guard.held("survey:webhook:form-1:missing"))

	// 上游补上数据后可以重试
	f.serve(t, "/responses/form-1/missing", validPayload(), "pkcs7")
	_, err = f.svc.Pull(context.Background(), "form-1", "missing")
	assert.NoError(t, err)
}

func TestWebhookPullWrongKey(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	f.serve(t, "/responses/form-1/resp-1", validPayload(), "pkcs7")

	cfg := f.svc.current()
	cfg.Key = "another-key-1234"
	f.svc.UpdateConfig(cfg)

	_, err := f.svc.Pull(context.Background(), "form-1", "resp-1")
	assert.ErrorIs(t, err, util.ErrDecrypt)
	assert.False(t, f.guard.held("survey:webhook:form-1:resp-1"))
}

func TestWebhookPullZeroPadding(t *testing.T) {
	f := newWebhookFixture(t, "zero")
	f.serve(t, "/responses/f/r", validPayload(), "zero")

	resp, err := f.svc.Pull(context.Background(), "f", "r")
	require.NoError(t, err)
	assert.Equal(t, "Amy", resp.StudentName)
}

func TestWebhookPullRawBase64Body(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	plaintext, err := json.Marshal(validPayload())
	require.NoError(t, err)
	f.bodies["/responses/f/r"] = encryptCBC(t, plaintext, "pkcs7")

	_, err = f.svc.Pull(context.Background(), "f", "r")
	assert.NoError(t, err)
}

func TestWebhookPullInvalidPayload(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	p := validPayload()
	p.Completeness = 9
	p.StudentName = ""
	f.serve(t, "/responses/f/r", p, "pkcs7")

	_, err := f.svc.Pull(context.Background(), "f", "r")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.False(t, f.guard.held("survey:webhook:f:r"))
}

func TestWebhookPullDisabled(t *testing.T) {
	svc := NewWebhookService(config.WebhookConfig{}, nil, nil, nil)
	_, err := svc.Pull(context.Background(), "f", "r")
	assert.ErrorIs(t, err, util.ErrWebhookDisabled)
}

func TestWebhookPullWithoutGuard(t *testing.T) {
	f := newWebhookFixture(t, "pkcs7")
	f.svc.Guard = nil
	f.serve(t, "/responses/f/r", validPayload(), "pkcs7")

	_, err := f.svc.Pull(context.Background(), "f", "r")
	require.NoError(t, err)
	_, err = f.svc.Pull(context.Background(), "f", "r")
	assert.NoError(t, err)
	assert.Equal(t, 2, f.hits)
}

func TestDecryptAESCBCRejectsBadInput(t *testing.T) {
	_, err := DecryptAESCBC([]byte("short"), []byte(testWebhookKey), []byte(testWebhookIV), "pkcs7")
	assert.ErrorIs(t, err, util.ErrDecrypt)

	_, err = DecryptAESCBC(make([]byte, 16), []byte("bad-key"), []byte(testWebhookIV), "pkcs7")
	assert.ErrorIs(t, err, util.ErrDecrypt)

	_, err = DecryptAESCBC(make([]byte, 16), []byte(testWebhookKey), []byte("short-iv"), "pkcs7")
	assert.ErrorIs(t, err, util.ErrDecrypt)
}
