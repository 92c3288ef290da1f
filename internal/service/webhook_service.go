package service

import (
	"bytes"
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/model"
	"concept_review_backend/internal/util"
	"concept_review_backend/pkg/logger"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// SubmissionGuard 防止同一份第三方问卷被重复入库
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisSubmissionGuard 基于 SETNX 的去重
type RedisSubmissionGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSubmissionGuard(client *redis.Client) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{Client: client, TTL: 7 * 24 * time.Hour}
}

func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.Client.SetNX(ctx, key, time.Now().Unix(), g.TTL).Result()
}

func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	return g.Client.Del(ctx, key).Err()
}

type WebhookService struct {
	Survey *SurveyService
	// 为 nil 时不做去重
	Guard  SubmissionGuard
	client *http.Client

	mu  sync.RWMutex
	cfg config.WebhookConfig
}

func NewWebhookService(cfg config.WebhookConfig, survey *SurveyService, guard SubmissionGuard, client *http.Client) *WebhookService {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookService{Survey: survey, Guard: guard, client: client, cfg: cfg}
}

// UpdateConfig 配置热加载时替换地址与密钥
func (s *WebhookService) UpdateConfig(cfg config.WebhookConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

func (s *WebhookService) current() config.WebhookConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Pull 拉取第三方问卷回传、解密后按表单提交入库
func (s *WebhookService) Pull(ctx context.Context, formID, responseID string) (*model.SurveyResponse, error) {
	cfg := s.current()
	if cfg.BaseURL == "" || cfg.Key == "" {
		return nil, util.ErrWebhookDisabled
	}

	formID, responseID = strings.TrimSpace(formID), strings.TrimSpace(responseID)
	if formID == "" || responseID == "" {
		return nil, &ValidationError{Err: errors.New("formId and responseId are required")}
	}

	guardKey := fmt.Sprintf("survey:webhook:%s:%s", formID, responseID)
	if s.Guard != nil {
		ok, err := s.Guard.Acquire(ctx, guardKey)
		if err != nil {
			return nil, fmt.Errorf("acquire submission guard: %w", err)
		}
		if !ok {
			return nil, util.ErrDuplicateSubmission
		}
	}

	resp, err := s.pull(ctx, cfg, formID, responseID)
	if err != nil && s.Guard != nil {
		if releaseErr := s.Guard.Release(context.Background(), guardKey); releaseErr != nil {
			logger.Log.Warn("Release submission guard failed", zap.String("key", guardKey), zap.Error(releaseErr))
		}
	}
	return resp, err
}

func (s *WebhookService) pull(ctx context.Context, cfg config.WebhookConfig, formID, responseID string) (*model.SurveyResponse, error) {
	body, err := s.fetch(ctx, cfg, formID, responseID)
	if err != nil {
		return nil, err
	}

	ciphertext, err := decodeCiphertext(body)
	if err != nil {
		return nil, err
	}

	plaintext, err := DecryptAESCBC(ciphertext, []byte(cfg.Key), []byte(cfg.IV), cfg.Padding)
	if err != nil {
		return nil, err
	}

	var payload SurveyPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrDecrypt, err)
	}

	return s.Survey.Submit(ctx, &payload, util.SourceWebhook)
}

func (s *WebhookService) fetch(ctx context.Context, cfg config.WebhookConfig, formID, responseID string) ([]byte, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/" + url.PathEscape(formID) + "/" + url.PathEscape(responseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrWebhookUpstream, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", util.ErrWebhookUpstream, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", util.ErrWebhookUpstream, res.StatusCode)
	}
	return body, nil
}

// decodeCiphertext 接受 {"data":"<base64>"} 或直接的 base64 文本
func decodeCiphertext(body []byte) ([]byte, error) {
	encoded := strings.TrimSpace(string(body))
	if strings.HasPrefix(encoded, "{") {
		var envelope struct {
			Data string `json:"data"`
		}
		if err := json.Unmarshal([]byte(encoded), &envelope); err != nil {
			return nil, fmt.Errorf("%w: invalid upstream body: %v", util.ErrWebhookUpstream, err)
		}
		encoded = strings.TrimSpace(envelope.Data)
	}
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty payload", util.ErrWebhookUpstream)
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(encoded); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: payload is not base64", util.ErrDecrypt)
}

// DecryptAESCBC 固定 key/iv 的 AES-CBC 解密；padding 为 zero 或 pkcs7
func DecryptAESCBC(ciphertext, key, iv []byte, padding string) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrDecrypt, err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: iv must be %d bytes", util.ErrDecrypt, aes.BlockSize)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", util.ErrDecrypt)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	switch padding {
	case "zero":
		return bytes.TrimRight(plaintext, "\x00"), nil
	default:
		return pkcs7Unpad(plaintext)
	}
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding", util.ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", util.ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
