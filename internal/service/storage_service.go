package service

import (
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	storage "github.com/supabase-community/storage-go"
)

// ErrObjectNotFound 存储中不存在该对象
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo 存储对象的元信息
type ObjectInfo struct {
	Name         string
	URL          string
	Size         int64
	LastModified time.Time
}

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Stat(ctx context.Context, filename string) (*ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetURL(filename string) string
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// LocalStorageProvider 本地存储实现，文件经 /uploads 静态路由对外提供
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	// 写临时文件后原子重命名
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Stat(ctx context.Context, filename string) (*ObjectInfo, error) {
	fi, err := os.Stat(filepath.Join(p.Config.LocalPath, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &ObjectInfo{Name: filename, URL: p.GetURL(filename), Size: fi.Size(), LastModified: fi.ModTime()}, nil
}

func (p *LocalStorageProvider) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(p.Config.LocalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []ObjectInfo{}, nil
		}
		return nil, err
	}

	objects := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, ObjectInfo{Name: e.Name(), URL: p.GetURL(e.Name()), Size: fi.Size(), LastModified: fi.ModTime()})
	}
	return objects, nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	if p.Config.PublicBaseURL != "" {
		return joinURL(p.Config.PublicBaseURL, "uploads/"+filename)
	}
	return "/uploads/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Stat(ctx context.Context, filename string) (*ObjectInfo, error) {
	info, err := p.Client.StatObject(ctx, p.Config.MinioBucket, filename, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return &ObjectInfo{Name: filename, URL: p.GetURL(filename), Size: info.Size, LastModified: info.LastModified}, nil
}

func (p *MinioStorageProvider) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects := make([]ObjectInfo, 0)
	for obj := range p.Client.ListObjects(ctx, p.Config.MinioBucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, ObjectInfo{Name: obj.Key, URL: p.GetURL(obj.Key), Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	if p.Config.PublicBaseURL != "" {
		return joinURL(p.Config.PublicBaseURL, filename)
	}
	scheme := "http"
	if p.Config.MinioSecure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, p.Config.MinioEndpoint, p.Config.MinioBucket, filename)
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	err = bucket.PutObject(filename, reader, oss.ContentType(contentType))
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) Stat(ctx context.Context, filename string) (*ObjectInfo, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return nil, err
	}

	exists, err := bucket.IsObjectExist(filename)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrObjectNotFound
	}

	meta, err := bucket.GetObjectDetailedMeta(filename)
	if err != nil {
		return nil, err
	}
	size, _ := strconv.ParseInt(meta.Get("Content-Length"), 10, 64)
	modified, _ := http.ParseTime(meta.Get("Last-Modified"))
	return &ObjectInfo{Name: filename, URL: p.GetURL(filename), Size: size, LastModified: modified}, nil
}

func (p *OSSStorageProvider) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return nil, err
	}

	objects := make([]ObjectInfo, 0)
	token := ""
	for {
		options := []oss.Option{oss.Prefix(prefix), oss.MaxKeys(1000)}
		if token != "" {
			options = append(options, oss.ContinuationToken(token))
		}
		result, err := bucket.ListObjectsV2(options...)
		if err != nil {
			return nil, err
		}
		for _, obj := range result.Objects {
			objects = append(objects, ObjectInfo{Name: obj.Key, URL: p.GetURL(obj.Key), Size: obj.Size, LastModified: obj.LastModified})
		}
		if !result.IsTruncated {
			break
		}
		token = result.NextContinuationToken
	}
	return objects, nil
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	if p.Config.PublicBaseURL != "" {
		return joinURL(p.Config.PublicBaseURL, filename)
	}
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

// SupabaseStorageProvider Supabase Storage 实现（公开 bucket）
type SupabaseStorageProvider struct {
	Config *config.StorageConfig
	Client *storage.Client
}

func NewSupabaseStorageProvider(cfg *config.StorageConfig) (*SupabaseStorageProvider, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("supabase url and key are required")
	}
	client := storage.NewClient(joinURL(cfg.SupabaseURL, "storage/v1"), cfg.SupabaseKey, nil)
	return &SupabaseStorageProvider{Config: cfg, Client: client}, nil
}

func (p *SupabaseStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	upsert := true
	options := storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}
	if _, err := p.Client.UploadFile(p.Config.SupabaseBucket, filename, reader, options); err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *SupabaseStorageProvider) Stat(ctx context.Context, filename string) (*ObjectInfo, error) {
	objects, err := p.List(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range objects {
		if objects[i].Name == filename {
			return &objects[i], nil
		}
	}
	return nil, ErrObjectNotFound
}

func (p *SupabaseStorageProvider) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := p.Client.ListFiles(p.Config.SupabaseBucket, "", storage.FileSearchOptions{
		Limit:         1000,
		SortByOptions: storage.SortBy{Column: "name", Order: "asc"},
	})
	if err != nil {
		return nil, err
	}

	objects := make([]ObjectInfo, 0, len(files))
	for _, f := range files {
		if f.Id == "" || !strings.HasPrefix(f.Name, prefix) {
			// 没有 id 的是目录占位
			continue
		}
		info := ObjectInfo{Name: f.Name, URL: p.GetURL(f.Name)}
		if meta, ok := f.Metadata.(map[string]interface{}); ok {
			if size, ok := meta["size"].(float64); ok {
				info.Size = int64(size)
			}
		}
		info.LastModified, _ = time.Parse(time.RFC3339, f.UpdatedAt)
		objects = append(objects, info)
	}
	return objects, nil
}

func (p *SupabaseStorageProvider) GetURL(filename string) string {
	if p.Config.PublicBaseURL != "" {
		return joinURL(p.Config.PublicBaseURL, filename)
	}
	return p.Client.GetPublicUrl(p.Config.SupabaseBucket, filename).SignedURL
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		provider = p
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init oss storage: %w", err)
		}
		provider = p
	case util.StorageSupabase:
		p, err := NewSupabaseStorageProvider(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init supabase storage: %w", err)
		}
		provider = p
	case util.StorageLocal, "":
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}

	return &StorageService{Provider: provider}, nil
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) Stat(ctx context.Context, filename string) (*ObjectInfo, error) {
	return s.Provider.Stat(ctx, filename)
}

// List 按最近修改时间由新到旧
func (s *StorageService) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := s.Provider.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}
