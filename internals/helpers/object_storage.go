package helper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"

	"okrku_backend/internals/configs"
)

/* =======================================================================
   Object storage (Alibaba OSS) untuk avatar & logo.
   Kalau ALI_OSS_* tidak diset, upload jatuh ke disk lokal (UPLOAD_DIR).
======================================================================= */

type OSSStore struct {
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string // opsional, mis. CDN: https://cdn.okrku.id
	Prefix     string // opsional: "okrku"
}

var (
	storeMu     sync.RWMutex
	objectStore *OSSStore
)

// UseObjectStore memasang store global; nil = kembali ke disk lokal.
func UseObjectStore(s *OSSStore) {
	storeMu.Lock()
	objectStore = s
	storeMu.Unlock()
}

func currentStore() *OSSStore {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return objectStore
}

// NewOSSStoreFromEnv mengembalikan (nil, nil) kalau OSS tidak dikonfigurasi.
func NewOSSStoreFromEnv() (*OSSStore, error) {
	endpoint := strings.TrimSpace(configs.GetEnv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(configs.GetEnv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(configs.GetEnv("ALI_OSS_SECRET_KEY"))
	bucketName := strings.TrimSpace(configs.GetEnv("ALI_OSS_BUCKET"))
	if endpoint == "" && ak == "" && sk == "" && bucketName == "" {
		return nil, nil
	}
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("env OSS tidak lengkap: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}

	var opts []oss.ClientOption
	if sts := strings.TrimSpace(configs.GetEnv("ALI_OSS_SECURITY_TOKEN")); sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}

	return &OSSStore{
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: strings.TrimRight(strings.TrimSpace(configs.GetEnv("ALI_OSS_PUBLIC_BASE")), "/"),
		Prefix:     strings.Trim(configs.GetEnv("ALI_OSS_PREFIX"), "/"),
	}, nil
}

func (s *OSSStore) objectKey(rel string) string {
	rel = strings.TrimLeft(rel, "/")
	if s.Prefix == "" {
		return rel
	}
	return s.Prefix + "/" + rel
}

// Put upload bytes dan mengembalikan URL publik object.
func (s *OSSStore) Put(ctx context.Context, rel string, data []byte, contentType string) (string, error) {
	key := s.objectKey(rel)
	err := s.Bucket.PutObject(key, bytes.NewReader(data),
		oss.ContentType(contentType),
		oss.CacheControl("public, max-age=31536000, immutable"),
		oss.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *OSSStore) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

// KeyFromPublicURL: false kalau URL bukan milik bucket ini.
func (s *OSSStore) KeyFromPublicURL(publicURL string) (string, bool) {
	base := s.PublicURL("x")
	base = strings.TrimSuffix(base, "x")
	if !strings.HasPrefix(publicURL, base) {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, base)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

func (s *OSSStore) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	key, ok := s.KeyFromPublicURL(publicURL)
	if !ok {
		return nil
	}
	if err := s.Bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("oss delete %s: %w", key, err)
	}
	return nil
}
