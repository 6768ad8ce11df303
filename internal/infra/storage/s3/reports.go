package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"churnportal/internal/app/policies"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportPrefix    = "reports"
	defaultLinkTTL  = 7 * 24 * time.Hour
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportArchive stores batch reports in an S3-compatible bucket. Reports hold
// HR data, so the bucket stays private and links are presigned unless a
// public base URL is configured.
type ReportArchive struct {
	bucket         string
	publicBaseURL  string
	linkTTL        time.Duration
	client         *minio.Client
	logger         *slog.Logger
	now            func() time.Time
	bucketInitOnce sync.Once
	bucketInitErr  error
}

type Options struct {
	Endpoint      string
	UseSSL        bool
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	LinkTTL       time.Duration
	Logger        *slog.Logger
}

func NewReportArchive(opts Options) (*ReportArchive, error) {
	cleanEndpoint := strings.TrimSpace(opts.Endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	ttl := opts.LinkTTL
	if ttl <= 0 {
		ttl = defaultLinkTTL
	}
	return &ReportArchive{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/"),
		linkTTL:       ttl,
		client:        minioClient,
		logger:        opts.Logger,
		now:           time.Now,
	}, nil
}

// Archive uploads an xlsx report for owner and returns a link to it.
func (a *ReportArchive) Archive(ctx context.Context, owner string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("s3: report is empty")
	}
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	key := reportKey(owner, a.now(), uuid.NewString())
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: xlsxContentType,
	})
	if err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	link, err := a.link(ctx, key)
	if err != nil {
		return "", err
	}
	if a.logger != nil {
		a.logger.Info("s3 upload completed", "bucket", a.bucket, "key", key)
	}
	return link, nil
}

// Ping checks that the bucket is reachable.
func (a *ReportArchive) Ping(ctx context.Context) error {
	_, err := a.client.BucketExists(ctx, a.bucket)
	return err
}

func (a *ReportArchive) link(ctx context.Context, key string) (string, error) {
	if a.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", a.publicBaseURL, a.bucket, key), nil
	}
	params := url.Values{}
	params.Set("response-content-disposition", `attachment; filename="`+key[strings.LastIndex(key, "/")+1:]+`"`)
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, a.linkTTL, params)
	if err != nil {
		return "", fmt.Errorf("s3: presign: %w", err)
	}
	return u.String(), nil
}

func (a *ReportArchive) ensureBucket(ctx context.Context) error {
	a.bucketInitOnce.Do(func() {
		exists, err := a.client.BucketExists(ctx, a.bucket)
		if err != nil {
			a.bucketInitErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			a.bucketInitErr = fmt.Errorf("s3: create bucket: %w", err)
		}
	})
	return a.bucketInitErr
}

// reportKey builds reports/<owner>/<timestamp>-<id>.xlsx.
func reportKey(owner string, at time.Time, id string) string {
	owner = strings.Trim(unsafeKeyChars.ReplaceAllString(strings.TrimSpace(owner), "_"), "_")
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("%s/%s/%s-%s.xlsx", reportPrefix, owner, at.UTC().Format("20060102T150405Z"), id)
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ policies.ReportArchivePort = (*ReportArchive)(nil)
