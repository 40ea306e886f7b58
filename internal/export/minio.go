package export

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/platform"
)

// MinioConfig configures the MinIO (S3-compatible) destination.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// MinioAPI is the subset of *minio.Client used for uploads.
type MinioAPI interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioUploader uploads artifacts to a MinIO bucket.
type MinioUploader struct {
	api    MinioAPI
	bucket string
	prefix string
}

var _ platform.Uploader = (*MinioUploader)(nil)

// NewMinioUploader connects to a MinIO endpoint with static credentials.
func NewMinioUploader(cfg MinioConfig) (*MinioUploader, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, eris.New("export: minio endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, eris.Wrap(err, "export: minio client")
	}
	return NewMinioUploaderWithAPI(client, cfg.Bucket, cfg.Prefix), nil
}

// NewMinioUploaderWithAPI wraps an existing client.
func NewMinioUploaderWithAPI(api MinioAPI, bucket, prefix string) *MinioUploader {
	return &MinioUploader{api: api, bucket: bucket, prefix: prefix}
}

// Upload implements platform.Uploader.
func (u *MinioUploader) Upload(ctx context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return eris.Wrap(err, "export: read artifact")
	}

	key := objectKey(u.prefix, name)
	info, err := u.api.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType(name),
	})
	if err != nil {
		return eris.Wrapf(err, "export: minio upload %s/%s", u.bucket, key)
	}
	zap.L().Info("export: uploaded to minio", zap.String("bucket", u.bucket), zap.String("key", key), zap.Int64("size", info.Size))
	return nil
}
