package export

import (
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/address-mapper/internal/platform"
)

// S3Config configures the S3 destination.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string // optional, for S3-compatible services
	UsePathStyle bool
}

// S3API is the subset of the transfer manager used for uploads.
type S3API interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Uploader uploads artifacts to an S3 bucket.
type S3Uploader struct {
	api    S3API
	bucket string
	prefix string
}

var _ platform.Uploader = (*S3Uploader)(nil)

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("export: s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, eris.Wrap(err, "export: load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3UploaderWithAPI(manager.NewUploader(client), cfg.Bucket, cfg.Prefix), nil
}

// NewS3UploaderWithAPI wraps an existing uploader.
func NewS3UploaderWithAPI(api S3API, bucket, prefix string) *S3Uploader {
	return &S3Uploader{api: api, bucket: bucket, prefix: prefix}
}

// Upload implements platform.Uploader.
func (u *S3Uploader) Upload(ctx context.Context, name string, r io.Reader) error {
	key := objectKey(u.prefix, name)
	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if ct := contentType(name); ct != "" {
		input.ContentType = aws.String(ct)
	}

	out, err := u.api.Upload(ctx, input)
	if err != nil {
		return eris.Wrapf(err, "export: s3 upload s3://%s/%s", u.bucket, key)
	}
	var location string
	if out != nil {
		location = out.Location
	}
	zap.L().Info("export: uploaded to s3", zap.String("bucket", u.bucket), zap.String("key", key), zap.String("location", location))
	return nil
}

func objectKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func contentType(name string) string {
	return mime.TypeByExtension(filepath.Ext(name))
}
