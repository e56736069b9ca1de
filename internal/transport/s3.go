package transport

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"share/internal/config"
	"share/internal/share"
)

// S3Uploader puts each file into a bucket. Folder uploads keep their
// relative path in the object key; single files use their name.
type S3Uploader struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

var _ share.Uploader = (*S3Uploader)(nil)

// NewS3Uploader wraps an S3 client. Content is streamed through the
// upload manager, which switches to multipart uploads for large files.
func NewS3Uploader(client manager.UploadAPIClient, bucket, prefix string) *S3Uploader {
	return &S3Uploader{
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		prefix:   prefix,
	}
}

// NewS3UploaderFromConfig builds an S3 client from the default AWS
// credential chain, overridden by any region, endpoint or static keys set
// in cfg.
func NewS3UploaderFromConfig(ctx context.Context, cfg config.TargetConfig) (*S3Uploader, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 target requires s3_bucket to be set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Uploader(client, cfg.S3Bucket, cfg.S3Prefix), nil
}

// Upload stores one file. An HTTP-level rejection from S3 is returned as
// *share.StatusError so it is reported like a share server failure.
func (u *S3Uploader) Upload(ctx context.Context, req *share.UploadRequest) error {
	_, err := u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(u.objectKey(req)),
		Body:   req.Content,
	})
	if err != nil {
		var re *awshttp.ResponseError
		if errors.As(err, &re) {
			return fmt.Errorf("%w: %v", &share.StatusError{Code: re.HTTPStatusCode()}, err)
		}
		return fmt.Errorf("putting object: %w", err)
	}
	return nil
}

// objectKey maps a request onto a key under the configured prefix.
func (u *S3Uploader) objectKey(req *share.UploadRequest) string {
	name := req.Name
	if req.RelativePath != "" {
		name = req.RelativePath
	}
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}
