package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"pms/config"
	"pms/infras/otel"
	"pms/shared/constant"
)

// S3 stores generated documents such as rooming lists in an S3 compatible
// bucket and hands back their public URL.
type S3 interface {
	UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	GetObjectNameFromURL(bucketName, url string) (objectName string)
}

type object struct {
	bucket string
	key    string
}

type s3Impl struct {
	client       *s3.Client
	otel         otel.Otel
	bucket       string
	endpoint     string
	publicDomain string
}

func New(cfg *config.Config, otl otel.Otel) S3 {
	settings := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(settings.Region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			constant.Empty,
		)),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load object storage configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(opts *s3.Options) {
		if settings.APIEndpoint != constant.Empty {
			opts.BaseEndpoint = aws.String(settings.APIEndpoint)
		}

		opts.UsePathStyle = true
	})

	return &s3Impl{
		client:       client,
		otel:         otl,
		bucket:       settings.BucketName,
		endpoint:     strings.TrimSuffix(settings.APIEndpoint, "/"),
		publicDomain: strings.TrimSuffix(settings.PublicDomain, "/"),
	}
}

// locate resolves an object; an empty bucket name means the configured bucket.
func (svc *s3Impl) locate(bucketName, directory, name string) object {
	if bucketName == constant.Empty {
		bucketName = svc.bucket
	}

	return object{bucket: bucketName, key: path.Join(directory, name)}
}

func (svc *s3Impl) scope(ctx context.Context, operation string, obj object) (context.Context, otel.Scope) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+"."+operation)
	scope.SetAttributes(map[string]any{
		"s3.bucket": obj.bucket,
		"s3.key":    obj.key,
	})

	return ctx, scope
}

func (svc *s3Impl) UploadFileBytes(ctx context.Context, bucketName, directory, fileName, contentType string, fileData []byte) (url string, err error) {
	obj := svc.locate(bucketName, directory, fileName)

	ctx, scope := svc.scope(ctx, "UploadFileBytes", obj)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(obj.bucket),
		Key:           aws.String(obj.key),
		Body:          bytes.NewReader(fileData),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileData))),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", obj.bucket).Str("key", obj.key).Msg("Failed to put object")

		return constant.Empty, fmt.Errorf("failed to put object %s: %w", obj.key, err)
	}

	return svc.publicDomain + "/" + obj.key, nil
}

func (svc *s3Impl) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	obj := svc.locate(bucketName, directory, objectName)

	ctx, scope := svc.scope(ctx, "DeleteFile", obj)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(obj.bucket),
		Key:    aws.String(obj.key),
	}); err != nil {
		log.Error().Err(err).Str("bucket", obj.bucket).Str("key", obj.key).Msg("Failed to delete object")

		return fmt.Errorf("failed to delete object %s: %w", obj.key, err)
	}

	return nil
}

// GetObjectNameFromURL maps a URL returned by UploadFileBytes, or a path style
// API URL, back to its object key. Foreign URLs yield an empty key.
func (svc *s3Impl) GetObjectNameFromURL(bucketName, url string) (objectName string) {
	bucket := svc.locate(bucketName, constant.Empty, constant.Empty).bucket

	for _, base := range []string{svc.publicDomain, svc.endpoint + "/" + bucket} {
		if base == constant.Empty || base == "/"+bucket {
			continue
		}

		if key, ok := strings.CutPrefix(url, base+"/"); ok {
			return key
		}
	}

	return constant.Empty
}
