package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	sc "github.com/suitenumerique/drive-sub001/internal/server/config"
	"github.com/suitenumerique/drive-sub001/internal/shared"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
)

// S3 presigns uploads straight to an S3-compatible bucket (MinIO in
// development).
type S3 struct {
	region   string
	user     string
	password string
	bucket   string
	endpoint string
	ttl      time.Duration
}

// NewS3 reads the S3 settings of c.
func NewS3(c *sc.Config) *S3 {
	return &S3{
		region:   c.S3Region,
		user:     c.S3RootUser,
		password: c.S3RootPassword,
		bucket:   c.S3Bucket,
		endpoint: c.S3BaseEndpoint,
		ttl:      c.UploadTokenTTL,
	}
}

func (s *S3) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.user,     // MINIO_ROOT_USER
			s.password, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.endpoint)
		o.UsePathStyle = true
	}), nil
}

// PresignPut signs a private PUT of key. The client must send the matching
// X-amz-acl header.
func (s *S3) PresignPut(ctx context.Context, _ string, key string) (string, error) {
	c, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignPutObject(newS3PresignClient(c), ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACLPrivate,
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *S3) Stat(ctx context.Context, key string) (Object, error) {
	c, err := s.client(ctx)
	if err != nil {
		return Object{}, err
	}

	out, err := headObject(c, ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return Object{}, shared.ErrorNotFound
		}
		return Object{}, err
	}
	return Object{Size: aws.ToInt64(out.ContentLength), ContentType: aws.ToString(out.ContentType)}, nil
}

func (s *S3) URL(key string) string {
	return strings.TrimSuffix(s.endpoint, "/") + "/" + s.bucket + "/" + key
}
