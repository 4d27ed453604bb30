package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Gateway.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Gateway stores the document as a single object.
type S3Gateway struct {
	client S3API
	bucket string
	key    string
}

func NewS3Gateway(client S3API, bucket, key string) *S3Gateway {
	return &S3Gateway{client: client, bucket: bucket, key: key}
}

// NewS3GatewayFromConfig builds a client from the default AWS credential chain.
func NewS3GatewayFromConfig(ctx context.Context, region, bucket, key string) (*S3Gateway, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return NewS3Gateway(s3.NewFromConfig(awsCfg), bucket, key), nil
}

func (g *S3Gateway) String() string {
	return "s3://" + g.bucket + "/" + g.key
}

func (g *S3Gateway) Load(ctx context.Context) ([]byte, error) {
	resp, err := g.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(g.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &notFound) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (g *S3Gateway) Save(ctx context.Context, data []byte) error {
	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(g.key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	return err
}
