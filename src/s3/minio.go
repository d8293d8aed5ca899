package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// Prefix is the URL scheme of S3 object paths
const Prefix = "s3://"

// Options holds connection settings for an S3 compatible store
type Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// OptionsFromEnv reads connection settings from the standard AWS variables
// plus S3_ENDPOINT for MinIO and other self-hosted stores.
func OptionsFromEnv() Options {
	return Options{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    os.Getenv("AWS_REGION"),
		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

// IsURL reports whether path points into an S3 bucket
func IsURL(path string) bool {
	return strings.HasPrefix(path, Prefix)
}

// ParseURL splits an s3://bucket/key URL into bucket and key
func ParseURL(url string) (bucket, key string, err error) {
	if !IsURL(url) {
		return "", "", fmt.Errorf("'%s' does not start with %s", url, Prefix)
	}

	bucket, key, found := strings.Cut(strings.TrimPrefix(url, Prefix), "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("'%s' needs to be of the form %sbucket/key", url, Prefix)
	}
	return bucket, key, nil
}

// MinIOOperator reads and writes objects of a single bucket
type MinIOOperator struct {
	client *s3.Client
	bucket string
}

// NewMinIOOperator creates a new operator for bucket
func NewMinIOOperator(ctx context.Context, bucket string, opts Options) (*MinIOOperator, error) {
	logrus.Debugf("Creating S3 operator for bucket: %s at endpoint: %s", bucket, opts.Endpoint)

	loadOpts := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			// MinIO does not support virtual-hosted bucket addressing
			o.UsePathStyle = true
		}
	})

	return &MinIOOperator{
		client: client,
		bucket: bucket,
	}, nil
}

// Reader returns a reader for an object
func (m *MinIOOperator) Reader(ctx context.Context, key string) (io.ReadCloser, error) {
	logrus.Debugf("S3 Reader: %s/%s", m.bucket, key)

	result, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	return result.Body, nil
}

// Writer returns a writer that uploads the object on Close
func (m *MinIOOperator) Writer(ctx context.Context, key string) (io.WriteCloser, error) {
	logrus.Debugf("S3 Writer: %s/%s", m.bucket, key)

	return &minioWriter{
		client: m.client,
		bucket: m.bucket,
		key:    key,
		ctx:    ctx,
	}, nil
}

// minioWriter implements io.WriteCloser for S3 uploads
type minioWriter struct {
	client *s3.Client
	bucket string
	key    string
	ctx     context.Context
	buffer  bytes.Buffer
	aborted bool
}

// Write implements io.Writer
func (mw *minioWriter) Write(p []byte) (n int, err error) {
	return mw.buffer.Write(p)
}

// Abort discards the buffered data. A following Close uploads nothing.
func (mw *minioWriter) Abort() error {
	logrus.Debugf("S3 Writer Abort: discarding %d bytes for %s/%s", mw.buffer.Len(), mw.bucket, mw.key)
	mw.aborted = true
	mw.buffer.Reset()
	return nil
}

// Close implements io.Closer and uploads the buffered data
func (mw *minioWriter) Close() error {
	if mw.aborted {
		return nil
	}

	logrus.Debugf("S3 Writer Close: uploading %s/%s with %d bytes", mw.bucket, mw.key, mw.buffer.Len())

	_, err := mw.client.PutObject(mw.ctx, &s3.PutObjectInput{
		Bucket: aws.String(mw.bucket),
		Key:    aws.String(mw.key),
		Body:   bytes.NewReader(mw.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", mw.key, err)
	}

	logrus.Infof("Uploaded %s%s/%s", Prefix, mw.bucket, mw.key)
	return nil
}
