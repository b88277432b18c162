package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resumeflow/internal/shared/storage/object"
)

// api is the subset of *s3.Client the store calls.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options configures the bucket layout and encryption.
type Options struct {
	Region string
	Bucket string
	// Prefix is prepended to every key, e.g. "portfolios".
	Prefix string
	// KMSKeyID selects SSE-KMS. Empty means SSE-S3.
	KMSKeyID string
}

// Store keeps artifacts in an S3 bucket.
type Store struct {
	client api
	opts   Options
}

// New loads the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var loaders []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), opts), nil
}

func newStore(client api, opts Options) *Store {
	opts.Prefix = strings.Trim(strings.TrimSpace(opts.Prefix), "/")
	opts.KMSKeyID = strings.TrimSpace(opts.KMSKeyID)
	return &Store{client: client, opts: opts}
}

func (s *Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if s.opts.Prefix == "" {
		return key
	}
	return s.opts.Prefix + "/" + key
}

func (s *Store) Put(ctx context.Context, userID, fileName, contentType string, r io.Reader) (object.Object, error) {
	key, name, err := object.NewKey(userID, fileName)
	if err != nil {
		return object.Object{}, err
	}

	body := &countingReader{r: r}
	in := &s3.PutObjectInput{
		Bucket:             aws.String(s.opts.Bucket),
		Key:                aws.String(s.objectKey(key)),
		Body:               body,
		ContentType:        aws.String(contentType),
		ContentDisposition: aws.String(`attachment; filename="` + name + `"`),
	}
	if s.opts.KMSKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.opts.KMSKeyID)
	} else {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return object.Object{}, fmt.Errorf("s3 put s3://%s/%s: %w", s.opts.Bucket, aws.ToString(in.Key), err)
	}
	return object.Object{Key: key, ContentType: contentType, Size: body.n}, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, object.Object, error) {
	full := s.objectKey(key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(full),
	})
	var missing *s3types.NoSuchKey
	switch {
	case errors.As(err, &missing):
		return nil, object.Object{}, object.ErrNotFound
	case err != nil:
		return nil, object.Object{}, fmt.Errorf("s3 get s3://%s/%s: %w", s.opts.Bucket, full, err)
	}
	return out.Body, object.Object{
		Key:         strings.TrimLeft(key, "/"),
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}, nil
}

// countingReader records how many bytes the SDK consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)
