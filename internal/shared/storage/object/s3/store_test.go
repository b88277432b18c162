package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resumeflow/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string]string
	types   map[string]string
	lastPut *s3.PutObjectInput
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]string{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.lastPut = in
	f.objects[aws.ToString(in.Key)] = string(body)
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentType:   aws.String(f.types[aws.ToString(in.Key)]),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func TestPutStoresUnderPrefixWithEncryption(t *testing.T) {
	fake := newFakeS3()
	store := newStore(fake, Options{Bucket: "artifacts", Prefix: "/portfolios/", KMSKeyID: " key-1 "})

	obj, err := store.Put(context.Background(), "user-1", "portfolio.html", "text/html; charset=utf-8", strings.NewReader("<h1>Ada</h1>"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !object.OwnedBy(obj.Key, "user-1") || obj.Size != 12 {
		t.Fatalf("unexpected object %+v", obj)
	}
	in := fake.lastPut
	if got := aws.ToString(in.Key); got != "portfolios/"+obj.Key {
		t.Fatalf("unexpected bucket key %q", got)
	}
	if in.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(in.SSEKMSKeyId) != "key-1" {
		t.Fatalf("expected SSE-KMS with key-1, got %s %q", in.ServerSideEncryption, aws.ToString(in.SSEKMSKeyId))
	}
	if got := aws.ToString(in.ContentDisposition); got != `attachment; filename="portfolio.html"` {
		t.Fatalf("unexpected content disposition %q", got)
	}

	rc, meta, err := store.Open(context.Background(), obj.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "<h1>Ada</h1>" || meta.Key != obj.Key || meta.Size != 12 {
		t.Fatalf("unexpected read back %q %+v", body, meta)
	}
}

func TestPutDefaultsToS3ManagedEncryption(t *testing.T) {
	fake := newFakeS3()
	store := newStore(fake, Options{Bucket: "artifacts"})

	obj, err := store.Put(context.Background(), "user-1", "portfolio.html", "text/html", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if aws.ToString(fake.lastPut.Key) != obj.Key {
		t.Fatalf("expected unprefixed key, got %q", aws.ToString(fake.lastPut.Key))
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %s", fake.lastPut.ServerSideEncryption)
	}
}

func TestOpenMissingKey(t *testing.T) {
	store := newStore(newFakeS3(), Options{Bucket: "artifacts"})
	if _, _, err := store.Open(context.Background(), "nope/portfolio.html"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPutWrapsClientError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	store := newStore(fake, Options{Bucket: "artifacts"})

	_, err := store.Put(context.Background(), "user-1", "portfolio.html", "text/html", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "access denied") || !strings.Contains(err.Error(), "s3://artifacts/") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Options{Bucket: "  "}); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
