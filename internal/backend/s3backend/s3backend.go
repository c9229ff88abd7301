// Package s3backend implements backend.Backend over an S3 bucket.
package s3backend

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/binrep/binrep/internal/binreperr"
)

// readTimeout bounds how long a single Read may run with no data returned,
// per the 30s no-progress rule backend operations are expected to enforce.
const readTimeout = 30 * time.Second

// S3 wraps an s3.S3 client rooted at a bucket and key prefix.
type S3 struct {
	client *s3.S3
	bucket string
	prefix string
}

// Config selects the bucket, region, optional key prefix, and optional AWS
// profile to use. Credentials come from the standard chain: explicit env
// vars, shared credentials file, then instance profile.
type Config struct {
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

// Open constructs an S3 backend, resolving credentials through the standard
// AWS precedence chain via session.NewSessionWithOptions.
func Open(cfg Config) (*S3, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Profile:           cfg.Profile,
		Config:            aws.Config{Region: aws.String(cfg.Region)},
	})
	if err != nil {
		return nil, binreperr.Config("cannot create aws session", err)
	}
	return &S3{client: s3.New(sess), bucket: cfg.Bucket, prefix: strings.TrimSuffix(cfg.Prefix, "/")}, nil
}

func (b *S3) key(path string) string {
	if b.prefix == "" {
		return path
	}
	return b.prefix + "/" + path
}

func (b *S3) List(ctx context.Context, prefix string) ([]string, error) {
	key := b.key(prefix)
	if key != "" && !strings.HasSuffix(key, "/") {
		key += "/"
	}
	var out []string
	err := b.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(key),
		Delimiter: aws.String("/"),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(*cp.Prefix, key), "/")
			out = append(out, name)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(*obj.Key, key)
			if name != "" {
				out = append(out, name)
			}
		}
		return true
	})
	if err != nil {
		return nil, binreperr.Transport(err)
	}
	return out, nil
}

func (b *S3) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	out, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		cancel()
		if isNotFound(err) {
			return nil, binreperr.NotFound(path)
		}
		return nil, binreperr.Transport(err)
	}
	// The deadline resets on every successful Read, so a slow-but-steady
	// multi-GB download isn't cut off at 30s; only a stalled one is.
	timer := time.AfterFunc(readTimeout, cancel)
	return &cancelingReadCloser{rc: out.Body, cancel: cancel, timer: timer}, nil
}

func (b *S3) Write(ctx context.Context, path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return binreperr.Transport(err)
	}
	_, err = b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return binreperr.Transport(err)
	}
	return nil
}

func (b *S3) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, binreperr.Transport(err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}

// cancelingReadCloser cancels the read's context if no progress is made for
// readTimeout, resetting that deadline on every successful Read, and always
// releases the timer and context on Close.
type cancelingReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
	timer  *time.Timer
}

func (c *cancelingReadCloser) Read(p []byte) (int, error) {
	n, err := c.rc.Read(p)
	if n > 0 {
		c.timer.Reset(readTimeout)
	}
	return n, err
}

func (c *cancelingReadCloser) Close() error {
	c.timer.Stop()
	defer c.cancel()
	return c.rc.Close()
}
