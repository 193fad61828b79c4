package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/awantoch/contentkit/utils"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const defaultS3Timeout = 10 * time.Second

// ObjectGetter is the part of *s3.Client the loader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Loader loads templates from objects under a bucket prefix.
type S3Loader struct {
	client  ObjectGetter
	bucket  string
	prefix  string
	timeout time.Duration
}

// NewS3Loader creates an S3Loader using the default AWS credential chain.
func NewS3Loader(ctx context.Context, bucket, region, prefix string) (*S3Loader, error) {
	if bucket == "" || region == "" {
		return nil, utils.Errorf("bucket and region must be non-empty")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return NewS3LoaderWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3LoaderWithClient creates an S3Loader around an existing client.
func NewS3LoaderWithClient(client ObjectGetter, bucket, prefix string) *S3Loader {
	return &S3Loader{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		timeout: defaultS3Timeout,
	}
}

// Abs resolves name to an object key under the prefix. Like the filesystem
// loader, names referenced from another template resolve against the prefix
// rather than the referencing template's key.
func (l *S3Loader) Abs(base, name string) string {
	return path.Join(l.prefix, strings.TrimPrefix(name, "/"))
}

// Get fetches the object stored under key.
func (l *S3Loader) Get(key string) (io.Reader, error) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, loaderErrors.Wrapf(err, "s3://%s/%s", l.bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, loaderErrors.Wrapf(err, "s3://%s/%s", l.bucket, key)
	}
	return bytes.NewReader(data), nil
}

// SearchPath returns the s3:// URL of the template prefix.
func (l *S3Loader) SearchPath() []string {
	return []string{fmt.Sprintf("s3://%s/%s", l.bucket, l.prefix)}
}
