package filesource

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const (
	DefaultS3ListTimeout = 2 * time.Minute
	DefaultS3OpenTimeout = 10 * time.Minute
)

type S3Config struct {
	Endpoint    string
	Region      string
	Bucket      string
	Prefix      string
	AccessKey   string
	SecretKey   string
	ListTimeout time.Duration
	// OpenTimeout bounds fetching one object, body included.
	OpenTimeout time.Duration
}

// S3FileSource reads day files from an S3 compatible object store. Keys are
// addressed relative to Prefix.
type S3FileSource struct {
	client      s3iface.S3API
	bucket      string
	prefix      string
	listTimeout time.Duration
	openTimeout time.Duration
}

func NewS3FileSource(cfg S3Config) (*S3FileSource, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("NewS3FileSource: missing bucket")
	}

	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("NewS3FileSource: missing credentials")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	}

	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("NewS3FileSource: failed to create session: %w", err)
	}

	return NewS3FileSourceWithClient(s3.New(sess), cfg), nil
}

func NewS3FileSourceWithClient(client s3iface.S3API, cfg S3Config) *S3FileSource {
	listTimeout := cfg.ListTimeout
	if listTimeout <= 0 {
		listTimeout = DefaultS3ListTimeout
	}

	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = DefaultS3OpenTimeout
	}

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &S3FileSource{
		client:      client,
		bucket:      cfg.Bucket,
		prefix:      prefix,
		listTimeout: listTimeout,
		openTimeout: openTimeout,
	}
}

func (s *S3FileSource) String() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}

func (s *S3FileSource) key(p string) string {
	return s.prefix + strings.TrimPrefix(p, "/")
}

func (s *S3FileSource) Exists(ctx context.Context, p string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})

	if err == nil {
		return true, nil
	}

	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return false, nil
		}
	}

	return false, fmt.Errorf("S3FileSource.Exists: %v: %w", err, eventmodels.ErrSourceUnavailable)
}

// literalPrefix is the part of a glob before its first meta character.
func literalPrefix(pattern string) string {
	if i := strings.IndexAny(pattern, `*?[\`); i >= 0 {
		return pattern[:i]
	}

	return pattern
}

func (s *S3FileSource) List(ctx context.Context, pattern string) ([]string, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("S3FileSource.List: bad pattern %q: %w", pattern, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(literalPrefix(pattern))),
	}

	var out []string
	pages := 0
	err := s.client.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		pages++
		for _, obj := range page.Contents {
			rel := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
			if ok, _ := path.Match(pattern, rel); ok {
				out = append(out, rel)
			}
		}

		return true
	})

	if err != nil {
		return nil, fmt.Errorf("S3FileSource.List: %v: %w", err, eventmodels.ErrSourceUnavailable)
	}

	log.WithContext(ctx).Debugf("S3FileSource.List: %s matched %d objects in %d pages", pattern, len(out), pages)

	sort.Strings(out)

	return out, nil
}

// objectBody releases the fetch deadline once the caller is done reading.
type objectBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *objectBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

// Open fetches an object. The open timeout also covers reading the body,
// and closing the body releases it.
func (s *S3FileSource) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, s.openTimeout)

	resp, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})

	if err != nil {
		cancel()
		return nil, fmt.Errorf("S3FileSource.Open: %s: %v: %w", p, err, eventmodels.ErrSourceUnavailable)
	}

	return &objectBody{ReadCloser: resp.Body, cancel: cancel}, nil
}
