package filesource

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0644))
	}
}

type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	pages   int

	// block makes GetObject wait for its context to end
	block  bool
	getCtx context.Context
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	f.pages = 0

	var keys []*s3.Object
	for k := range f.objects {
		if strings.HasPrefix(k, aws.StringValue(input.Prefix)) {
			keys = append(keys, &s3.Object{Key: aws.String(k)})
		}
	}

	// two objects per page
	for i := 0; i < len(keys); i += 2 {
		end := i + 2
		if end > len(keys) {
			end = len(keys)
		}

		f.pages++
		if !fn(&s3.ListObjectsV2Output{Contents: keys[i:end]}, end == len(keys)) {
			break
		}
	}

	return nil
}

func (f *fakeS3) HeadObjectWithContext(ctx aws.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.StringValue(input.Key)]; ok {
		return &s3.HeadObjectOutput{}, nil
	}

	return nil, awserr.New("NotFound", "not found", nil)
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	f.getCtx = ctx

	if f.block {
		<-ctx.Done()
		return nil, awserr.New(request.CanceledErrorCode, "request context canceled", ctx.Err())
	}

	body, ok := f.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "no such key", nil)
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func newFakeS3Source(keys ...string) *S3FileSource {
	objects := make(map[string]string)
	for _, k := range keys {
		objects["us_options_opra/day_aggs_v1/"+k] = k
	}

	return NewS3FileSourceWithClient(&fakeS3{objects: objects}, S3Config{
		Bucket: "flatfiles",
		Prefix: "us_options_opra/day_aggs_v1/",
	})
}

func TestLocalFileSource(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFiles(t, root, "2022/03/2022-03-01.csv.gz", "2022/03/2022-03-02.csv.gz", "2022/04/2022-04-01.csv.gz", "2022/03/notes.txt")

	src, err := NewLocalFileSource(root)
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		files, err := src.List(ctx, "2022/03/*.csv.gz")
		require.NoError(t, err)
		assert.Equal(t, []string{"2022/03/2022-03-01.csv.gz", "2022/03/2022-03-02.csv.gz"}, files)
	})

	t.Run("star does not cross directories", func(t *testing.T) {
		files, err := src.List(ctx, "2022/*.csv.gz")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("exists and open", func(t *testing.T) {
		ok, err := src.Exists(ctx, "2022/04/2022-04-01.csv.gz")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = src.Exists(ctx, "2022/05/2022-05-01.csv.gz")
		require.NoError(t, err)
		assert.False(t, ok)

		rc, err := src.Open(ctx, "2022/04/2022-04-01.csv.gz")
		require.NoError(t, err)
		defer rc.Close()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "2022/04/2022-04-01.csv.gz", string(body))

		_, err = src.Open(ctx, "missing.csv.gz")
		assert.True(t, errors.Is(err, eventmodels.ErrSourceUnavailable))
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := NewLocalFileSource(filepath.Join(root, "nope"))
		assert.True(t, errors.Is(err, eventmodels.ErrSourceUnavailable))
	})
}

func TestS3FileSource(t *testing.T) {
	ctx := context.Background()
	src := newFakeS3Source("2022/03/2022-03-01.csv.gz", "2022/03/2022-03-02.csv.gz", "2022/03/2022-03-03.csv.gz", "2022/04/2022-04-01.csv.gz", "2023/01/2023-01-03.csv.gz")

	t.Run("list filters by pattern across pages", func(t *testing.T) {
		files, err := src.List(ctx, "2022/*/*.csv.gz")
		require.NoError(t, err)
		assert.Equal(t, []string{
			"2022/03/2022-03-01.csv.gz",
			"2022/03/2022-03-02.csv.gz",
			"2022/03/2022-03-03.csv.gz",
			"2022/04/2022-04-01.csv.gz",
		}, files)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := src.Exists(ctx, "2023/01/2023-01-03.csv.gz")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = src.Exists(ctx, "2023/01/2023-01-04.csv.gz")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("open", func(t *testing.T) {
		rc, err := src.Open(ctx, "2022/04/2022-04-01.csv.gz")
		require.NoError(t, err)
		defer rc.Close()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "2022/04/2022-04-01.csv.gz", string(body))

		_, err = src.Open(ctx, "2022/04/2022-04-02.csv.gz")
		assert.True(t, errors.Is(err, eventmodels.ErrSourceUnavailable))
	})

	t.Run("open is bounded by the open timeout", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{"2022/04/2022-04-01.csv.gz": "body"}}
		bounded := NewS3FileSourceWithClient(fake, S3Config{Bucket: "flatfiles", OpenTimeout: time.Minute})

		rc, err := bounded.Open(ctx, "2022/04/2022-04-01.csv.gz")
		require.NoError(t, err)

		deadline, ok := fake.getCtx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		assert.NoError(t, fake.getCtx.Err())

		require.NoError(t, rc.Close())
		assert.Error(t, fake.getCtx.Err())
	})

	t.Run("open times out", func(t *testing.T) {
		fake := &fakeS3{objects: map[string]string{}, block: true}
		bounded := NewS3FileSourceWithClient(fake, S3Config{Bucket: "flatfiles", OpenTimeout: 20 * time.Millisecond})

		start := time.Now()
		_, err := bounded.Open(ctx, "2022/04/2022-04-01.csv.gz")
		assert.True(t, errors.Is(err, eventmodels.ErrSourceUnavailable))
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("literal prefix", func(t *testing.T) {
		assert.Equal(t, "2022/03/", literalPrefix("2022/03/*.csv.gz"))
		assert.Equal(t, "", literalPrefix("*/*/*.csv.gz"))
		assert.Equal(t, "a/b.csv", literalPrefix("a/b.csv"))
	})
}

func TestNewFileSource(t *testing.T) {
	src, err := NewFileSource(Descriptor{Kind: KindLocal, LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalFileSource{}, src)

	_, err = NewFileSource(Descriptor{Kind: KindS3, S3: S3Config{Bucket: "b"}})
	assert.Error(t, err)

	_, err = NewFileSource(Descriptor{Kind: "ftp"})
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical layout with month", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "2022/03/2022-03-01.csv.gz", "2022/04/2022-04-01.csv.gz")
		src, err := NewLocalFileSource(root)
		require.NoError(t, err)

		files, err := Discover(ctx, src, eventmodels.Period{Year: 2022, Month: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"2022/03/2022-03-01.csv.gz"}, files)
	})

	t.Run("canonical layout whole year", func(t *testing.T) {
		src := newFakeS3Source("2022/03/2022-03-01.csv.gz", "2022/04/2022-04-01.csv.gz", "2023/01/2023-01-03.csv.gz")

		files, err := Discover(ctx, src, eventmodels.Period{Year: 2022})
		require.NoError(t, err)
		assert.Equal(t, []string{"2022/03/2022-03-01.csv.gz", "2022/04/2022-04-01.csv.gz"}, files)
	})

	t.Run("two level fallback filtered by name", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "raw/tsla/2022-03-01.csv.gz", "raw/tsla/2022-04-01.csv.gz", "raw/tsla/2021-03-01.csv.gz")
		src, err := NewLocalFileSource(root)
		require.NoError(t, err)

		files, err := Discover(ctx, src, eventmodels.Period{Year: 2022, Month: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"raw/tsla/2022-03-01.csv.gz"}, files)
	})

	t.Run("any path containing the year", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "2022_dump.csv", "archive/opra_2022.csv.gz", "archive/opra_2021.csv.gz")
		src, err := NewLocalFileSource(root)
		require.NoError(t, err)

		files, err := Discover(ctx, src, eventmodels.Period{Year: 2022})
		require.NoError(t, err)
		assert.Equal(t, []string{"2022_dump.csv", "archive/opra_2022.csv.gz"}, files)
	})

	t.Run("any path containing the month stamp", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "dump/opra_2022-01-03.csv.gz", "dump/opra_2022-07-01.csv.gz")
		src, err := NewLocalFileSource(root)
		require.NoError(t, err)

		files, err := Discover(ctx, src, eventmodels.Period{Year: 2022, Month: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"dump/opra_2022-01-03.csv.gz"}, files)

		_, err = Discover(ctx, src, eventmodels.Period{Year: 2022, Month: 3})
		assert.True(t, errors.Is(err, eventmodels.ErrNoFilesFound))
	})

	t.Run("no files", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, "2021/01/2021-01-04.csv.gz")
		src, err := NewLocalFileSource(root)
		require.NoError(t, err)

		_, err = Discover(ctx, src, eventmodels.Period{Year: 2022})
		assert.True(t, errors.Is(err, eventmodels.ErrNoFilesFound))
	})
}
