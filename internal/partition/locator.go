// Package partition finds the newest data partition under an S3 prefix.
//
// Freshness is taken from the partition path alone: the lexicographically
// greatest parent directory holding a data file wins. Object timestamps are
// never consulted, so partitions must be named so that string order equals
// chronological order (zero-padded dates, dt=YYYY-MM-DD, ...).
package partition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

const DefaultExtension = ".csv"

var ErrNotFound = errors.New("not found")

// NotFoundError reports a prefix with no partitions, or a partition with no
// data file.
type NotFoundError struct {
	Bucket string
	Prefix string
	What   string // "partition" or "data file"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found under s3://%s/%s", e.What, e.Bucket, e.Prefix)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type Locator struct {
	client    s3.ListObjectsV2APIClient
	extension string
	log       logging.Logger
}

type Option func(*Locator)

// WithExtension overrides the data file suffix. Matching is case-sensitive.
func WithExtension(ext string) Option {
	return func(l *Locator) {
		if strings.TrimSpace(ext) != "" {
			l.extension = ext
		}
	}
}

func WithLogger(log logging.Logger) Option {
	return func(l *Locator) { l.log = log }
}

func NewLocator(client s3.ListObjectsV2APIClient, opts ...Option) *Locator {
	l := &Locator{client: client, extension: DefaultExtension}
	for _, fn := range opts {
		fn(l)
	}
	if l.log == nil {
		l.log = logging.Nop()
	}
	return l
}

func (l *Locator) isDataFile(key string) bool {
	return strings.HasSuffix(key, l.extension)
}

// LocateLatest lists every object under prefix (all pages) and returns the
// greatest parent directory among keys carrying the data extension.
func (l *Locator) LocateLatest(ctx context.Context, bucket, prefix string) (string, error) {
	p := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	partitions := map[string]struct{}{}
	pages, objects := 0, 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("s3 list s3://%s/%s: %w", bucket, prefix, err)
		}
		pages++
		for _, obj := range page.Contents {
			objects++
			key := aws.ToString(obj.Key)
			if !l.isDataFile(key) {
				continue
			}
			partitions[parentDir(key)] = struct{}{}
		}
	}
	l.log.Debug("listed prefix", "bucket", bucket, "prefix", prefix,
		"pages", pages, "objects", objects, "partitions", len(partitions))

	if len(partitions) == 0 {
		return "", &NotFoundError{Bucket: bucket, Prefix: prefix, What: "partition"}
	}

	latest, first := "", true
	for part := range partitions {
		if first || part > latest {
			latest, first = part, false
		}
	}
	return latest, nil
}

// LocateFile returns the first key, in listing order, directly under path that
// carries the data extension.
func (l *Locator) LocateFile(ctx context.Context, bucket, path string) (string, error) {
	prefix := ensureTrailingSlash(path)
	p := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})

	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("s3 list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if l.isDataFile(key) {
				return key, nil
			}
		}
	}
	return "", &NotFoundError{Bucket: bucket, Prefix: prefix, What: "data file"}
}

// parentDir drops the last path segment: "a/b/file.csv" -> "a/b".
func parentDir(key string) string {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return ""
	}
	return key[:i]
}

func ensureTrailingSlash(s string) string {
	if s == "" {
		return ""
	}
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
