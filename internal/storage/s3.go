package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client is the subset of *s3.Client the store uses.
type S3Client interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// deleteBatch is the DeleteObjects request limit.
const deleteBatch = 1000

type Store struct {
	s3 S3Client
}

func NewStore(c S3Client) *Store {
	return &Store{s3: c}
}

func URI(bucket, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, key)
}

// Open returns the object body. The caller closes it.
func (s *Store) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 getobject %s: %w", URI(bucket, key), err)
	}
	return out.Body, nil
}

// ReplacePrefix deletes every object under prefix and then uploads data as
// <prefix>/<name>. The result is a full overwrite of the prefix, not a merge.
func (s *Store) ReplacePrefix(ctx context.Context, bucket, prefix, name string, data []byte, contentType string) (string, int, error) {
	dir := ensureTrailingSlash(prefix)

	deleted, err := s.DeletePrefix(ctx, bucket, dir)
	if err != nil {
		return "", deleted, err
	}

	key := dir + name
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", deleted, fmt.Errorf("s3 putobject %s: %w", URI(bucket, key), err)
	}
	return key, deleted, nil
}

// DeletePrefix removes all objects whose key starts with prefix. An empty
// prefix is refused so a misconfigured job cannot wipe a bucket.
func (s *Store) DeletePrefix(ctx context.Context, bucket, prefix string) (int, error) {
	if strings.Trim(prefix, "/") == "" {
		return 0, fmt.Errorf("refusing to delete bucket root s3://%s/", bucket)
	}

	var keys []s3types.ObjectIdentifier
	p := s3.NewListObjectsV2Paginator(s.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, fmt.Errorf("s3 list %s: %w", URI(bucket, prefix), err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, s3types.ObjectIdentifier{Key: obj.Key})
		}
	}

	deleted := 0
	for start := 0; start < len(keys); start += deleteBatch {
		end := start + deleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		out, err := s.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{
				Objects: keys[start:end],
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return deleted, fmt.Errorf("s3 deleteobjects %s: %w", URI(bucket, prefix), err)
		}
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return deleted, fmt.Errorf("s3 deleteobjects %s: %d failed, first %s: %s",
				URI(bucket, prefix), len(out.Errors), aws.ToString(e.Key), aws.ToString(e.Message))
		}
		deleted += end - start
	}
	return deleted, nil
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

// RandHex returns 2*nBytes hex characters for unique object names.
func RandHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
