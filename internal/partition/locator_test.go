package partition

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves keys in the given order, pageSize at a time, honouring
// Prefix and Delimiter the way S3 does for the fields the locator reads.
type fakeLister struct {
	keys     []string
	pageSize int
	calls    int
	err      error
}

func (f *fakeLister) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	prefix := aws.ToString(in.Prefix)
	delim := aws.ToString(in.Delimiter)

	var matched []string
	for _, k := range f.keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if delim != "" && strings.Contains(k[len(prefix):], delim) {
			continue
		}
		matched = append(matched, k)
	}

	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	size := f.pageSize
	if size <= 0 {
		size = 1000
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(matched))}
	for _, k := range matched[start:end] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(k)})
	}
	if end < len(matched) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func TestLocateLatest_PicksGreatestPartition(t *testing.T) {
	orders := [][]string{
		{"proveedores/2024-01-01/file.csv", "proveedores/2024-02-15/file.csv"},
		{"proveedores/2024-02-15/file.csv", "proveedores/2024-01-01/file.csv"},
	}
	for _, keys := range orders {
		for _, pageSize := range []int{1, 2, 1000} {
			f := &fakeLister{keys: keys, pageSize: pageSize}
			got, err := NewLocator(f).LocateLatest(context.Background(), "raw", "proveedores")
			require.NoError(t, err)
			assert.Equal(t, "proveedores/2024-02-15", got)
		}
	}
}

func TestLocateLatest_ExhaustsAllPages(t *testing.T) {
	var keys []string
	for d := 1; d <= 28; d++ {
		day := strconv.Itoa(d)
		if d < 10 {
			day = "0" + day
		}
		keys = append(keys, "data/2024-03-"+day+"/part.csv", "data/2024-03-"+day+"/_SUCCESS")
	}
	// the newest partition is on the very last page
	f := &fakeLister{keys: keys, pageSize: 5}

	got, err := NewLocator(f).LocateLatest(context.Background(), "raw", "data/")
	require.NoError(t, err)

	assert.Equal(t, "data/2024-03-28", got)
	assert.Equal(t, 12, f.calls)
}

func TestLocateLatest_IgnoresPartitionsWithoutDataFiles(t *testing.T) {
	f := &fakeLister{keys: []string{
		"data/2024-01-01/file.csv",
		"data/2024-05-01/_SUCCESS",
		"data/2024-06-01/file.CSV",
		"data/2024-07-01/file.csv.tmp",
	}}

	got, err := NewLocator(f).LocateLatest(context.Background(), "raw", "data")
	require.NoError(t, err)
	assert.Equal(t, "data/2024-01-01", got)
}

func TestLocateLatest_LexicographicNotChronological(t *testing.T) {
	// Known limitation: non zero-padded names sort as strings.
	f := &fakeLister{keys: []string{"data/2024-9-1/a.csv", "data/2024-10-1/a.csv"}}

	got, err := NewLocator(f).LocateLatest(context.Background(), "raw", "data")
	require.NoError(t, err)
	assert.Equal(t, "data/2024-9-1", got)
}

func TestLocateLatest_NestedPartitionsAndCustomExtension(t *testing.T) {
	f := &fakeLister{keys: []string{
		"data/dt=2024-01-01/hour=23/x.txt",
		"data/dt=2024-01-02/hour=00/x.txt",
		"data/dt=2024-01-03/hour=00/x.csv",
	}}

	got, err := NewLocator(f, WithExtension(".txt")).LocateLatest(context.Background(), "raw", "data")
	require.NoError(t, err)
	assert.Equal(t, "data/dt=2024-01-02/hour=00", got)
}

func TestLocateLatest_NotFound(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{name: "empty listing", keys: nil},
		{name: "no data files", keys: []string{"data/2024-01-01/_SUCCESS", "data/readme.md"}},
		{name: "other prefix", keys: []string{"other/2024-01-01/file.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLocator(&fakeLister{keys: tt.keys}).LocateLatest(context.Background(), "raw", "data")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotFound))

			var nf *NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, "partition", nf.What)
			assert.Equal(t, "raw", nf.Bucket)
		})
	}
}

func TestLocateLatest_ListError(t *testing.T) {
	f := &fakeLister{err: errors.New("access denied")}

	_, err := NewLocator(f).LocateLatest(context.Background(), "raw", "data")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "access denied")
}

func TestLocateFile_FirstInListingOrder(t *testing.T) {
	f := &fakeLister{keys: []string{
		"data/2024-02-15/_SUCCESS",
		"data/2024-02-15/zz.csv",
		"data/2024-02-15/aa.csv",
		"data/2024-02-15/nested/bb.csv",
	}, pageSize: 1}

	got, err := NewLocator(f).LocateFile(context.Background(), "raw", "data/2024-02-15")
	require.NoError(t, err)
	assert.Equal(t, "data/2024-02-15/zz.csv", got)
}

func TestLocateFile_DoesNotMatchSiblingPrefix(t *testing.T) {
	f := &fakeLister{keys: []string{"data/2024-02-150/file.csv", "data/2024-02-15/nested/file.csv"}}

	_, err := NewLocator(f).LocateFile(context.Background(), "raw", "data/2024-02-15")
	require.Error(t, err)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "data file", nf.What)
	assert.Equal(t, "data/2024-02-15/", nf.Prefix)
}

func TestParentDir(t *testing.T) {
	assert.Equal(t, "a/b", parentDir("a/b/file.csv"))
	assert.Equal(t, "a", parentDir("a/file.csv"))
	assert.Equal(t, "", parentDir("file.csv"))
}
