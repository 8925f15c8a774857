package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	in  []*sns.PublishInput
	err error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = append(f.in, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestNotifier_Send(t *testing.T) {
	f := &fakeSNS{}
	n := New(f, "arn:aws:sns:us-east-1:123456789012:etl-alerts")

	err := n.Send(context.Background(), Event{
		Job:       "raw-to-processed",
		Status:    "FAILED",
		Partition: "proveedores/2024-02-15",
		Error:     "no data file found",
		At:        "2024-02-15T10:00:00Z",
	})
	require.NoError(t, err)
	require.Len(t, f.in, 1)

	assert.Equal(t, "[FAILED] raw-to-processed", aws.ToString(f.in[0].Subject))
	var got Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(f.in[0].Message)), &got))
	assert.Equal(t, "proveedores/2024-02-15", got.Partition)
}

func TestNotifier_DisabledWithoutTopic(t *testing.T) {
	f := &fakeSNS{}
	n := New(f, "  ")

	assert.False(t, n.Enabled())
	require.NoError(t, n.Send(context.Background(), Event{Job: "x"}))
	assert.Empty(t, f.in)

	var nilNotifier *Notifier
	assert.False(t, nilNotifier.Enabled())
}

func TestNotifier_SubjectTruncatedAndErrors(t *testing.T) {
	f := &fakeSNS{err: errors.New("AuthorizationError")}
	n := New(f, "arn:topic")

	err := n.Send(context.Background(), Event{Job: strings.Repeat("j", 200), Status: "SUCCEEDED"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationError")
	assert.Len(t, aws.ToString(f.in[0].Subject), 100)
}
