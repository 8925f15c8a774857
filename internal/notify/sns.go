package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Event is the JSON message published for each finished job run.
type Event struct {
	Job       string `json:"job"`
	Status    string `json:"status"` // SUCCEEDED|FAILED
	Partition string `json:"partition,omitempty"`
	Output    string `json:"output,omitempty"`
	Rows      int    `json:"rows,omitempty"`
	Error     string `json:"error,omitempty"`
	At        string `json:"at"`
}

// Notifier publishes job outcomes to an SNS topic. A Notifier with an empty
// topic is disabled and Send is a no-op.
type Notifier struct {
	sns   Publisher
	topic string
}

func New(p Publisher, topicArn string) *Notifier {
	return &Notifier{sns: p, topic: strings.TrimSpace(topicArn)}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.sns != nil && n.topic != ""
}

func (n *Notifier) Send(ctx context.Context, e Event) error {
	if !n.Enabled() {
		return nil
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	// SNS subjects are limited to 100 characters.
	subject := fmt.Sprintf("[%s] %s", e.Status, e.Job)
	if len(subject) > 100 {
		subject = subject[:100]
	}

	_, err = n.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topic),
		Subject:  aws.String(subject),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", n.topic, err)
	}
	return nil
}
