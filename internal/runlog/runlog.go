package runlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// retention keeps ledger rows for 90 days via the table's TTL attribute.
const retention = 90 * 24 * time.Hour

// Run is one ledger row.
// PK = JOB#<job>
// SK = RUN#<started RFC3339>#<run id>
type Run struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	Job       string   `dynamodbav:"Job"`
	RunID     string   `dynamodbav:"RunId"`
	Status    string   `dynamodbav:"Status"`
	Partition string   `dynamodbav:"Partition,omitempty"`
	Output    string   `dynamodbav:"Output,omitempty"`
	Rows      int      `dynamodbav:"Rows,omitempty"`
	Columns   []string `dynamodbav:"Columns,omitempty"`
	Error     string   `dynamodbav:"Error,omitempty"`
	StartedAt string   `dynamodbav:"StartedAt"`
	EndedAt   string   `dynamodbav:"EndedAt,omitempty"`
	ExpiresAt int64    `dynamodbav:"ExpiresAt"`
}

// Ledger records job runs. With no table configured it records nothing.
type Ledger struct {
	ddb   PutItemAPI
	table string
	now   func() time.Time
}

func New(ddb PutItemAPI, table string) *Ledger {
	return &Ledger{ddb: ddb, table: strings.TrimSpace(table), now: time.Now}
}

func (l *Ledger) Enabled() bool {
	return l != nil && l.ddb != nil && l.table != ""
}

// Record writes r, filling the keys and TTL. StartedAt defaults to now.
func (l *Ledger) Record(ctx context.Context, r Run) error {
	if !l.Enabled() {
		return nil
	}
	now := l.now().UTC()
	if r.StartedAt == "" {
		r.StartedAt = now.Format(time.RFC3339)
	}
	r.PK = "JOB#" + r.Job
	r.SK = fmt.Sprintf("RUN#%s#%s", r.StartedAt, r.RunID)
	r.ExpiresAt = now.Add(retention).Unix()

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = l.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb putitem %s: %w", l.table, err)
	}
	return nil
}
