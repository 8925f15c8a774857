package query

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

type AthenaClient interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

type RunOptions struct {
	Database       string
	Workgroup      string
	OutputLocation string // s3://bucket/prefix/
	MaxWait        time.Duration
	PollInterval   time.Duration
	MaxResultRows  int
	// SkipResults stops after the terminal state (DDL such as MSCK REPAIR).
	SkipResults bool
}

type Result struct {
	QueryExecutionID string
	State            string
	Columns          []string
	Rows             [][]string
	ScannedBytes     int64
	ExecutionMs      int64
}

// QueryError is returned when a query ends FAILED or CANCELLED, or is still
// running when MaxWait elapses (State "TIMEOUT").
type QueryError struct {
	State            string
	Reason           string
	QueryExecutionID string
}

func (e *QueryError) Error() string {
	if e.QueryExecutionID != "" {
		return fmt.Sprintf("athena %s: %s (qid=%s)", e.State, e.Reason, e.QueryExecutionID)
	}
	return fmt.Sprintf("athena %s: %s", e.State, e.Reason)
}

type Runner struct {
	client AthenaClient
	log    logging.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewRunner(c AthenaClient, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{client: c, log: log, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run starts the query, polls until it reaches a terminal state and, on
// success, fetches the result pages. The header row Athena returns for
// SELECT queries is dropped.
func (r *Runner) Run(ctx context.Context, sql string, opt RunOptions) (*Result, error) {
	if strings.TrimSpace(opt.Database) == "" {
		return nil, fmt.Errorf("missing athena database")
	}
	if strings.TrimSpace(opt.OutputLocation) == "" {
		return nil, fmt.Errorf("missing athena output location")
	}
	if !strings.HasPrefix(opt.OutputLocation, "s3://") {
		return nil, fmt.Errorf("athena output location must start with s3://")
	}
	if opt.Workgroup == "" {
		opt.Workgroup = "primary"
	}
	if opt.MaxWait == 0 {
		opt.MaxWait = 60 * time.Second
	}
	if opt.PollInterval == 0 {
		opt.PollInterval = 2 * time.Second
	}
	if opt.MaxResultRows == 0 {
		opt.MaxResultRows = 1000
	}

	startOut, err := r.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(sql),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(opt.Database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(opt.OutputLocation),
		},
		WorkGroup: aws.String(opt.Workgroup),
	})
	if err != nil {
		return nil, fmt.Errorf("athena StartQueryExecution: %w", err)
	}
	qid := aws.ToString(startOut.QueryExecutionId)
	log := r.log.With("qid", qid)
	log.Info("query started", "database", opt.Database, "workgroup", opt.Workgroup)

	exec, err := r.wait(ctx, qid, opt, log)
	if err != nil {
		return nil, err
	}

	res := &Result{QueryExecutionID: qid, State: string(exec.Status.State)}
	if exec.Statistics != nil {
		res.ScannedBytes = aws.ToInt64(exec.Statistics.DataScannedInBytes)
		res.ExecutionMs = aws.ToInt64(exec.Statistics.EngineExecutionTimeInMillis)
	}
	if opt.SkipResults {
		return res, nil
	}

	if err := r.fetch(ctx, qid, opt.MaxResultRows, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) wait(ctx context.Context, qid string, opt RunOptions, log logging.Logger) (*athenatypes.QueryExecution, error) {
	deadline := time.Now().Add(opt.MaxWait)
	for {
		getOut, err := r.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(qid),
		})
		if err != nil {
			return nil, fmt.Errorf("athena GetQueryExecution: %w", err)
		}
		exec := getOut.QueryExecution
		if exec == nil || exec.Status == nil {
			return nil, fmt.Errorf("athena GetQueryExecution: empty status for qid=%s", qid)
		}

		switch exec.Status.State {
		case athenatypes.QueryExecutionStateSucceeded:
			log.Info("query finished", "state", exec.Status.State)
			return exec, nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			reason := aws.ToString(exec.Status.StateChangeReason)
			if reason == "" {
				reason = "no reason provided"
			}
			log.Error("query finished", "state", exec.Status.State, "reason", reason)
			return nil, &QueryError{State: string(exec.Status.State), Reason: reason, QueryExecutionID: qid}
		}

		if time.Now().After(deadline) {
			return nil, &QueryError{State: "TIMEOUT", Reason: "query timed out", QueryExecutionID: qid}
		}
		log.Debug("waiting for query", "state", exec.Status.State)
		if err := r.sleep(ctx, opt.PollInterval); err != nil {
			return nil, err
		}
	}
}

func (r *Runner) fetch(ctx context.Context, qid string, maxRows int, res *Result) error {
	var (
		nextToken *string
		header    = true
	)
	for {
		out, err := r.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(qid),
			NextToken:        nextToken,
			MaxResults:       aws.Int32(1000),
		})
		if err != nil {
			return fmt.Errorf("athena GetQueryResults: %w", err)
		}
		if out.ResultSet == nil {
			return nil
		}
		if res.Columns == nil && out.ResultSet.ResultSetMetadata != nil {
			for _, c := range out.ResultSet.ResultSetMetadata.ColumnInfo {
				res.Columns = append(res.Columns, aws.ToString(c.Name))
			}
		}

		for _, row := range out.ResultSet.Rows {
			vals := make([]string, 0, len(row.Data))
			for _, d := range row.Data {
				vals = append(vals, aws.ToString(d.VarCharValue))
			}
			if header {
				header = false
				if slices.Equal(vals, res.Columns) {
					continue
				}
			}
			if len(res.Rows) >= maxRows {
				return nil
			}
			res.Rows = append(res.Rows, vals)
		}

		if aws.ToString(out.NextToken) == "" {
			return nil
		}
		nextToken = out.NextToken
	}
}
