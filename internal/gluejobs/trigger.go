package gluejobs

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

type JobStarter interface {
	StartJobRun(ctx context.Context, params *glue.StartJobRunInput, optFns ...func(*glue.Options)) (*glue.StartJobRunOutput, error)
}

const (
	StatusStarted = "Started"
	StatusFailed  = "Failed"
)

type RunResult struct {
	JobName string `json:"job_name"`
	Status  string `json:"status"`
	RunID   string `json:"run_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StartAll starts every named job once, in order. A failure to start one job
// is recorded in its result and does not stop the others.
func StartAll(ctx context.Context, c JobStarter, jobs []string, args map[string]string, log logging.Logger) []RunResult {
	if log == nil {
		log = logging.Nop()
	}
	results := make([]RunResult, 0, len(jobs))
	for _, name := range jobs {
		results = append(results, start(ctx, c, strings.TrimSpace(name), args, log))
	}
	return results
}

func start(ctx context.Context, c JobStarter, name string, args map[string]string, log logging.Logger) RunResult {
	in := &glue.StartJobRunInput{JobName: aws.String(name)}
	if len(args) > 0 {
		in.Arguments = glueArguments(args)
	}

	out, err := c.StartJobRun(ctx, in)
	if err != nil {
		log.Error("start job run failed", "job", name, "err", err)
		return RunResult{JobName: name, Status: StatusFailed, Error: err.Error()}
	}
	runID := aws.ToString(out.JobRunId)
	log.Info("job run started", "job", name, "run_id", runID)
	return RunResult{JobName: name, Status: StatusStarted, RunID: runID}
}

// glueArguments prefixes keys with "--" the way Glue expects job arguments.
func glueArguments(args map[string]string) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		if !strings.HasPrefix(k, "--") {
			k = "--" + k
		}
		out[k] = v
	}
	return out
}
