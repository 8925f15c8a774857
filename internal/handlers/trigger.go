package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/gluejobs"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/runlog"
)

type TriggerEvent struct {
	Jobs      []string          `json:"jobs"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

type TriggerHandler struct {
	cfg    *config.TriggerConfig
	glue   gluejobs.JobStarter
	ledger *runlog.Ledger
	log    logging.Logger
	now    func() time.Time
}

// NewTriggerHandler builds the run-glue-job handler. ddb may be nil; runs are
// only recorded when cfg.RunsTable is set.
func NewTriggerHandler(cfg *config.TriggerConfig, glue gluejobs.JobStarter, ddb runlog.PutItemAPI, log logging.Logger) *TriggerHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &TriggerHandler{
		cfg:    cfg,
		glue:   glue,
		ledger: runlog.New(ddb, cfg.RunsTable),
		log:    log,
		now:    time.Now,
	}
}

func (h *TriggerHandler) Handle(ctx context.Context, ev TriggerEvent) (Response, error) {
	jobs := nonEmpty(ev.Jobs)
	if len(jobs) == 0 {
		jobs = h.cfg.DefaultJobs
	}
	if len(jobs) == 0 {
		return Response{
			StatusCode: http.StatusBadRequest,
			Body:       "Error: 'jobs' not provided in event payload",
		}, nil
	}

	started := h.now().UTC().Format(time.RFC3339)
	results := gluejobs.StartAll(ctx, h.glue, jobs, ev.Arguments, h.log)

	for _, r := range results {
		if r.Status != gluejobs.StatusStarted {
			continue
		}
		err := h.ledger.Record(ctx, runlog.Run{
			Job:       r.JobName,
			RunID:     r.RunID,
			Status:    r.Status,
			StartedAt: started,
		})
		if err != nil {
			h.log.Warn("run ledger write failed", "job", r.JobName, "err", err)
		}
	}
	return ok(results), nil
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
