package etl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/columns"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/dataset"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/notify"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/partition"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/query"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/runlog"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/storage"
)

const JobName = "raw-to-processed"

// Clients are the AWS APIs the job talks to. Athena, SNS and DynamoDB are only
// used when the matching setting is configured.
type Clients struct {
	S3       storage.S3Client
	Athena   query.AthenaClient
	SNS      notify.Publisher
	DynamoDB runlog.PutItemAPI
}

// Report describes one completed run.
type Report struct {
	RunID     string   `json:"run_id"`
	Partition string   `json:"partition"`
	Source    string   `json:"source"`
	Output    string   `json:"output"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	Replaced  int      `json:"replaced_objects"`
}

// RawToProcessed finds the newest raw partition, cleans its column names and
// rewrites it as Parquet under the same partition path of the output bucket.
type RawToProcessed struct {
	cfg      *config.JobConfig
	locator  *partition.Locator
	store    *storage.Store
	athena   *query.Runner
	notifier *notify.Notifier
	ledger   *runlog.Ledger
	log      logging.Logger
	now      func() time.Time
}

func NewRawToProcessed(cfg *config.JobConfig, c Clients, log logging.Logger) *RawToProcessed {
	if log == nil {
		log = logging.Nop()
	}
	j := &RawToProcessed{
		cfg:      cfg,
		locator:  partition.NewLocator(c.S3, partition.WithExtension(cfg.Extension), partition.WithLogger(log)),
		store:    storage.NewStore(c.S3),
		notifier: notify.New(c.SNS, cfg.Notify.AlertsTopicArn),
		ledger:   runlog.New(c.DynamoDB, cfg.Notify.RunsTable),
		log:      log,
		now:      time.Now,
	}
	if c.Athena != nil {
		j.athena = query.NewRunner(c.Athena, log)
	}
	return j
}

// Handle is the Lambda entrypoint. Event fields override the configured job
// parameters, so one function can serve several prefixes.
func (j *RawToProcessed) Handle(ctx context.Context, ev config.JobParams) (*Report, error) {
	return j.Run(ctx, j.cfg.Params.Merge(ev))
}

// Run executes discover -> read -> normalize -> write. The output partition is
// not touched until the source has been read and encoded.
func (j *RawToProcessed) Run(ctx context.Context, p config.JobParams) (rep *Report, err error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	started := j.now().UTC()
	rep = &Report{RunID: uuid.NewString()}
	log := j.log.With("run_id", rep.RunID)

	defer func() {
		j.finish(ctx, log, started, rep, err)
	}()

	log.Info("looking for latest partition", "bucket", p.InputBucket, "prefix", p.PathKey)
	rep.Partition, err = j.locator.LocateLatest(ctx, p.InputBucket, p.PathKey)
	if err != nil {
		log.Error("latest partition lookup failed", "err", err)
		return rep, fmt.Errorf("locate latest partition: %w", err)
	}
	if rep.Partition == "" {
		// Writing an empty partition would replace every object in the output bucket.
		err = fmt.Errorf("data file sits at the root of s3://%s; a partition directory is required", p.InputBucket)
		log.Error("latest partition is the bucket root", "prefix", p.PathKey)
		return rep, err
	}
	log.Info("latest partition found", "partition", rep.Partition)

	key, err := j.locator.LocateFile(ctx, p.InputBucket, rep.Partition)
	if err != nil {
		log.Error("data file lookup failed", "partition", rep.Partition, "err", err)
		return rep, fmt.Errorf("locate data file: %w", err)
	}
	rep.Source = storage.URI(p.InputBucket, key)
	log.Info("data file found", "source", rep.Source)

	ds, err := j.read(ctx, p.InputBucket, key)
	if err != nil {
		log.Error("reading source failed", "source", rep.Source, "err", err)
		return rep, err
	}
	rep.Rows = ds.NumRows()
	log.Info("source read", "rows", rep.Rows, "columns", len(ds.Columns))

	policy := columns.Suffix
	if j.cfg.CollisionPolicy == "fail" {
		policy = columns.Fail
	}
	if err = columns.Normalize(ds, columns.WithCollisionPolicy(policy)); err != nil {
		log.Error("column cleanup failed", "err", err)
		return rep, fmt.Errorf("normalize columns: %w", err)
	}
	rep.Columns = ds.Names()
	log.Info("columns cleaned", "columns", rep.Columns)

	var buf bytes.Buffer
	if err = dataset.WriteParquet(&buf, ds); err != nil {
		log.Error("parquet encoding failed", "err", err)
		return rep, fmt.Errorf("encode parquet: %w", err)
	}

	log.Info("writing processed data", "bucket", p.OutputBucket, "prefix", rep.Partition+"/")
	name := storage.RandHex(16) + ".snappy.parquet"
	outKey, replaced, err := j.store.ReplacePrefix(ctx, p.OutputBucket, rep.Partition, name, buf.Bytes(), "application/octet-stream")
	rep.Replaced = replaced
	if err != nil {
		log.Error("writing processed data failed", "err", err)
		return rep, fmt.Errorf("write output: %w", err)
	}
	rep.Output = storage.URI(p.OutputBucket, outKey)
	log.Info("processed data written", "output", rep.Output, "bytes", buf.Len(), "replaced", replaced)

	if err = j.repair(ctx, log); err != nil {
		return rep, err
	}
	return rep, nil
}

func (j *RawToProcessed) read(ctx context.Context, bucket, key string) (*dataset.Dataset, error) {
	body, err := j.store.Open(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	defer body.Close()

	ds, err := dataset.ReadCSV(body, dataset.ReadOptions{
		Delimiter: j.cfg.Delimiter,
		Encoding:  j.cfg.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", storage.URI(bucket, key), err)
	}
	return ds, nil
}

func (j *RawToProcessed) repair(ctx context.Context, log logging.Logger) error {
	if j.cfg.RepairTable == "" {
		return nil
	}
	if j.athena == nil {
		return errors.New("ATHENA_REPAIR_TABLE is set but no athena client was provided")
	}
	a := j.cfg.Athena
	res, err := j.athena.RepairTable(ctx, j.cfg.RepairTable, query.RunOptions{
		Database:       a.Database,
		Workgroup:      a.Workgroup,
		OutputLocation: a.OutputLocation,
		MaxWait:        a.MaxWait,
		PollInterval:   a.PollInterval,
	})
	if err != nil {
		log.Error("partition repair failed", "table", j.cfg.RepairTable, "err", err)
		return err
	}
	log.Info("partitions repaired", "table", j.cfg.RepairTable, "qid", res.QueryExecutionID)
	return nil
}

// finish records the outcome. Ledger and notification failures are logged
// only; they never change the job result.
func (j *RawToProcessed) finish(ctx context.Context, log logging.Logger, started time.Time, rep *Report, runErr error) {
	status := "SUCCEEDED"
	errText := ""
	if runErr != nil {
		status = "FAILED"
		errText = runErr.Error()
	}
	ended := j.now().UTC().Format(time.RFC3339)

	if err := j.ledger.Record(ctx, runlog.Run{
		Job:       JobName,
		RunID:     rep.RunID,
		Status:    status,
		Partition: rep.Partition,
		Output:    rep.Output,
		Rows:      rep.Rows,
		Columns:   rep.Columns,
		Error:     errText,
		StartedAt: started.Format(time.RFC3339),
		EndedAt:   ended,
	}); err != nil {
		log.Warn("run ledger write failed", "err", err)
	}

	if err := j.notifier.Send(ctx, notify.Event{
		Job:       JobName,
		Status:    status,
		Partition: rep.Partition,
		Output:    rep.Output,
		Rows:      rep.Rows,
		Error:     errText,
		At:        ended,
	}); err != nil {
		log.Warn("notification failed", "err", err)
	}

	if runErr == nil {
		log.Info("job completed", "rows", rep.Rows, "output", rep.Output)
	}
}
