package config

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// JobParams are the three arguments the raw-to-processed job is started with.
type JobParams struct {
	InputBucket  string `json:"input_bucket"`
	OutputBucket string `json:"output_bucket"`
	PathKey      string `json:"path_key"`
}

// Merge overlays the non-empty fields of o.
func (p JobParams) Merge(o JobParams) JobParams {
	if v := strings.TrimSpace(o.InputBucket); v != "" {
		p.InputBucket = v
	}
	if v := strings.TrimSpace(o.OutputBucket); v != "" {
		p.OutputBucket = v
	}
	if v := strings.TrimSpace(o.PathKey); v != "" {
		p.PathKey = v
	}
	return p
}

func (p JobParams) Validate() error {
	var missing []string
	if p.InputBucket == "" {
		missing = append(missing, "INPUT_BUCKET")
	}
	if p.OutputBucket == "" {
		missing = append(missing, "OUTPUT_BUCKET")
	}
	if p.PathKey == "" {
		missing = append(missing, "PATH_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing job parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

type AthenaConfig struct {
	Database       string
	Workgroup      string
	OutputLocation string
	MaxWait        time.Duration
	PollInterval   time.Duration
}

type NotifyConfig struct {
	AlertsTopicArn string
	RunsTable      string
}

type JobConfig struct {
	Params          JobParams
	Extension       string
	Delimiter       rune
	Encoding        string
	CollisionPolicy string // suffix|fail
	RepairTable     string
	Athena          AthenaConfig
	Notify          NotifyConfig
}

// LoadJobConfig reads the raw-to-processed settings. Job parameters are not
// validated here because the CLI and the invocation event may still supply them.
func LoadJobConfig(ctx context.Context, l *Loader) (*JobConfig, error) {
	cfg := &JobConfig{}
	var err error
	str := func(key, def string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = l.String(ctx, key, def)
		return v
	}

	cfg.Params = JobParams{
		InputBucket:  str("INPUT_BUCKET", ""),
		OutputBucket: str("OUTPUT_BUCKET", ""),
		PathKey:      str("PATH_KEY", ""),
	}
	cfg.Extension = str("DATA_FILE_EXT", ".csv")
	cfg.Encoding = str("CSV_ENCODING", "ISO-8859-1")
	delim := str("CSV_DELIMITER", ",")
	cfg.CollisionPolicy = strings.ToLower(str("COLUMN_COLLISION_POLICY", "suffix"))
	cfg.RepairTable = str("ATHENA_REPAIR_TABLE", "")
	cfg.Notify = NotifyConfig{
		AlertsTopicArn: str("ALERTS_TOPIC_ARN", ""),
		RunsTable:      str("JOB_RUNS_TABLE", ""),
	}
	if err != nil {
		return nil, err
	}

	cfg.Delimiter, err = parseDelimiter(delim)
	if err != nil {
		return nil, err
	}
	if cfg.CollisionPolicy != "suffix" && cfg.CollisionPolicy != "fail" {
		return nil, fmt.Errorf("env COLUMN_COLLISION_POLICY: want suffix or fail, got %q", cfg.CollisionPolicy)
	}
	if cfg.RepairTable != "" {
		if cfg.Athena, err = loadAthena(ctx, l); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func parseDelimiter(s string) (rune, error) {
	if s == `\t` || s == "tab" {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("env CSV_DELIMITER: want a single character, got %q", s)
	}
	return r, nil
}

type QueryConfig struct {
	Athena  AthenaConfig
	Query   string
	MaxRows int
}

const (
	defaultDatabase = "cce_datalake_processed_db"
	defaultQuery    = "SELECT * FROM processed_proveedores LIMIT 10;"
	defaultOutput   = "s3://cce-datalake-analytics/athena-results/"
)

func LoadQueryConfig(ctx context.Context, l *Loader) (*QueryConfig, error) {
	athena, err := loadAthena(ctx, l)
	if err != nil {
		return nil, err
	}
	q, err := l.String(ctx, "ATHENA_QUERY", defaultQuery)
	if err != nil {
		return nil, err
	}
	maxRows, err := l.Int(ctx, "ATHENA_MAX_ROWS", 1000)
	if err != nil {
		return nil, err
	}
	return &QueryConfig{Athena: athena, Query: q, MaxRows: maxRows}, nil
}

func loadAthena(ctx context.Context, l *Loader) (AthenaConfig, error) {
	var (
		a   AthenaConfig
		err error
	)
	if a.Database, err = l.String(ctx, "ATHENA_DATABASE", defaultDatabase); err != nil {
		return a, err
	}
	if a.Workgroup, err = l.String(ctx, "ATHENA_WORKGROUP", "primary"); err != nil {
		return a, err
	}
	if a.OutputLocation, err = l.String(ctx, "ATHENA_OUTPUT", defaultOutput); err != nil {
		return a, err
	}
	if !strings.HasPrefix(a.OutputLocation, "s3://") {
		return a, fmt.Errorf("ATHENA_OUTPUT must start with s3://")
	}
	if a.MaxWait, err = l.Duration(ctx, "ATHENA_MAX_WAIT", 5*time.Minute); err != nil {
		return a, err
	}
	if a.PollInterval, err = l.Duration(ctx, "ATHENA_POLL_INTERVAL", 2*time.Second); err != nil {
		return a, err
	}
	return a, nil
}

type TriggerConfig struct {
	DefaultJobs []string
	RunsTable   string
}

func LoadTriggerConfig(ctx context.Context, l *Loader) (*TriggerConfig, error) {
	jobs, err := l.List(ctx, "GLUE_JOBS")
	if err != nil {
		return nil, err
	}
	table, err := l.String(ctx, "JOB_RUNS_TABLE", "")
	if err != nil {
		return nil, err
	}
	return &TriggerConfig{DefaultJobs: jobs, RunsTable: table}, nil
}
