package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/gluejobs"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/query"
)

// QueryEvent overrides the configured query. All fields are optional.
type QueryEvent struct {
	Query    string `json:"query,omitempty"`
	Database string `json:"database,omitempty"`
	Table    string `json:"table,omitempty"`
}

type QueryResult struct {
	Message          string     `json:"message"`
	QueryExecutionID string     `json:"query_execution_id"`
	Columns          []string   `json:"columns"`
	Rows             [][]string `json:"rows"`
	ScannedBytes     int64      `json:"scanned_bytes"`
	ExecMs           int64      `json:"exec_ms"`
}

type QueryHandler struct {
	cfg     *config.QueryConfig
	runner  *query.Runner
	catalog gluejobs.CatalogClient
	log     logging.Logger
}

// NewQueryHandler builds the athena-query handler. catalog may be nil, in
// which case table schema lookups are skipped.
func NewQueryHandler(cfg *config.QueryConfig, ath query.AthenaClient, catalog gluejobs.CatalogClient, log logging.Logger) *QueryHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &QueryHandler{
		cfg:     cfg,
		runner:  query.NewRunner(ath, log),
		catalog: catalog,
		log:     log,
	}
}

func (h *QueryHandler) Handle(ctx context.Context, ev QueryEvent) (Response, error) {
	sql := h.cfg.Query
	if q := strings.TrimSpace(ev.Query); q != "" {
		if err := query.ValidateReadOnly(q); err != nil {
			h.log.Warn("query rejected", "err", err)
			return errBody(http.StatusBadRequest, err), nil
		}
		sql = q
	}
	database := h.cfg.Athena.Database
	if db := strings.TrimSpace(ev.Database); db != "" {
		database = db
	}
	log := h.log.With("database", database)

	if table := strings.TrimSpace(ev.Table); table != "" && h.catalog != nil {
		schema, err := gluejobs.LoadTableSchema(ctx, h.catalog, database, table)
		if err != nil {
			log.Error("table schema lookup failed", "table", table, "err", err)
			return errBody(http.StatusInternalServerError, err), nil
		}
		log.Info("table schema", "table", schema.Table, "location", schema.Location, "columns", schema.ColumnNames())
	}

	a := h.cfg.Athena
	res, err := h.runner.Run(ctx, sql, query.RunOptions{
		Database:       database,
		Workgroup:      a.Workgroup,
		OutputLocation: a.OutputLocation,
		MaxWait:        a.MaxWait,
		PollInterval:   a.PollInterval,
		MaxResultRows:  h.cfg.MaxRows,
	})
	if err != nil {
		log.Error("query failed", "err", err)
		return errBody(http.StatusInternalServerError, err), nil
	}

	log.Info("query results", "qid", res.QueryExecutionID, "columns", res.Columns, "rows", len(res.Rows))
	for i, row := range res.Rows {
		log.Info("row", "n", i+1, "data", row)
	}

	return jsonBody(http.StatusOK, QueryResult{
		Message:          "query executed successfully",
		QueryExecutionID: res.QueryExecutionID,
		Columns:          res.Columns,
		Rows:             res.Rows,
		ScannedBytes:     res.ScannedBytes,
		ExecMs:           res.ExecutionMs,
	}), nil
}
