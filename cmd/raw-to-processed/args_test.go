package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
)

func TestParseArgs_GlueStyle(t *testing.T) {
	got, err := parseArgs([]string{
		"--JOB_ID", "j_123",
		"--INPUT_BUCKET", "cce-datalake-raw",
		"--job-bookmark-option", "job-bookmark-disable",
		"--OUTPUT_BUCKET=cce-datalake-processed",
		"--PATH_KEY", "proveedores",
		"--JOB_RUN_ID", "jr_456",
	})
	require.NoError(t, err)
	assert.Equal(t, config.JobParams{
		InputBucket:  "cce-datalake-raw",
		OutputBucket: "cce-datalake-processed",
		PathKey:      "proveedores",
	}, got)
}

func TestParseArgs_Partial(t *testing.T) {
	got, err := parseArgs([]string{"--PATH_KEY", "facturas"})
	require.NoError(t, err)
	assert.Equal(t, config.JobParams{PathKey: "facturas"}, got)

	got, err = parseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, config.JobParams{}, got)
}
