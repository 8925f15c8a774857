package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
)

var jobFlags = []string{"INPUT_BUCKET", "OUTPUT_BUCKET", "PATH_KEY"}

// parseArgs reads --INPUT_BUCKET, --OUTPUT_BUCKET and --PATH_KEY. Glue adds
// its own arguments (--JOB_ID, --job-bookmark-option, ...) which are ignored.
func parseArgs(args []string) (config.JobParams, error) {
	var p config.JobParams
	fs := pflag.NewFlagSet("raw-to-processed", pflag.ContinueOnError)
	fs.StringVar(&p.InputBucket, "INPUT_BUCKET", "", "bucket holding raw partitions")
	fs.StringVar(&p.OutputBucket, "OUTPUT_BUCKET", "", "bucket receiving parquet output")
	fs.StringVar(&p.PathKey, "PATH_KEY", "", "prefix to scan for partitions")

	if err := fs.Parse(knownArgs(args)); err != nil {
		return p, err
	}
	return p, nil
}

// knownArgs keeps only job flags and their values, in either "--K v" or
// "--K=v" form.
func knownArgs(args []string) []string {
	known := map[string]bool{}
	for _, f := range jobFlags {
		known[f] = true
	}

	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "--") {
			continue
		}
		name, _, hasValue := strings.Cut(strings.TrimPrefix(a, "--"), "=")
		if !known[name] {
			continue
		}
		out = append(out, a)
		if !hasValue && i+1 < len(args) {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}
