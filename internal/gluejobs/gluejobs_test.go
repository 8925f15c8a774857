package gluejobs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGlue struct {
	inputs []*glue.StartJobRunInput
	fail   map[string]error
	table  *gluetypes.Table
}

func (f *fakeGlue) StartJobRun(_ context.Context, in *glue.StartJobRunInput, _ ...func(*glue.Options)) (*glue.StartJobRunOutput, error) {
	f.inputs = append(f.inputs, in)
	name := aws.ToString(in.JobName)
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return &glue.StartJobRunOutput{JobRunId: aws.String("jr_" + name)}, nil
}

func (f *fakeGlue) GetTable(_ context.Context, in *glue.GetTableInput, _ ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	if f.table == nil {
		return nil, &gluetypes.EntityNotFoundException{Message: aws.String("Table not found")}
	}
	return &glue.GetTableOutput{Table: f.table}, nil
}

func TestStartAll_ContinuesPastFailures(t *testing.T) {
	f := &fakeGlue{fail: map[string]error{"etl-facturas": errors.New("ConcurrentRunsExceededException")}}

	got := StartAll(context.Background(), f, []string{"etl-proveedores", "etl-facturas", " etl-clientes "}, nil, nil)

	assert.Equal(t, []RunResult{
		{JobName: "etl-proveedores", Status: StatusStarted, RunID: "jr_etl-proveedores"},
		{JobName: "etl-facturas", Status: StatusFailed, Error: "ConcurrentRunsExceededException"},
		{JobName: "etl-clientes", Status: StatusStarted, RunID: "jr_etl-clientes"},
	}, got)
	require.Len(t, f.inputs, 3)
	assert.Nil(t, f.inputs[0].Arguments)
}

func TestStartAll_PassesArguments(t *testing.T) {
	f := &fakeGlue{}

	StartAll(context.Background(), f, []string{"etl-proveedores"}, map[string]string{
		"PATH_KEY":  "proveedores",
		"--CSV_SEP": ";",
	}, nil)

	require.Len(t, f.inputs, 1)
	assert.Equal(t, map[string]string{"--PATH_KEY": "proveedores", "--CSV_SEP": ";"}, f.inputs[0].Arguments)
}

func TestLoadTableSchema(t *testing.T) {
	f := &fakeGlue{table: &gluetypes.Table{
		Name: aws.String("processed_proveedores"),
		StorageDescriptor: &gluetypes.StorageDescriptor{
			Location: aws.String("s3://processed/proveedores/"),
			Columns: []gluetypes.Column{
				{Name: aws.String("nit"), Type: aws.String("BIGINT")},
				{Name: aws.String("razon_social"), Type: aws.String("string")},
			},
		},
		PartitionKeys: []gluetypes.Column{{Name: aws.String("dt"), Type: aws.String("string")}},
	}}

	s, err := LoadTableSchema(context.Background(), f, "cce_datalake_processed_db", "processed_proveedores")
	require.NoError(t, err)

	assert.Equal(t, "s3://processed/proveedores/", s.Location)
	assert.Equal(t, "bigint", s.Columns[0].Type)
	assert.Equal(t, []string{"nit", "razon_social", "dt"}, s.ColumnNames())
}

func TestLoadTableSchema_NotFound(t *testing.T) {
	_, err := LoadTableSchema(context.Background(), &fakeGlue{}, "db", "missing")
	require.Error(t, err)

	var nf *gluetypes.EntityNotFoundException
	assert.True(t, errors.As(err, &nf))
}
