package gluejobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
)

type CatalogClient interface {
	GetTable(ctx context.Context, params *glue.GetTableInput, optFns ...func(*glue.Options)) (*glue.GetTableOutput, error)
}

type TableSchema struct {
	Database   string
	Table      string
	Location   string
	Columns    []Column
	Partitions []Column
}

type Column struct {
	Name string
	Type string
}

// ColumnNames lists data columns followed by partition keys, in catalog order.
func (s *TableSchema) ColumnNames() []string {
	out := make([]string, 0, len(s.Columns)+len(s.Partitions))
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	for _, p := range s.Partitions {
		out = append(out, p.Name)
	}
	return out
}

func LoadTableSchema(ctx context.Context, c CatalogClient, database, table string) (*TableSchema, error) {
	out, err := c.GetTable(ctx, &glue.GetTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	if err != nil {
		return nil, fmt.Errorf("glue GetTable %s.%s: %w", database, table, err)
	}
	if out.Table == nil {
		return nil, fmt.Errorf("glue GetTable %s.%s: empty table", database, table)
	}

	ti := out.Table
	schema := &TableSchema{
		Database: database,
		Table:    aws.ToString(ti.Name),
	}
	if sd := ti.StorageDescriptor; sd != nil {
		schema.Location = aws.ToString(sd.Location)
		for _, col := range sd.Columns {
			schema.Columns = append(schema.Columns, Column{
				Name: aws.ToString(col.Name),
				Type: strings.ToLower(strings.TrimSpace(aws.ToString(col.Type))),
			})
		}
	}
	for _, p := range ti.PartitionKeys {
		schema.Partitions = append(schema.Partitions, Column{
			Name: aws.ToString(p.Name),
			Type: strings.ToLower(strings.TrimSpace(aws.ToString(p.Type))),
		})
	}
	return schema, nil
}
