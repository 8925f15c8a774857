package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"

	writerfile "github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

var parquetNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// WriteParquet encodes the dataset as a snappy-compressed Parquet file. Column
// names must already be normalized; every field is OPTIONAL so nulls survive.
func WriteParquet(w io.Writer, ds *Dataset) error {
	if ds == nil || len(ds.Columns) == 0 {
		return fmt.Errorf("parquet: dataset has no columns")
	}

	kinds := make([]Kind, len(ds.Columns))
	seen := make(map[string]bool, len(ds.Columns))
	for i, c := range ds.Columns {
		if !parquetNameRe.MatchString(c.Name) {
			return fmt.Errorf("parquet: invalid column name %q", c.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("parquet: duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		kinds[i] = c.Kind()
	}

	schemaDef, err := buildParquetSchema(ds, kinds)
	if err != nil {
		return err
	}

	pfw := writerfile.NewWriterFile(w)
	pw, err := writer.NewJSONWriter(schemaDef, pfw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	rows := ds.NumRows()
	for r := 0; r < rows; r++ {
		row, err := projectRow(ds, kinds, r)
		if err != nil {
			_ = pw.WriteStop()
			return err
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("parquet write stop: %w", err)
	}
	return nil
}

func buildParquetSchema(ds *Dataset, kinds []Kind) (string, error) {
	fields := make([]map[string]string, 0, len(ds.Columns))
	for i, c := range ds.Columns {
		fields = append(fields, map[string]string{
			"Tag": fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", c.Name, parquetType(kinds[i])),
		})
	}
	out := map[string]any{
		"Tag":    "name=parquet_go_root, repetitiontype=REQUIRED",
		"Fields": fields,
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("parquet schema: %w", err)
	}
	return string(b), nil
}

func parquetType(k Kind) string {
	switch k {
	case KindInt64:
		return "type=INT64"
	case KindDouble:
		return "type=DOUBLE"
	case KindBoolean:
		return "type=BOOLEAN"
	default:
		return "type=BYTE_ARRAY, convertedtype=UTF8"
	}
}

// projectRow renders one row as the JSON document the parquet JSON writer consumes.
func projectRow(ds *Dataset, kinds []Kind, r int) (string, error) {
	row := make(map[string]any, len(ds.Columns))
	for i, c := range ds.Columns {
		v := c.Values[r]
		if v == "" {
			row[c.Name] = nil
			continue
		}
		switch kinds[i] {
		case KindInt64:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return "", fmt.Errorf("column %s row %d: %w", c.Name, r, err)
			}
			row[c.Name] = n
		case KindDouble:
			f, ok := parseDouble(v)
			if !ok {
				return "", fmt.Errorf("column %s row %d: %q is not a decimal number", c.Name, r, v)
			}
			row[c.Name] = f
		case KindBoolean:
			b, _ := parseBool(v)
			row[c.Name] = b
		default:
			row[c.Name] = v
		}
	}
	b, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("row %d: %w", r, err)
	}
	return string(b), nil
}
