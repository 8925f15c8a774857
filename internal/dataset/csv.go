package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	DefaultEncoding  = "ISO-8859-1"
	DefaultDelimiter = ','
)

type ReadOptions struct {
	Delimiter rune
	Encoding  string // IANA name, e.g. ISO-8859-1, windows-1252, UTF-8
}

// LookupEncoding resolves an IANA charset name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc, nil
}

// ReadCSV loads a delimited text file with a header row.
//
// Blank header cells become "Unnamed: <i>" and repeated headers are suffixed
// ".1", ".2", ... so every column has a distinct name. Short rows are padded
// with nulls; rows longer than the header are an error.
func ReadCSV(r io.Reader, opt ReadOptions) (*Dataset, error) {
	enc, err := LookupEncoding(opt.Encoding)
	if err != nil {
		return nil, err
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = DefaultDelimiter
	}

	cr := csv.NewReader(enc.NewDecoder().Reader(r))
	cr.Comma = opt.Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	names := headerNames(header)
	ds := &Dataset{Columns: make([]*Column, len(names))}
	for i, n := range names {
		ds.Columns[i] = &Column{Name: n}
	}

	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++
		if len(rec) > len(names) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", line, len(rec), len(names))
		}
		for i, col := range ds.Columns {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			col.Values = append(col.Values, v)
		}
	}
	return ds, nil
}

func headerNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
