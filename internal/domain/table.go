package domain

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrEmptyTable is returned when a station file has no header or no data rows.
var ErrEmptyTable = errors.New("no data rows")

// ColumnKind is the inferred storage type of a column.
type ColumnKind int

const (
	KindString ColumnKind = iota
	KindInt64
	KindFloat64
)

func (k ColumnKind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	default:
		return "string"
	}
}

// StationTable is a parsed station file: the preamble as metadata, the header,
// and the raw string cells of every data row. Empty cells mean null.
type StationTable struct {
	Metadata map[string]string
	Header   []string
	Rows     [][]string
}

// NumRows returns the number of data rows.
func (t StationTable) NumRows() int { return len(t.Rows) }

// Column returns the cells of column i across all rows.
func (t StationTable) Column(i int) []string {
	col := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		col[r] = row[i]
	}
	return col
}

// ParseStationCSV decodes an ISO-8859-1 station file, consumes the fixed
// preamble into metadata and reads the remaining lines as ';'-separated rows.
func ParseStationCSV(r io.Reader) (StationTable, error) {
	br := bufio.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))

	metadata, err := readPreamble(br, PreambleLines)
	if err != nil {
		return StationTable{}, err
	}

	cr := csv.NewReader(br)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return StationTable{}, fmt.Errorf("missing header: %w", ErrEmptyTable)
	}
	if err != nil {
		return StationTable{}, fmt.Errorf("read header: %w", err)
	}
	header = normalizeHeader(header)

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return StationTable{}, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return StationTable{}, fmt.Errorf("line %d: %d fields, header has %d", line, len(rec), len(header))
		}
		row := make([]string, len(header))
		for i, cell := range rec {
			row[i] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return StationTable{}, ErrEmptyTable
	}

	return dropEmptyUnnamed(StationTable{Metadata: metadata, Header: header, Rows: rows}), nil
}

// readPreamble consumes n lines of "KEY:;VALUE" pairs.
func readPreamble(br *bufio.Reader, n int) (map[string]string, error) {
	metadata := make(map[string]string, n)
	for i := 0; i < n; i++ {
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read preamble: %w", err)
			}
			if line == "" {
				return nil, fmt.Errorf("preamble ended after %d of %d lines: %w", i, n, ErrEmptyTable)
			}
		}
		key, value, _ := strings.Cut(strings.TrimRight(line, "\r\n"), string(Delimiter))
		key = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":"))
		if key == "" {
			continue
		}
		metadata[key] = strings.TrimSpace(strings.TrimRight(value, string(Delimiter)))
	}
	return metadata, nil
}

// normalizeHeader names blank columns positionally and disambiguates repeats.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_duplicated_%d", name, n)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// dropEmptyUnnamed removes positional columns that hold no values at all,
// which is what a trailing ';' on every line produces.
func dropEmptyUnnamed(t StationTable) StationTable {
	keep := make([]int, 0, len(t.Header))
	for i, name := range t.Header {
		if strings.HasPrefix(name, "column_") && allEmpty(t.Column(i)) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(t.Header) {
		return t
	}

	header := make([]string, len(keep))
	for j, i := range keep {
		header[j] = t.Header[i]
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, i := range keep {
			out[j] = row[i]
		}
		rows[r] = out
	}
	return StationTable{Metadata: t.Metadata, Header: header, Rows: rows}
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// InferColumnKinds picks the narrowest kind every non-empty cell of a column
// parses as. Columns with no values, or with decimal commas, stay strings.
func InferColumnKinds(t StationTable) []ColumnKind {
	kinds := make([]ColumnKind, len(t.Header))
	for i := range t.Header {
		kinds[i] = inferKind(t.Column(i))
	}
	return kinds
}

func inferKind(cells []string) ColumnKind {
	isInt, isFloat, seen := true, true, false
	for _, c := range cells {
		if c == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(c, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat && !isPlainFloat(c) {
			isFloat = false
		}
		if !isInt && !isFloat {
			return KindString
		}
	}
	switch {
	case !seen:
		return KindString
	case isInt:
		return KindInt64
	case isFloat:
		return KindFloat64
	default:
		return KindString
	}
}

// isPlainFloat accepts decimal notation only, rejecting "NaN", "Inf" and hex.
func isPlainFloat(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}
