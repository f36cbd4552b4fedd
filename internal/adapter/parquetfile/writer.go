package parquetfile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
)

// Writer materializes station tables as Parquet files.
// It implements pipeline.TableWriter.
type Writer struct {
	mem    memory.Allocator
	logger *slog.Logger
}

// NewWriter creates a Parquet writer using the default Go allocator.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{mem: memory.DefaultAllocator, logger: logger}
}

// WriteTable writes the table to path. The file is written under a temporary
// name and renamed into place, so path only appears once complete.
func (w *Writer) WriteTable(path string, table domain.StationTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op once renamed

	if err := w.encode(unclosable{tmp}, table); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	w.logger.Debug("parquet written", "path", path, "rows", table.NumRows(), "columns", len(table.Header))
	return nil
}

// unclosable hides the file's Close from pqarrow, whose FileWriter closes any
// io.Closer sink. WriteTable keeps ownership of the handle.
type unclosable struct{ io.Writer }

func (w *Writer) encode(sink io.Writer, table domain.StationTable) error {
	kinds := domain.InferColumnKinds(table)
	schema := Schema(table, kinds)

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, sink, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}

	rb := array.NewRecordBuilder(w.mem, schema)
	defer rb.Release()

	for i := range table.Header {
		if err := appendColumn(rb.Field(i), kinds[i], table.Column(i)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("column %q: %w", table.Header[i], err)
		}
	}

	rec := rb.NewRecord()
	defer rec.Release()

	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// Schema builds the Arrow schema for a table, carrying the station preamble
// as schema metadata with keys in sorted order.
func Schema(table domain.StationTable, kinds []domain.ColumnKind) *arrow.Schema {
	fields := make([]arrow.Field, len(table.Header))
	for i, name := range table.Header {
		fields[i] = arrow.Field{Name: name, Type: arrowType(kinds[i]), Nullable: true}
	}

	keys := make([]string, 0, len(table.Metadata))
	for k := range table.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = table.Metadata[k]
	}
	md := arrow.NewMetadata(keys, values)

	return arrow.NewSchema(fields, &md)
}

func arrowType(kind domain.ColumnKind) arrow.DataType {
	switch kind {
	case domain.KindInt64:
		return arrow.PrimitiveTypes.Int64
	case domain.KindFloat64:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

func appendColumn(b array.Builder, kind domain.ColumnKind, cells []string) error {
	switch kind {
	case domain.KindInt64:
		ib := b.(*array.Int64Builder)
		for _, c := range cells {
			if c == "" {
				ib.AppendNull()
				continue
			}
			v, err := strconv.ParseInt(c, 10, 64)
			if err != nil {
				return err
			}
			ib.Append(v)
		}
	case domain.KindFloat64:
		fb := b.(*array.Float64Builder)
		for _, c := range cells {
			if c == "" {
				fb.AppendNull()
				continue
			}
			v, err := strconv.ParseFloat(c, 64)
			if err != nil {
				return err
			}
			fb.Append(v)
		}
	default:
		sb := b.(*array.StringBuilder)
		for _, c := range cells {
			if c == "" {
				sb.AppendNull()
				continue
			}
			sb.Append(c)
		}
	}
	return nil
}
