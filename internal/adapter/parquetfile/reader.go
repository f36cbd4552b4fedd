package parquetfile

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// Summary describes a materialized artifact.
type Summary struct {
	Path     string
	Rows     int64
	Columns  []string
	Types    []string
	Metadata map[string]string
}

// Inspect reads a Parquet artifact back and summarizes its shape.
func Inspect(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	mem := memory.DefaultAllocator
	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return Summary{}, fmt.Errorf("read %s: %w", path, err)
	}
	defer tbl.Release()

	return summarize(path, tbl), nil
}

func summarize(path string, tbl arrow.Table) Summary {
	schema := tbl.Schema()
	s := Summary{
		Path:     path,
		Rows:     tbl.NumRows(),
		Columns:  make([]string, schema.NumFields()),
		Types:    make([]string, schema.NumFields()),
		Metadata: make(map[string]string),
	}
	for i, f := range schema.Fields() {
		s.Columns[i] = f.Name
		s.Types[i] = f.Type.String()
	}
	md := schema.Metadata()
	for i, k := range md.Keys() {
		// pqarrow stores the serialized Arrow schema under this key.
		if k == "ARROW:schema" {
			continue
		}
		s.Metadata[k] = md.Values()[i]
	}
	return s
}
