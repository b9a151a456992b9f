package exporter

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/parquet_accumulator"
	"github.com/danthegoodman1/tdastore/partitioner"
	"github.com/danthegoodman1/tdastore/records"
	"github.com/danthegoodman1/tdastore/store"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func TestExport(t *testing.T) {
	partitioner.RegisterFunctions()
	ctx := context.Background()
	dir := t.TempDir()

	s := store.New(store.Config{Path: filepath.Join(dir, "tda.db")})
	if res := records.CreateTables(ctx, s); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	ds, err := datastore.NewDiskDataStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}

	quote := &records.Quote{}
	d := quote.Descriptor()
	plans := []partitioner.PartitionPlan{{Func: "toYearMonth", Args: []string{"AsOf"}, As: "month"}}

	if _, err = Export(ctx, s, ds, d, plans, 0); !errors.Is(err, ErrNoRows) {
		t.Fatal("expected ErrNoRows")
	}

	store.InsertAll[records.Quote](ctx, s, []records.Quote{
		{Symbol: "MSFT", Price: 312.5, AsOf: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)},
		{Symbol: "AAPL", Price: 181, AsOf: time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)},
		{Symbol: "MSFT", Price: 400, AsOf: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)},
	})

	stats, err := Export(ctx, s, ds, d, plans, 0)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumRows != 3 || stats.NumFiles != 2 || len(stats.Files) != 2 {
		t.Fatalf("bad stats %+v", stats)
	}

	acc := parquet_accumulator.FromDescriptor(d)
	schemaString, err := acc.GetSchemaString()
	if err != nil {
		t.Fatal(err)
	}

	var total int64
	for _, key := range stats.Files {
		if !strings.HasPrefix(key, "table=Quote/month=2024-0") {
			t.Fatal("bad key", key)
		}
		fr, err := local.NewLocalFileReader(filepath.Join(dir, "data", filepath.FromSlash(key)))
		if err != nil {
			t.Fatal(err)
		}
		pr, err := reader.NewParquetReader(fr, schemaString, 4)
		if err != nil {
			t.Fatal(err)
		}
		total += pr.GetNumRows()
		pr.ReadStop()
		fr.Close()
	}
	if total != 3 {
		t.Fatal("expected 3 rows across files, got", total)
	}

	// row cap
	stats, err = Export(ctx, s, ds, d, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	if stats.NumRows != 1 || stats.NumFiles != 1 {
		t.Fatalf("bad capped stats %+v", stats)
	}
}
