package backup

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/records"
	"github.com/danthegoodman1/tdastore/store"
)

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s := store.New(store.Config{Path: filepath.Join(dir, "tda.db")})
	if res := records.CreateTables(ctx, s); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if !store.Insert(ctx, s, &records.Quote{Symbol: "MSFT", Price: 312.5}) {
		t.Fatal("insert failed")
	}

	ds, err := datastore.NewDiskDataStore(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatal(err)
	}

	key, err := Backup(ctx, s, ds)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(key, "snapshots/") {
		t.Fatal("bad key", key)
	}

	restored := filepath.Join(dir, "restored.db")
	if err = Restore(ctx, ds, key, restored); err != nil {
		t.Fatal(err)
	}
	quotes := store.GetAll[records.Quote](ctx, store.New(store.Config{Path: restored}))
	if len(quotes) != 1 || quotes[0].Symbol != "MSFT" {
		t.Fatalf("bad restored rows %+v", quotes)
	}

	if err = Restore(ctx, ds, key, restored); !errors.Is(err, ErrDestinationExists) {
		t.Fatal("expected ErrDestinationExists")
	}
	if err = Restore(ctx, ds, "snapshots/missing.db", filepath.Join(dir, "other.db")); !errors.Is(err, datastore.ErrNotExist) {
		t.Fatal("expected ErrNotExist, got", err)
	}
}
