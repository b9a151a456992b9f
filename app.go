package main

import (
	"context"
	"fmt"
	"time"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/records"
	"github.com/danthegoodman1/tdastore/store"
	"github.com/danthegoodman1/tdastore/utils"
)

type (
	TDAStore struct {
		Store *store.Store
		// nil when DATASTORE is unset
		DataStore datastore.DataStore
	}
)

// NewTDAStore opens the store named by STORE_PATH, creates any missing broker
// tables and builds the configured data store.
func NewTDAStore(ctx context.Context) (*TDAStore, error) {
	if utils.STORE_PATH == "" {
		return nil, fmt.Errorf("STORE_PATH: %w", store.ErrNotConfigured)
	}
	s := store.New(store.Config{
		Path:        utils.STORE_PATH,
		BusyTimeout: time.Duration(utils.STORE_BUSY_TIMEOUT_MS) * time.Millisecond,
	})

	if res := records.CreateTables(ctx, s); !res.Success {
		return nil, fmt.Errorf("error in CreateTables: %w", res.Err())
	}

	ds, err := datastore.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("error in datastore.FromEnv: %w", err)
	}

	return &TDAStore{
		Store:     s,
		DataStore: ds,
	}, nil
}

func (t *TDAStore) Shutdown(ctx context.Context) error {
	if t.DataStore == nil {
		return nil
	}
	return t.DataStore.Shutdown(ctx)
}
