// Package backup ships store snapshots to a data store and brings them back.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/store"
	"github.com/danthegoodman1/tdastore/utils"
	"github.com/rs/zerolog"
)

const snapshotContentType = "application/vnd.sqlite3"

var ErrDestinationExists = errors.New("restore destination already exists")

// Backup snapshots s into a temporary file and uploads it under a k-sorted
// key. It returns the key.
func Backup(ctx context.Context, s *store.Store, ds datastore.DataStore) (string, error) {
	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("snapshot-%s.db", utils.GenRandomShortID()))
	defer os.Remove(tmp)

	if res := s.Snapshot(ctx, tmp); !res.Success {
		return "", fmt.Errorf("error in Snapshot: %w", res.Err())
	}

	f, err := os.Open(tmp)
	if err != nil {
		return "", fmt.Errorf("error in os.Open: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("snapshots/%s.db", utils.GenKSortedID(""))
	if err = ds.WriteFile(ctx, key, f, snapshotContentType); err != nil {
		return "", fmt.Errorf("error in WriteFile: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("key", key).Msg("uploaded snapshot")
	return key, nil
}

// Restore downloads the snapshot at key to path. path must not exist.
func Restore(ctx context.Context, ds datastore.DataStore, key, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrDestinationExists)
	}

	b, err := ds.ReadFile(ctx, key)
	if err != nil {
		return fmt.Errorf("error in ReadFile: %w", err)
	}

	tmp := path + ".restoring"
	if err = os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("error in os.WriteFile: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error in os.Rename: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("key", key).Str("path", path).Msg("restored snapshot")
	return nil
}
