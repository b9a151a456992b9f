package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/utils"
)

var (
	logger = gologger.NewLogger()

	ErrUnknownDataStore = errors.New("unknown data store")
	ErrNotExist         = utils.PermError("file does not exist")
)

type (
	// DataStore is a sink for exported files and snapshots, addressed by key.
	DataStore interface {
		// WriteFile stores everything in r under key. r is rewound on retry.
		WriteFile(ctx context.Context, key string, r io.ReadSeeker, contentType string) error
		// ReadFile returns the whole file at key, or ErrNotExist.
		ReadFile(ctx context.Context, key string) ([]byte, error)

		Shutdown(ctx context.Context) error
	}
)

// FromEnv builds the data store named by DATASTORE. An empty name returns a
// nil store and no error.
func FromEnv() (DataStore, error) {
	switch utils.DATASTORE {
	case "":
		return nil, nil
	case "disk":
		return NewDiskDataStore(utils.DATASTORE_PATH)
	case "s3":
		return NewS3DataStore(S3Config{
			Bucket:   utils.S3_BUCKET_NAME,
			Region:   utils.AWS_DEFAULT_REGION,
			Endpoint: utils.S3_ENDPOINT,
		})
	default:
		return nil, fmt.Errorf("%s: %w", utils.DATASTORE, ErrUnknownDataStore)
	}
}
