// Package store runs record operations against an embedded SQLite file.
//
// Every operation opens its own connection and closes it before returning.
// Failures never escape as driver errors: writes report them in a Result,
// reads degrade to empty results, and both are logged.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/rs/zerolog"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

var (
	logger = gologger.NewLogger()

	ErrNotConfigured = errors.New("store path not configured")
	ErrNotFound      = errors.New("record not found")
	ErrInvalidRecord = errors.New("record could not be hydrated")
	ErrFieldCount    = errors.New("record pointers do not match descriptor fields")
)

const driverName = "sqlite"

type (
	Config struct {
		// Path of the store file. Required.
		Path string
		// BusyTimeout is how long a connection waits on a locked file.
		BusyTimeout time.Duration
	}

	Store struct {
		cfg Config
		dsn string
	}

	// Record is implemented by pointers to record types. Values and Pointers
	// follow the descriptor's field order; nullable fields are pointers.
	Record interface {
		Descriptor() *schema.Descriptor
		Values() []any
		Pointers() []any
	}

	// RecordPtr lets generic operations allocate a T and use it as a Record.
	RecordPtr[T any] interface {
		*T
		Record
	}

	// Row maps column names to values for one fetched row.
	Row map[string]any

	// Result is returned by every mutating operation.
	Result struct {
		Success  bool
		ErrorMsg string
	}
)

func New(cfg Config) *Store {
	s := &Store{cfg: cfg}
	if cfg.Path != "" {
		ms := cfg.BusyTimeout.Milliseconds()
		if ms <= 0 {
			ms = 5000
		}
		s.dsn = fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.Path, ms)
	}
	return s
}

func (s *Store) Path() string {
	return s.cfg.Path
}

// NewResult is a successful Result.
func NewResult() Result {
	return Result{Success: true}
}

func (r *Result) fail(err error) {
	r.Success = false
	r.ErrorMsg = err.Error()
}

// Err returns nil on success, otherwise an error carrying ErrorMsg.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.ErrorMsg)
}

// open returns a single-connection handle that the caller must Close.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	if s.dsn == "" {
		return nil, ErrNotConfigured
	}
	db, err := sql.Open(driverName, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("error in sql.Open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error in db.PingContext: %w", err)
	}
	return db, nil
}

func descriptorOf[T any, P RecordPtr[T]]() *schema.Descriptor {
	return P(new(T)).Descriptor()
}

func logFailure(ctx context.Context, err error, sqlText, msg string) {
	zerolog.Ctx(ctx).Error().CallerSkipFrame(1).Err(err).Str("sql", sqlText).Msg(msg)
}
