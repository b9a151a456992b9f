package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/sqlbuild"
)

type quote struct {
	ID     int32
	Symbol string
	Price  float64
	AsOf   time.Time
}

var quoteDesc = schema.NewBuilder("Quote").
	AutoIncrementKey("Id").
	Text("Symbol", schema.NotNull).
	Double("Price").
	DateTime("AsOf").
	MustBuild()

func (q *quote) Descriptor() *schema.Descriptor { return quoteDesc }
func (q *quote) Values() []any                  { return []any{q.ID, q.Symbol, q.Price, q.AsOf} }
func (q *quote) Pointers() []any                { return []any{&q.ID, &q.Symbol, &q.Price, &q.AsOf} }

var severity = schema.NewEnum("StoreTestSeverity", map[string]int{"Low": 1, "High": 2})

type event struct {
	ID       int32
	Severity int
	Open     bool
	Closed   *time.Time
}

var eventDesc = schema.NewBuilder("Event").
	AutoIncrementKey("Id").
	Enum("Severity", severity, schema.NotNull).
	Bool("Open").
	DateTime("Closed", schema.Nullable).
	MustBuild()

func (e *event) Descriptor() *schema.Descriptor { return eventDesc }
func (e *event) Values() []any                  { return []any{e.ID, e.Severity, e.Open, e.Closed} }
func (e *event) Pointers() []any                { return []any{&e.ID, &e.Severity, &e.Open, &e.Closed} }

type alert struct {
	ID    int32
	Level *int
}

var alertDesc = schema.NewBuilder("Alert").
	AutoIncrementKey("Id").
	Enum("Level", severity, schema.Nullable).
	MustBuild()

func (a *alert) Descriptor() *schema.Descriptor { return alertDesc }
func (a *alert) Values() []any                  { return []any{a.ID, a.Level} }
func (a *alert) Pointers() []any                { return []any{&a.ID, &a.Level} }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(Config{Path: filepath.Join(t.TempDir(), "test.db"), BusyTimeout: time.Second})
	ctx := context.Background()
	if res := CreateTable[quote](ctx, s, false); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if res := CreateTable[event](ctx, s, false); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	return s
}

func TestQuoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	asOf := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	q := quote{Symbol: "MSFT", Price: 312.5, AsOf: asOf}
	if !Insert(ctx, s, &q) {
		t.Fatal("insert failed")
	}
	if q.ID != 1 {
		t.Fatalf("expected id 1, got %d", q.ID)
	}

	got, err := GetByID[quote](ctx, s, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 1 || got.Symbol != "MSFT" || got.Price != 312.5 || !got.AsOf.Equal(asOf) {
		t.Fatalf("bad round trip %+v", got)
	}

	if _, err = GetByID[quote](ctx, s, 99); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound")
	}
}

func TestCreateTableIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	Insert(ctx, s, &quote{Symbol: "A", Price: 1})

	if res := CreateTable[quote](ctx, s, false); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if n, ok := s.Count(ctx, quoteDesc); !ok || n != 1 {
		t.Fatalf("expected 1 row to survive, got %d", n)
	}

	if res := CreateTable[quote](ctx, s, true); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if n, ok := s.Count(ctx, quoteDesc); !ok || n != 0 {
		t.Fatalf("expected empty table after overwrite, got %d", n)
	}
	if !s.TableExists(ctx, "Quote") {
		t.Fatal("table missing after overwrite")
	}
}

func TestInsertAllAtomic(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	trigger := "CREATE TRIGGER reject_bad BEFORE INSERT ON Quote WHEN NEW.Symbol = 'BAD' BEGIN SELECT RAISE(ABORT, 'bad symbol'); END"
	if !s.Execute(ctx, trigger) {
		t.Fatal("trigger not created")
	}

	batch := []quote{{Symbol: "A", Price: 1}, {Symbol: "BAD", Price: 2}, {Symbol: "C", Price: 3}}
	if InsertAll[quote](ctx, s, batch) {
		t.Fatal("expected batch to fail")
	}
	if got := GetAll[quote](ctx, s); len(got) != 0 {
		t.Fatalf("expected no rows after failed batch, got %d", len(got))
	}

	batch = []quote{{Symbol: "A", Price: 1}, {Symbol: "B", Price: 2}}
	if !InsertAll[quote](ctx, s, batch) {
		t.Fatal("expected batch to succeed")
	}
	if batch[0].ID == 0 || batch[1].ID != batch[0].ID+1 {
		t.Fatalf("ids not assigned %+v", batch)
	}
	if got := GetAll[quote](ctx, s); len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
}

func TestOrdinalAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	InsertAll[quote](ctx, s, []quote{{Symbol: "A", Price: 10}, {Symbol: "B", Price: 30}, {Symbol: "C", Price: 20}})

	q, err := GetOrdinal[quote](ctx, s, 2, "Price")
	if err != nil || q.Symbol != "C" {
		t.Fatalf("expected C, got %+v %v", q, err)
	}
	q, err = GetOrdinal[quote](ctx, s, 1, "")
	if err != nil || q.Symbol != "A" {
		t.Fatalf("expected A, got %+v %v", q, err)
	}
	if _, err = GetOrdinal[quote](ctx, s, 0, "Price"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound for ordinal 0")
	}
	if _, err = GetOrdinal[quote](ctx, s, -1, "Price"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound for ordinal -1")
	}
	if _, err = GetOrdinal[quote](ctx, s, 4, "Price"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound past the end")
	}
	if _, err = GetOrdinal[quote](ctx, s, 1, "Nope"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound for unknown column")
	}

	q, err = GetMostRecent[quote](ctx, s)
	if err != nil || q.Symbol != "C" {
		t.Fatalf("expected C, got %+v %v", q, err)
	}
}

func TestUpdateAndDeletes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	batch := []quote{{Symbol: "A", Price: 1}, {Symbol: "B", Price: 2}, {Symbol: "C", Price: 3}}
	InsertAll[quote](ctx, s, batch)

	batch[0].Price = 5
	if res := Update(ctx, s, &batch[0]); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	got := GetWhere[quote](ctx, s, "Symbol = ?", "A")
	if len(got) != 1 || got[0].Price != 5 {
		t.Fatalf("update not applied %+v", got)
	}

	if res := DeleteByIDs[quote](ctx, s, nil); !res.Success {
		t.Fatal("empty id list should be a no-op")
	}
	if got := GetByIDs[quote](ctx, s, nil); len(got) != 0 {
		t.Fatal("expected no records for empty id list")
	}
	if got := GetByIDs[quote](ctx, s, []int64{1, 2}); len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	if res := DeleteByIDs[quote](ctx, s, []int64{1, 2}); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if res := DeleteWhere[quote](ctx, s, "Symbol = ?", "C"); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if n, _ := s.Count(ctx, quoteDesc); n != 0 {
		t.Fatalf("expected empty table, got %d", n)
	}

	Insert(ctx, s, &quote{Symbol: "D"})
	DeleteAll[quote](ctx, s)
	if res := ResetAutoIncrement[quote](ctx, s); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	q := quote{Symbol: "E"}
	Insert(ctx, s, &q)
	if q.ID != 1 {
		t.Fatalf("expected sequence restart at 1, got %d", q.ID)
	}
}

func TestEnumBoolNullable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	closed := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	Insert(ctx, s, &event{Severity: 2, Open: true})
	Insert(ctx, s, &event{Severity: 1, Open: false, Closed: &closed})

	got := GetAll[event](ctx, s)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Severity != 2 || !got[0].Open || got[0].Closed != nil {
		t.Fatalf("bad first event %+v", got[0])
	}
	if got[1].Severity != 1 || got[1].Open || got[1].Closed == nil || !got[1].Closed.Equal(closed) {
		t.Fatalf("bad second event %+v", got[1])
	}

	// enums are stored by name
	if v, ok := s.Scalar(ctx, "SELECT Severity FROM Event WHERE Id = 1"); !ok || v != "High" {
		t.Fatalf("expected High, got %v", v)
	}

	rows := s.Rows(ctx, eventDesc, sqlbuild.SelectAll(eventDesc))
	if len(rows) != 2 || rows[0]["Severity"] != "High" {
		t.Fatalf("bad rows %+v", rows)
	}
}

func TestInvalidRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	Insert(ctx, s, &quote{Symbol: "A", Price: 1})
	if !s.Execute(ctx, "INSERT INTO Quote (Symbol, Price, AsOf) VALUES (?, ?, ?)", "B", "not a number", "0") {
		t.Fatal("raw insert failed")
	}

	if _, err := GetByID[quote](ctx, s, 2); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if got := GetAll[quote](ctx, s); len(got) != 1 || got[0].Symbol != "A" {
		t.Fatalf("expected only the valid record, got %+v", got)
	}
}

func TestNotConfigured(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	if res := CreateTable[quote](ctx, s, false); res.Success || res.Err() == nil {
		t.Fatal("expected failure")
	}
	if Insert(ctx, s, &quote{Symbol: "A"}) {
		t.Fatal("expected insert failure")
	}
	if got := GetAll[quote](ctx, s); len(got) != 0 {
		t.Fatal("expected empty result")
	}
	if _, err := GetMostRecent[quote](ctx, s); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected ErrNotFound")
	}
}

func TestSnapshotAndSize(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	InsertAll[quote](ctx, s, []quote{{Symbol: "A"}, {Symbol: "B"}})

	size, err := s.Size(ctx)
	if err != nil || size <= 0 {
		t.Fatalf("bad size %d %v", size, err)
	}

	path := filepath.Join(t.TempDir(), "snap.db")
	if res := s.Snapshot(ctx, path); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	snap := New(Config{Path: path})
	if got := GetAll[quote](ctx, snap); len(got) != 2 {
		t.Fatalf("expected 2 rows in snapshot, got %d", len(got))
	}
	if !snap.HasRows(ctx, "SELECT 1 FROM Quote WHERE Symbol = ?", "B") {
		t.Fatal("expected row B in snapshot")
	}
}

func TestNullableEnumRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if res := CreateTable[alert](ctx, s, false); !res.Success {
		t.Fatal(res.ErrorMsg)
	}
	if !s.Execute(ctx, "INSERT INTO Alert (Level) VALUES (NULL)") {
		t.Fatal("insert failed")
	}
	if !s.Execute(ctx, "INSERT INTO Alert (Level) VALUES (?)", "High") {
		t.Fatal("insert failed")
	}

	got := GetAll[alert](ctx, s)
	if len(got) != 2 || got[0].Level != nil || got[1].Level == nil || *got[1].Level != 2 {
		t.Fatalf("bad alerts %+v", got)
	}

	rows := s.Rows(ctx, alertDesc, sqlbuild.SelectAll(alertDesc))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if v, ok := rows[0]["Level"]; !ok || v != nil {
		t.Fatalf("expected nil level, got %+v", rows[0])
	}
	if rows[1]["Level"] != "High" {
		t.Fatalf("expected High, got %+v", rows[1])
	}
}
