// Package records holds the broker's persisted record types.
package records

import (
	"time"

	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/schema"
)

var (
	logger = gologger.NewLogger()

	// Tables holds every record descriptor in creation order.
	Tables = schema.NewRegistry()
)

// Trade is one order placed through the broker.
type Trade struct {
	ID           int32
	Asset        string
	AssetType    string
	OrderType    string
	Instruction  string
	TDTradeID    int64
	ZorroTradeID int32
	Quantity     int32
	Price        float64
	Open         float64
	Close        float64
	Cost         float64
	Profit       float64
	Filled       int32
	Status       string
	StatusCode   int32
	OrderJSON    string
	Entered      time.Time
}

var tradeDesc = Tables.Register(schema.NewBuilder("Trade").
	AutoIncrementKey("Id", schema.NotNull).
	Text("Asset", schema.NotNull).
	Text("AssetType", schema.NotNull).
	Text("OrderType", schema.NotNull).
	Text("Instruction", schema.NotNull).
	Int64("TDTradeId", schema.NotNull).
	Int32("ZorroTradeId", schema.NotNull).
	Int32("Quantity", schema.NotNull).
	Double("Price").
	Double("Open").
	Double("Close").
	Double("Cost").
	Double("Profit").
	Int32("Filled").
	Text("Status").
	Int32("StatusCode").
	Text("OrderJson", schema.NotNull).
	DateTime("Entered", schema.NotNull).
	MustBuild())

func (t *Trade) Descriptor() *schema.Descriptor { return tradeDesc }

func (t *Trade) Values() []any {
	return []any{
		t.ID, t.Asset, t.AssetType, t.OrderType, t.Instruction, t.TDTradeID, t.ZorroTradeID,
		t.Quantity, t.Price, t.Open, t.Close, t.Cost, t.Profit, t.Filled, t.Status, t.StatusCode,
		t.OrderJSON, t.Entered,
	}
}

func (t *Trade) Pointers() []any {
	return []any{
		&t.ID, &t.Asset, &t.AssetType, &t.OrderType, &t.Instruction, &t.TDTradeID, &t.ZorroTradeID,
		&t.Quantity, &t.Price, &t.Open, &t.Close, &t.Cost, &t.Profit, &t.Filled, &t.Status, &t.StatusCode,
		&t.OrderJSON, &t.Entered,
	}
}

// TradeXref links a primary broker order to a secondary one, such as a stop.
type TradeXref struct {
	ID             int32
	PrimaryTDAID   int64
	SecondaryTDAID int64
	DateEntered    time.Time
}

var tradeXrefDesc = Tables.Register(schema.NewBuilder("TradeXref").
	AutoIncrementKey("Id", schema.NotNull).
	Int64("PrimaryTDAId", schema.NotNull).
	Int64("SecondaryTDAId", schema.NotNull).
	DateTime("DateEntered", schema.NotNull).
	MustBuild())

func NewTradeXref(primary, secondary int64) TradeXref {
	return TradeXref{PrimaryTDAID: primary, SecondaryTDAID: secondary, DateEntered: time.Now().UTC()}
}

func (x *TradeXref) Descriptor() *schema.Descriptor { return tradeXrefDesc }
func (x *TradeXref) Values() []any {
	return []any{x.ID, x.PrimaryTDAID, x.SecondaryTDAID, x.DateEntered}
}
func (x *TradeXref) Pointers() []any {
	return []any{&x.ID, &x.PrimaryTDAID, &x.SecondaryTDAID, &x.DateEntered}
}

// TradeID is the single-row counter of Zorro trade ids.
type TradeID struct {
	ID          int32
	NextZorroID int32
}

var tradeIDDesc = Tables.Register(schema.NewBuilder("TradeId").
	AutoIncrementKey("Id", schema.NotNull).
	Int32("NextZorroId", schema.NotNull).
	MustBuild())

func (c *TradeID) Descriptor() *schema.Descriptor { return tradeIDDesc }
func (c *TradeID) Values() []any                  { return []any{c.ID, c.NextZorroID} }
func (c *TradeID) Pointers() []any                { return []any{&c.ID, &c.NextZorroID} }

type Quote struct {
	ID     int32
	Symbol string
	Price  float64
	AsOf   time.Time
}

var quoteDesc = Tables.Register(schema.NewBuilder("Quote").
	AutoIncrementKey("Id").
	Text("Symbol", schema.NotNull).
	Double("Price").
	DateTime("AsOf").
	MustBuild())

func (q *Quote) Descriptor() *schema.Descriptor { return quoteDesc }
func (q *Quote) Values() []any                  { return []any{q.ID, q.Symbol, q.Price, q.AsOf} }
func (q *Quote) Pointers() []any                { return []any{&q.ID, &q.Symbol, &q.Price, &q.AsOf} }

// LogEntry is a persisted log line.
type LogEntry struct {
	ID      int32
	Level   LogLevel
	Message string
	Entered time.Time
}

var logEntryDesc = Tables.Register(schema.NewBuilder("LogEntry").
	AutoIncrementKey("Id").
	Infer("Level", Info, schema.NotNull).
	Infer("Message", "", schema.NotNull).
	Infer("Entered", time.Time{}, schema.NotNull).
	MustBuild())

func (e *LogEntry) Descriptor() *schema.Descriptor { return logEntryDesc }
func (e *LogEntry) Values() []any                  { return []any{e.ID, e.Level, e.Message, e.Entered} }
func (e *LogEntry) Pointers() []any                { return []any{&e.ID, &e.Level, &e.Message, &e.Entered} }
