package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/tdastore/store"
	"github.com/rs/zerolog"
)

const firstZorroTradeID = 1000

// CreateTables creates every broker table that does not exist yet, stopping
// at the first failure.
func CreateTables(ctx context.Context, s *store.Store) store.Result {
	res := store.NewResult()
	for _, d := range Tables.All() {
		if res = s.CreateTable(ctx, d, false); !res.Success {
			zerolog.Ctx(ctx).Error().Str("table", d.Table).Str("err", res.ErrorMsg).Msg("error creating table")
			return res
		}
	}
	return res
}

// NextZorroTradeID hands out the next Zorro trade id. The first call seeds
// the counter and returns 1000.
func NextZorroTradeID(ctx context.Context, s *store.Store) (int32, error) {
	counter, err := store.GetOrdinal[TradeID](ctx, s, 1, "")
	if errors.Is(err, store.ErrNotFound) {
		if !store.Insert(ctx, s, &TradeID{NextZorroID: firstZorroTradeID + 1}) {
			return 0, fmt.Errorf("error seeding trade id counter")
		}
		return firstZorroTradeID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("error in GetOrdinal: %w", err)
	}

	id := counter.NextZorroID
	counter.NextZorroID++
	if res := store.Update(ctx, s, counter); !res.Success {
		return 0, fmt.Errorf("error in Update: %w", res.Err())
	}
	return id, nil
}

// SaveTrade assigns t the next Zorro id and inserts it unless a trade with
// that id is already stored. It returns the assigned id.
func SaveTrade(ctx context.Context, s *store.Store, t *Trade) (int32, error) {
	id, err := NextZorroTradeID(ctx, s)
	if err != nil {
		return 0, err
	}
	t.ZorroTradeID = id
	if t.Entered.IsZero() {
		t.Entered = time.Now().UTC()
	}

	_, err = TradeByZorroID(ctx, s, id)
	if err == nil {
		return id, nil
	}
	if !store.Insert(ctx, s, t) {
		return 0, fmt.Errorf("error inserting trade %d", id)
	}
	return id, nil
}

// TradeByZorroID returns store.ErrNotFound unless exactly one trade matches.
func TradeByZorroID(ctx context.Context, s *store.Store, zorroID int32) (*Trade, error) {
	trades := store.GetWhere[Trade](ctx, s, "ZorroTradeId = ?", zorroID)
	if len(trades) != 1 {
		return nil, store.ErrNotFound
	}
	return &trades[0], nil
}

// PurgeTrades deletes every trade keep rejects.
func PurgeTrades(ctx context.Context, s *store.Store, keep func(Trade) bool) store.Result {
	var ids []int64
	for _, t := range store.GetAll[Trade](ctx, s) {
		if !keep(t) {
			ids = append(ids, int64(t.ID))
		}
	}
	if len(ids) > 0 {
		logger.Debug().Int("trades", len(ids)).Msg("purging trades")
	}
	return store.DeleteByIDs[Trade](ctx, s, ids)
}

// Log writes msg through the context logger and persists it as a LogEntry.
func Log(ctx context.Context, s *store.Store, level LogLevel, msg string) bool {
	zerolog.Ctx(ctx).WithLevel(level.ZerologLevel()).CallerSkipFrame(1).Str("level_name", level.String()).Msg(msg)
	return store.Insert(ctx, s, &LogEntry{Level: level, Message: msg, Entered: time.Now().UTC()})
}
