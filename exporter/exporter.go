// Package exporter writes store tables out as partitioned parquet files.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/parquet_accumulator"
	"github.com/danthegoodman1/tdastore/partitioner"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/danthegoodman1/tdastore/store"
	"github.com/danthegoodman1/tdastore/utils"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	MaxRows = 250000

	parquetContentType = "application/vnd.apache.parquet"
)

var ErrNoRows = errors.New("no rows to export")

type (
	Stats struct {
		NumRows      int64
		NumFiles     int64
		BytesWritten int64
		TimeMS       int64
		Files        []string
	}

	PartitionData struct {
		Accumulator parquet_accumulator.ParquetSchemaAccumulator
		Rows        []map[string]any
	}
)

// Export writes up to maxRows rows of d's table to ds, one parquet file per
// partition. Keys look like table=Quote/year=2024/<ksuid>.parquet.
func Export(ctx context.Context, s *store.Store, ds datastore.DataStore, d *schema.Descriptor, plans []partitioner.PartitionPlan, maxRows int) (*Stats, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if maxRows <= 0 || maxRows > MaxRows {
		maxRows = MaxRows
	}

	rows := s.Rows(ctx, d, sqlbuild.SelectLimit(d, maxRows))
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	parts := make(map[string]*PartitionData)
	for _, row := range rows {
		part, err := partitioner.GetRowPartition(row, plans)
		if err != nil {
			return nil, fmt.Errorf("error getting partition for row: %w", err)
		}
		if _, exists := parts[part]; !exists {
			parts[part] = &PartitionData{
				Accumulator: parquet_accumulator.FromDescriptor(d),
			}
		}
		p := parts[part]
		p.Rows = append(p.Rows, row)
	}

	stats := &Stats{}
	for partID, partData := range parts {
		parquetSchema, err := partData.Accumulator.GetSchemaString()
		if err != nil {
			return nil, fmt.Errorf("error in GetSchemaString: %w", err)
		}

		var b bytes.Buffer
		pw, err := writer.NewJSONWriterFromWriter(parquetSchema, &b, 4)
		if err != nil {
			return nil, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
		}
		for _, row := range partData.Rows {
			rowJSON, err := parquet_accumulator.EncodeRow(row)
			if err != nil {
				return nil, err
			}
			if err = pw.Write(rowJSON); err != nil {
				return nil, fmt.Errorf("error in pw.Write for row %s: %w", rowJSON, err)
			}
			stats.NumRows++
		}
		if err = pw.WriteStop(); err != nil {
			return nil, fmt.Errorf("error in pw.WriteStop: %w", err)
		}

		byteLen := b.Len()
		key := fileKey(d.Table, partID)
		if err = ds.WriteFile(ctx, key, bytes.NewReader(b.Bytes()), parquetContentType); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", key, err)
		}
		stats.BytesWritten += int64(byteLen)
		stats.NumFiles++
		stats.Files = append(stats.Files, key)
		logger.Debug().Str("key", key).Int("rows", len(partData.Rows)).Int("bytes", byteLen).Msg("exported partition")
	}

	stats.TimeMS = time.Since(start).Milliseconds()
	return stats, nil
}

func fileKey(table, partID string) string {
	fileName := fmt.Sprintf("%s.parquet", utils.GenKSortedID(""))
	if partID == "" {
		return fmt.Sprintf("table=%s/%s", table, fileName)
	}
	return fmt.Sprintf("table=%s/%s/%s", table, partID, fileName)
}
