package http_server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danthegoodman1/tdastore/backup"
	"github.com/danthegoodman1/tdastore/exporter"
	"github.com/danthegoodman1/tdastore/partitioner"
)

type (
	ExportReqBody struct {
		Partitioner []partitioner.PartitionPlan `validate:"dive"`
		// Defaults to exporter.MaxRows
		MaxRows int `validate:"gte=0,lte=250000"`
	}

	BackupResponse struct {
		Key string
	}
)

func (s *HTTPServer) ExportHandler(c *CustomContext) error {
	if s.DataStore == nil {
		return c.String(http.StatusServiceUnavailable, "no data store configured")
	}
	d, err := s.descriptor(c)
	if err != nil {
		return err
	}

	var reqBody ExportReqBody
	if err = ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	for _, plan := range reqBody.Partitioner {
		if _, ok := partitioner.Functions[plan.Func]; !ok {
			return c.String(http.StatusBadRequest, "unknown partition function "+plan.Func)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	stats, err := exporter.Export(ctx, s.Store, s.DataStore, d, reqBody.Partitioner, reqBody.MaxRows)
	if errors.Is(err, exporter.ErrNoRows) {
		return c.String(http.StatusBadRequest, "no rows found")
	}
	if err != nil {
		return c.InternalError(err, "error exporting table")
	}

	return c.JSON(http.StatusAccepted, stats)
}

func (s *HTTPServer) BackupHandler(c *CustomContext) error {
	if s.DataStore == nil {
		return c.String(http.StatusServiceUnavailable, "no data store configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	key, err := backup.Backup(ctx, s.Store, s.DataStore)
	if err != nil {
		return c.InternalError(err, "error backing up store")
	}
	return c.JSON(http.StatusAccepted, BackupResponse{Key: key})
}
