package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/http_server"
	"github.com/danthegoodman1/tdastore/partitioner"
	"github.com/danthegoodman1/tdastore/records"
	"github.com/danthegoodman1/tdastore/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting tdastore")
	ctx := logger.WithContext(context.Background())

	partitioner.RegisterFunctions()

	tda, err := NewTDAStore(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error opening store")
		os.Exit(1)
	}
	records.Log(ctx, tda.Store, records.Info, "store opened at "+tda.Store.Path())

	httpServer := http_server.StartHTTPServer(tda.Store, tda.DataStore, records.Tables)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}
	if err := tda.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown data store")
	}
}
