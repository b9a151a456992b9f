package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danthegoodman1/tdastore/datastore"
	"github.com/danthegoodman1/tdastore/gologger"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/store"
	"github.com/danthegoodman1/tdastore/utils"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo *echo.Echo

	Store *store.Store
	// DataStore may be nil, in which case export and backup are unavailable
	DataStore datastore.DataStore
	Tables    *schema.Registry
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer builds the server and its routes without listening.
func NewHTTPServer(s *store.Store, ds datastore.DataStore, tables *schema.Registry) *HTTPServer {
	srv := &HTTPServer{
		Echo:      echo.New(),
		Store:     s,
		DataStore: ds,
		Tables:    tables,
	}
	srv.Echo.HideBanner = true
	srv.Echo.HidePort = true

	srv.Echo.Use(CreateReqContext)
	srv.Echo.Use(LoggerMiddleware)
	srv.Echo.Use(middleware.CORS())
	srv.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	srv.Echo.GET("/hc", srv.HealthCheck)

	tablesGroup := srv.Echo.Group("/tables")
	tablesGroup.GET("", ccHandler(srv.ListTables))
	tablesGroup.GET("/:table/columns", ccHandler(srv.GetColumns))
	tablesGroup.GET("/:table/rows", ccHandler(srv.GetRows))
	tablesGroup.GET("/:table/recent", ccHandler(srv.GetMostRecent))
	tablesGroup.POST("/:table/create", ccHandler(srv.CreateTable))
	tablesGroup.POST("/:table/export", ccHandler(srv.ExportHandler))

	srv.Echo.POST("/backup", ccHandler(srv.BackupHandler))
	srv.Echo.GET("/size", ccHandler(srv.GetSize))

	return srv
}

func StartHTTPServer(s *store.Store, ds datastore.DataStore, tables *schema.Registry) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.GetEnvOrDefault("HTTP_PORT", "8080")))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	srv := NewHTTPServer(s, ds, tables)

	srv.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := srv.Echo.StartH2CServer("", &http2.Server{})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return srv
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req recived")
		return nil
	}
}
