package http_server

import (
	"net/http"
	"strconv"

	"github.com/danthegoodman1/tdastore/exporter"
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/danthegoodman1/tdastore/sqlbuild"
	"github.com/labstack/echo/v4"
)

const defaultRowLimit = 100

type (
	column struct {
		Name       string
		Type       string
		PrimaryKey bool   `json:",omitempty"`
		Nullable   bool   `json:",omitempty"`
		NotNull    bool   `json:",omitempty"`
		Enum       string `json:",omitempty"`
	}

	CreateTableReqBody struct {
		Overwrite bool
	}
)

func (s *HTTPServer) descriptor(c *CustomContext) (*schema.Descriptor, error) {
	d, ok := s.Tables.Lookup(c.Param("table"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "unknown table "+c.Param("table"))
	}
	return d, nil
}

func (s *HTTPServer) ListTables(c *CustomContext) error {
	tables := make([]string, 0)
	for _, d := range s.Tables.All() {
		tables = append(tables, d.Table)
	}
	return c.JSON(http.StatusOK, tables)
}

func (s *HTTPServer) GetColumns(c *CustomContext) error {
	d, err := s.descriptor(c)
	if err != nil {
		return err
	}

	var columns []column
	for _, f := range d.Fields {
		columns = append(columns, column{
			Name:       f.Name,
			Type:       f.Kind.String(),
			PrimaryKey: f.PrimaryKey,
			Nullable:   f.Nullable,
			NotNull:    f.NotNull,
			Enum:       f.EnumName,
		})
	}
	return c.JSON(http.StatusOK, columns)
}

func (s *HTTPServer) GetRows(c *CustomContext) error {
	d, err := s.descriptor(c)
	if err != nil {
		return err
	}

	limit := defaultRowLimit
	if l := c.QueryParam("limit"); l != "" {
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 || limit > exporter.MaxRows {
			return c.String(http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(exporter.MaxRows))
		}
	}

	rows := s.Store.Rows(c.Request().Context(), d, sqlbuild.SelectLimit(d, limit))
	return c.JSON(http.StatusOK, rows)
}

func (s *HTTPServer) GetMostRecent(c *CustomContext) error {
	d, err := s.descriptor(c)
	if err != nil {
		return err
	}

	rows := s.Store.Rows(c.Request().Context(), d, sqlbuild.SelectMostRecent(d))
	if len(rows) == 0 {
		return c.String(http.StatusNotFound, "no rows")
	}
	return c.JSON(http.StatusOK, rows[0])
}

func (s *HTTPServer) CreateTable(c *CustomContext) error {
	d, err := s.descriptor(c)
	if err != nil {
		return err
	}

	var reqBody CreateTableReqBody
	if err = ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	res := s.Store.CreateTable(c.Request().Context(), d, reqBody.Overwrite)
	if !res.Success {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) GetSize(c *CustomContext) error {
	size, err := s.Store.Size(c.Request().Context())
	if err != nil {
		return c.InternalError(err, "error getting store size")
	}
	return c.JSON(http.StatusOK, map[string]int64{"Bytes": size})
}
