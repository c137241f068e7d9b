package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spektr-org/supplylens/engine"
	"github.com/spektr-org/supplylens/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Query params that are not filter columns.
var reservedParams = map[string]bool{
	"group_by":    true,
	"op":          true,
	"measure":     true,
	"denominator": true,
	"order":       true,
	"limit":       true,
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api")
	api.GET("/filters", s.getFilters)
	api.GET("/summary", s.getSummary)
	api.GET("/dashboard", s.getDashboard)
	api.GET("/aggregate", s.getAggregate)
	api.GET("/export.xlsx", s.getExportXLSX)
	api.GET("/export.arrow", s.getExportArrow)
}

// --- HANDLERS ---

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"records": s.view.Len(),
	})
}

func (s *Server) getFilters(c echo.Context) error {
	options, err := engine.FilterOptions(s.view, s.filterColumns)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, options)
}

func (s *Server) getSummary(c echo.Context) error {
	filtered, err := engine.Apply(s.view, filterSpec(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, engine.Summarize(filtered))
}

func (s *Server) getDashboard(c echo.Context) error {
	d, err := s.dashboard(c)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) getAggregate(c echo.Context) error {
	q := engine.Query{
		GroupBy:     splitList(c.QueryParam("group_by")),
		Op:          engine.Op(c.QueryParam("op")),
		Measure:     c.QueryParam("measure"),
		Denominator: c.QueryParam("denominator"),
		Order:       engine.Order(c.QueryParam("order")),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		q.Limit = n
	}

	filtered, err := engine.Apply(s.view, filterSpec(c))
	if err != nil {
		return httpError(err)
	}
	res, err := engine.Aggregate(filtered, q)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) getExportXLSX(c echo.Context) error {
	d, err := s.dashboard(c)
	if err != nil {
		return httpError(err)
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, d); err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="supplylens.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) getExportArrow(c echo.Context) error {
	filtered, err := engine.Apply(s.view, filterSpec(c))
	if err != nil {
		return httpError(err)
	}
	var buf bytes.Buffer
	if err := export.WriteArrow(&buf, filtered); err != nil {
		return httpError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="supplylens.arrow"`)
	return c.Blob(http.StatusOK, "application/vnd.apache.arrow.stream", buf.Bytes())
}

// --- HELPERS ---

func (s *Server) dashboard(c echo.Context) (*engine.Dashboard, error) {
	spec := filterSpec(c)
	if s.cache != nil {
		return s.cache.Get(c.Request().Context(), spec)
	}
	return engine.BuildDashboard(s.view, spec, s.opts...)
}

// filterSpec reads every non-reserved query param as a filter selector.
func filterSpec(c echo.Context) engine.FilterSpec {
	spec := engine.FilterSpec{}
	for key := range c.QueryParams() {
		if reservedParams[key] {
			continue
		}
		spec[key] = c.QueryParam(key)
	}
	return spec
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func httpError(err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownColumn), errors.Is(err, engine.ErrUnsupportedOp):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
