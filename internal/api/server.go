// Package api serves the save engine over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/samcharles93/savekit/internal/logger"
	"github.com/samcharles93/savekit/internal/metrics"
	"github.com/samcharles93/savekit/pkg/format"
	"github.com/samcharles93/savekit/pkg/gta3"
	"github.com/samcharles93/savekit/pkg/save"
)

type Server struct {
	store   *SaveStore
	metrics *metrics.Metrics
	opts    save.Options
	log     logger.Logger
	clock   func() time.Time
}

// NewServer returns a server over store. Every load and save uses opts; m
// may be nil.
func NewServer(store *SaveStore, m *metrics.Metrics, opts save.Options) *Server {
	if store == nil {
		store = NewSaveStore()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store:   store,
		metrics: m,
		opts:    opts,
		log:     log,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/detect", s.handleDetect)
	e.POST("/v1/saves", s.handleCreateSave)
	e.GET("/v1/saves/:id", s.handleGetSave)
	e.PATCH("/v1/saves/:id", s.handleUpdateSave)
	e.DELETE("/v1/saves/:id", s.handleDeleteSave)
	e.GET("/v1/saves/:id/export", s.handleExportSave)
}

// RegisterMetrics exposes g in the Prometheus text format at /metrics.
func RegisterMetrics(e *echo.Echo, g prometheus.Gatherer) {
	h := promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	e.GET("/metrics", func(c *echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func (s *Server) handleDetect(c *echo.Context) error {
	data, err := readSave(c)
	if err != nil {
		return writeReadError(c, err)
	}
	start := time.Now()
	res, err := gta3.Detect(data)
	if err != nil {
		s.metrics.RecordFailure("detect", err)
		return writeSaveError(c, err)
	}
	s.metrics.RecordDetect(res.Format.ID, string(res.Method), time.Since(start))

	resp := DetectResponse{
		Object:      "detection",
		Format:      res.Format.ID,
		Label:       res.Format.Label,
		Method:      string(res.Method),
		ElementSize: res.ElementSize,
		Digest:      gta3.Digest(data),
	}
	for _, f := range res.Candidates {
		resp.Candidates = append(resp.Candidates, f.ID)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateSave(c *echo.Context) error {
	data, err := readSave(c)
	if err != nil {
		return writeReadError(c, err)
	}
	digest := gta3.Digest(data)
	start := time.Now()
	sf, err := gta3.Load(data, s.opts)
	if err != nil {
		s.metrics.RecordFailure("load", err)
		s.log.Warn("rejected upload", "digest", digest, "error", err)
		return writeSaveError(c, err)
	}
	s.metrics.RecordLoad(sf.Format().ID, time.Since(start))

	rec, created := s.store.Put(digest, sf, s.clock())
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.log.Info("stored save", "id", rec.ID, "format", sf.Format().ID, "digest", digest)
	}
	return c.JSON(status, s.describe(rec))
}

func (s *Server) handleGetSave(c *echo.Context) error {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		return writeSaveError(c, err)
	}
	return c.JSON(http.StatusOK, s.describe(rec))
}

func (s *Server) handleUpdateSave(c *echo.Context) error {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		return writeSaveError(c, err)
	}
	req, err := decodeJSON[UpdateSaveReq](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if err := validateUpdate(req); err != nil {
		return writeSaveError(c, err)
	}

	rec.mu.Lock()
	sf := rec.Save
	if req.SaveName != nil {
		sf.SimpleVars.SaveName = *req.SaveName
	}
	if req.Money != nil {
		sf.PlayerInfo.Money = *req.Money
		sf.PlayerInfo.DisplayedMoney = *req.Money
	}
	if req.GameClockHours != nil {
		sf.SimpleVars.GameClockHours = *req.GameClockHours
	}
	if req.GameClockMinutes != nil {
		sf.SimpleVars.GameClockMinutes = *req.GameClockMinutes
	}
	if req.Format != nil {
		f, _ := gta3.Formats.ByID(*req.Format)
		sf.SetFormat(f)
	}
	rec.mu.Unlock()

	return c.JSON(http.StatusOK, s.describe(rec))
}

func validateUpdate(req UpdateSaveReq) error {
	if req.GameClockHours != nil && *req.GameClockHours > 23 {
		return newInvalidRequest(fmt.Sprintf("game_clock_hours: %d is not an hour", *req.GameClockHours))
	}
	if req.GameClockMinutes != nil && *req.GameClockMinutes > 59 {
		return newInvalidRequest(fmt.Sprintf("game_clock_minutes: %d is not a minute", *req.GameClockMinutes))
	}
	if req.Format != nil {
		if _, ok := gta3.Formats.ByID(*req.Format); !ok {
			return newInvalidRequest(fmt.Sprintf("format: unknown format %q", *req.Format))
		}
	}
	return nil
}

func (s *Server) handleExportSave(c *echo.Context) error {
	rec, err := s.store.Get(c.Param("id"))
	if err != nil {
		return writeSaveError(c, err)
	}
	var target format.Format
	if id := c.QueryParam("format"); id != "" {
		f, ok := gta3.Formats.ByID(id)
		if !ok {
			return writeBadRequest(c, fmt.Sprintf("unknown format %q", id))
		}
		target = f
	}

	start := time.Now()
	rec.mu.Lock()
	data, err := rec.Save.Save(target)
	formatID := rec.Save.Format().ID
	rec.mu.Unlock()
	if err != nil {
		s.metrics.RecordFailure("save", err)
		return writeSaveError(c, err)
	}
	if !target.IsZero() {
		formatID = target.ID
	}
	s.metrics.RecordSave(formatID, time.Since(start))

	c.Response().Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.ID+"."+formatID+".b"))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
}

func (s *Server) handleDeleteSave(c *echo.Context) error {
	id := c.Param("id")
	if err := s.store.Delete(id); err != nil {
		return writeSaveError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteSaveResp{
		ID:      id,
		Object:  "save.deleted",
		Deleted: true,
	})
}

func (s *Server) describe(rec *saveRecord) SaveResponse {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return SaveResponse{
		ID:        rec.ID,
		Object:    "save",
		CreatedAt: rec.CreatedAt.Unix(),
		Digest:    rec.Digest,
		Size:      gta3.FileSize(rec.Save.Format()),
		Summary:   rec.Save.Summary(),
	}
}
