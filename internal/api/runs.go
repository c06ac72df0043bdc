package api

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/lespmv/internal/logger"
	"github.com/samcharles93/lespmv/internal/mmio"
	"github.com/samcharles93/lespmv/internal/sparse"
	"github.com/samcharles93/lespmv/internal/version"
)

type Server struct {
	store   *RunStore
	service *RunService
	clock   func() time.Time
}

func NewServer(store *RunStore, service *RunService) *Server {
	if store == nil {
		store = NewRunStore()
	}
	return &Server{
		store:   store,
		service: service,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/health", s.handleHealth)

	e.POST("/v1/runs", s.handleCreateRun)
	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.DELETE("/v1/runs/:id", s.handleDeleteRun)
}

func (s *Server) handleHealth(c *echo.Context) error {
	resp := HealthResponse{
		Status:  "ok",
		Version: version.String(),
		Runs:    s.store.Len(),
	}
	if s.service != nil {
		resp.Workers = s.service.Workers()
		resp.Busy = s.service.Busy()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateRun(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "run service not configured", "", "")
	}
	req, err := decodeJSON[RunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	start := s.clock()
	rep, err := s.service.Run(ctx, &req)
	if rep != nil {
		s.store.Save(rep)
	}
	if err != nil {
		switch {
		case isClientError(err):
			return writeBadRequest(c, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return writeError(c, http.StatusServiceUnavailable, "canceled_error", err.Error(), "", "")
		default:
			logger.FromContext(ctx).Error("run failed", "error", err)
			return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
		}
	}
	logger.FromContext(ctx).Info("run stored", "id", rep.ID, "elapsed", s.clock().Sub(start))
	return c.JSON(http.StatusOK, newRunResponse(rep))
}

func (s *Server) handleListRuns(c *echo.Context) error {
	reps := s.store.List()
	list := RunList{Object: "list", Data: make([]RunListItem, 0, len(reps))}
	for _, rep := range reps {
		list.Data = append(list.Data, RunListItem{
			ID:        rep.ID,
			Object:    "run",
			CreatedAt: rep.CreatedAt.Unix(),
			Matrix:    rep.Matrix.Name,
			Stage:     rep.Stage,
			Summary:   rep.Summary(),
		})
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleGetRun(c *echo.Context) error {
	id := c.Param("id")
	rep, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, fmt.Sprintf("run %q not found", id))
	}
	return c.JSON(http.StatusOK, newRunResponse(rep))
}

func (s *Server) handleDeleteRun(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, fmt.Sprintf("run %q not found", id))
	}
	return c.JSON(http.StatusOK, DeleteRunResp{ID: id, Object: "run.deleted", Deleted: true})
}

// isClientError reports errors caused by the request or its input file.
func isClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		sparse.ErrConfiguration,
		sparse.ErrShape,
		sparse.ErrInvariant,
		mmio.ErrFormat,
		mmio.ErrUnsupported,
		fs.ErrNotExist,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
