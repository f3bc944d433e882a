// Package server is the journal server: it persists operations and serves
// them over the HTTP API the tradelog client speaks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tableflip.dev/tradelog/pkg/operation"
	"tableflip.dev/tradelog/pkg/store"
)

const maxImageSize = 10 << 20

// Server serves the operations API from a Persistence.
type Server struct {
	store   store.Persistence
	log     *zap.Logger
	now     func() time.Time
	metrics *metrics
	engine  *gin.Engine
}

// New builds the server and its routes.
func New(p store.Persistence, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		store:   p,
		log:     log,
		now:     time.Now,
		metrics: newMetrics(),
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.observe())

	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))
	s.engine.GET("/uploads/:name", s.image)

	api := s.engine.Group("/api/operations")
	api.GET("", s.list)
	api.POST("", s.create)
	api.GET("/:id", s.get)
	api.DELETE("/:id", s.delete)
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.refreshCount(ctx)
	if events, err := s.store.Watch(ctx); err != nil {
		s.log.Warn("store watch unavailable", zap.Error(err))
	} else {
		go func() {
			for range events {
				s.refreshCount(ctx)
			}
		}()
	}

	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("journal server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) refreshCount(ctx context.Context) {
	ops, err := s.store.List(ctx)
	if err != nil {
		s.log.Warn("count operations", zap.Error(err))
		return
	}
	s.metrics.operations.Set(float64(len(ops)))
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		dur := time.Since(start)
		s.metrics.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(dur.Seconds())
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", dur),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) list(c *gin.Context) {
	ops, err := s.store.List(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	groups := make(map[operation.GroupKey][]operation.Operation)
	for _, op := range ops {
		key := operation.KeyFor(op)
		groups[key] = append(groups[key], op)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].EnteredAt.After(group[j].EnteredAt)
		})
	}
	c.JSON(http.StatusOK, groups)
}

func (s *Server) get(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	op, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, op)
}

func (s *Server) create(c *gin.Context) {
	raw := c.PostForm("data")
	if strings.TrimSpace(raw) == "" {
		s.fail(c, http.StatusBadRequest, errors.New("missing data field"))
		return
	}
	var draft operation.Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid data: %w", err))
		return
	}
	if err := draft.Validate(); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	blobs, err := readImages(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}

	enteredAt := draft.EnteredAt
	if enteredAt.IsZero() {
		enteredAt = s.now()
	}
	op := operation.Operation{
		Underlying:    strings.ToUpper(strings.TrimSpace(draft.Underlying)),
		EnteredAt:     enteredAt.UTC(),
		Justification: draft.Justification,
		Strategy:      operation.DetectStrategy(draft.Legs),
		Legs:          draft.Legs,
	}
	created, err := s.store.Create(c.Request.Context(), op, blobs)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	s.refreshCount(c.Request.Context())
	c.JSON(http.StatusCreated, created)
}

func (s *Server) delete(c *gin.Context) {
	id, ok := s.idParam(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.storeError(c, err)
		return
	}
	s.refreshCount(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("operation %d deleted", id)})
}

func (s *Server) image(c *gin.Context) {
	rc, err := s.store.OpenImage(c.Param("name"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxImageSize))
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func readImages(c *gin.Context) ([]operation.Blob, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	var blobs []operation.Blob
	for _, fh := range form.File["images"] {
		if fh.Size > maxImageSize {
			return nil, fmt.Errorf("image %s exceeds %d bytes", fh.Filename, maxImageSize)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open image %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", fh.Filename, err)
		}
		blobs = append(blobs, operation.Blob{Name: filepath.Base(fh.Filename), Data: data})
	}
	return blobs, nil
}

func (s *Server) idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, http.StatusBadRequest, fmt.Errorf("invalid operation id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.fail(c, http.StatusNotFound, err)
		return
	}
	s.fail(c, http.StatusInternalServerError, err)
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
