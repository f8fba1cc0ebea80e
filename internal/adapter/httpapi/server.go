package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

// FunnelReader is the part of the funnel the stats endpoint needs.
type FunnelReader interface {
	Rows() ([]usecase.FunnelRow, error)
}

// NewRouter serves /healthz and, when funnel is set, a JSON funnel snapshot at /funnel.
func NewRouter(funnel FunnelReader, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/funnel", func(c *gin.Context) {
		if funnel == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "funnel is disabled"})
			return
		}
		rows, err := funnel.Rows()
		if err != nil {
			logger.Error("funnel snapshot failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "funnel is unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stages": rows})
	})
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Serve runs the server until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("health server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "health server")
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "health server shutdown")
	}
	logger.Info("health server stopped")
	return nil
}
