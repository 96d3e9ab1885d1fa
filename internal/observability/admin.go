package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Status is the admin view of one bridge session.
type Status struct {
	SessionID       string    `json:"session_id"`
	State           string    `json:"state"`
	CurrentTool     string    `json:"current_tool,omitempty"`
	CommandsHandled uint64    `json:"commands_handled"`
	HostReady       bool      `json:"host_ready"`
	StartedAt       time.Time `json:"started_at"`
}

type StatusProvider interface {
	Status() Status
}

// AdminServer exposes health, status and metrics on a local listener.
type AdminServer struct {
	addr   string
	status StatusProvider
	router *gin.Engine
	logger zerolog.Logger
}

func NewAdminServer(addr string, status StatusProvider) *AdminServer {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	logger := ComponentLogger("admin")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetricsMiddleware())
	_ = r.SetTrustedProxies(nil)

	a := &AdminServer{addr: addr, status: status, router: r, logger: logger}
	r.GET("/healthz", a.handleHealth)
	r.GET("/status", a.handleStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return a
}

func (a *AdminServer) Handler() http.Handler {
	return a.router
}

// Serve blocks until ctx ends or the listener fails.
func (a *AdminServer) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.addr,
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.Info().Str("addr", a.addr).Msg("observability.AdminServer.Serve listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *AdminServer) handleHealth(c *gin.Context) {
	st := a.status.Status()
	if st.State == "terminated" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "terminated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "host_ready": st.HostReady})
}

func (a *AdminServer) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.status.Status())
}
