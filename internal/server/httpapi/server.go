package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notelinkapp/notelink/internal/logging"
)

// NewRouter assembles the gin engine: public auth endpoint, bearer-guarded
// API group, health probe.
func NewRouter(h *Handler, jwtSecret []byte) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)
	router.POST("/api/auth/device", h.AuthenticateDevice)

	api := router.Group("/api", AuthMiddleware(jwtSecret))
	{
		api.GET("/users/me", h.GetMe)
		api.PUT("/users/me", h.UpdateMe)
		api.GET("/users/:id", h.GetUser)

		api.GET("/contacts", h.ListContacts)
		api.POST("/contacts", h.AddContact)
		api.DELETE("/contacts/:id", h.RemoveContact)
		api.POST("/contacts/match", h.MatchContacts)

		api.GET("/invite", h.GetInviteLink)
		api.POST("/invite/accept", h.AcceptInvite)

		api.POST("/shares", h.CreateShare)
		api.GET("/shares", h.ListShares)
		api.POST("/shares/:id/accept", h.AcceptShare)
	}

	return router
}

type HTTPServer struct {
	server *http.Server
	logger logging.Logger
}

func NewHTTPServer(addr string, router *gin.Engine, logger logging.Logger) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "http server started", "addr", s.server.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
