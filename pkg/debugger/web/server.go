// Package web provides a websocket debugger front-end. Each client
// sends commands as text lines or JSON, and receives its responses
// along with events broadcast to every client.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/thelolagemann/dmgcore/pkg/debugger"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

func init() {
	s := NewServer()
	debugger.Install("web", s, []debugger.FrontendOption{
		{
			Name:        "listen",
			Default:     DefaultAddr,
			Value:       &s.Addr,
			Description: "The address to serve the websocket debugger on",
			Type:        "string",
		},
		{
			Name:        "compression",
			Default:     true,
			Value:       &s.Compression,
			Description: "Brotli compress memory dumps",
			Type:        "bool",
		},
		{
			Name:        "compression-level",
			Default:     DefaultCompressionLevel,
			Value:       &s.CompressionLevel,
			Description: "Brotli compression level (0-11)",
			Type:        "int",
		},
	})
}

const (
	DefaultAddr             = "localhost:8090"
	DefaultCompressionLevel = 6

	shutdownTimeout = 5 * time.Second
)

// Server serves the debugger over websockets at /ws.
type Server struct {
	Addr             string
	Compression      bool
	CompressionLevel int
	Logger           log.Logger
}

// NewServer returns a Server with the default options.
func NewServer() *Server {
	return &Server{
		Addr:             DefaultAddr,
		Compression:      true,
		CompressionLevel: DefaultCompressionLevel,
		Logger:           log.NewNullLogger(),
	}
}

// Handler starts a hub for emu, returning a handler serving it at
// /ws. The hub stops when ctx is done or the emulator closes.
func (s *Server) Handler(ctx context.Context, emu emulator.Controller) http.Handler {
	_, mux := s.handler(ctx, emu)
	return mux
}

func (s *Server) handler(ctx context.Context, emu emulator.Controller) (*hub, http.Handler) {
	h := newHub(emu, s)
	go h.run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	return h, mux
}

// Start listens on Addr and serves until ctx is done or the
// emulator closes.
func (s *Server) Start(ctx context.Context, emu emulator.Controller) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ln, err := listenConfig().Listen(ctx, "tcp", s.Addr)
	if err != nil {
		return err
	}

	h, mux := s.handler(ctx, emu)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-h.done
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warnf("web: shutdown: %v", err)
		}
	}()

	s.Logger.Infof("web: serving debugger on ws://%s/ws", ln.Addr())
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
