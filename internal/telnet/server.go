// Package telnet provides the line-based TCP adapter players connect
// through.
package telnet

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/tapestrymud/tapestry/internal/auth"
	"github.com/tapestrymud/tapestry/internal/command"
	"github.com/tapestrymud/tapestry/internal/core"
	"github.com/tapestrymud/tapestry/internal/observability"
	"github.com/tapestrymud/tapestry/internal/world"
)

// Server accepts telnet connections and hands each to a
// ConnectionHandler.
type Server struct {
	addr        string
	listener    net.Listener
	engine      *world.Engine
	interp      *command.Interpreter
	sessions    *core.SessionManager
	hasher      *auth.Argon2idHasher
	defaultRoom string
	metrics     *observability.Metrics // may be nil
	mu          sync.RWMutex
}

// NewServer creates a telnet server. defaultRoom is the fqn of the room
// users in limbo are placed in at login; empty leaves them in limbo.
func NewServer(addr string, engine *world.Engine, interp *command.Interpreter, sessions *core.SessionManager, hasher *auth.Argon2idHasher, defaultRoom string, metrics *observability.Metrics) *Server {
	return &Server{
		addr:        addr,
		engine:      engine,
		interp:      interp,
		sessions:    sessions,
		hasher:      hasher,
		defaultRoom: defaultRoom,
		metrics:     metrics,
	}
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	slog.Info("telnet server started", "addr", listener.Addr())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			slog.Debug("error closing listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				slog.Error("accept failed", "error", err)
				continue
			}
		}
		handler := newConnectionHandler(conn, s)
		go handler.Handle(ctx)
	}
}
