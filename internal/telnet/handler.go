package telnet

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tapestrymud/tapestry/internal/core"
	"github.com/tapestrymud/tapestry/internal/world"
)

const (
	greeting    = "Welcome to Tapestry."
	authHelp    = "Use: connect <username> <password>  or  register <username> <password> [email]"
	loginFailed = "Either the username or the password is unknown."
)

// ConnectionHandler drives one telnet connection through the pre-auth
// handshake and then feeds authenticated lines to the interpreter.
type ConnectionHandler struct {
	srv      *Server
	conn     net.Conn
	reader   *bufio.Reader
	writeMu  sync.Mutex
	connID   ulid.ULID
	userID   ulid.ULID
	authed   bool
	quitting bool
}

func newConnectionHandler(conn net.Conn, srv *Server) *ConnectionHandler {
	return &ConnectionHandler{
		srv:    srv,
		conn:   conn,
		reader: bufio.NewReader(conn),
		connID: core.NewULID(),
	}
}

// Handle processes the connection until closed.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	defer func() {
		if h.authed {
			h.srv.sessions.Disconnect(h.userID, h.connID)
		}
		if err := h.conn.Close(); err != nil {
			slog.Debug("error closing connection", "error", err)
		}
	}()

	h.send(greeting)
	h.send(authHelp)

	lineCh := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		for {
			line, err := h.reader.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			select {
			case lineCh <- strings.TrimSpace(line):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errCh:
			if !errors.Is(err, io.EOF) {
				slog.Debug("connection read error",
					"conn_id", h.connID.String(),
					"error", err,
				)
			}
			return

		case line := <-lineCh:
			h.processLine(ctx, line)
			if h.quitting {
				return
			}
		}
	}
}

func (h *ConnectionHandler) processLine(ctx context.Context, line string) {
	if h.authed {
		if strings.EqualFold(strings.TrimSpace(line), "quit") {
			h.send("Goodbye!")
			h.quitting = true
			return
		}
		h.srv.interp.Eval(ctx, h.userID, line)
		return
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch strings.ToLower(cmd) {
	case "connect":
		h.handleConnect(ctx, strings.TrimSpace(arg))
	case "register":
		h.handleRegister(strings.TrimSpace(arg))
	case "quit":
		h.send("Goodbye!")
		h.quitting = true
	case "":
	default:
		h.send(authHelp)
	}
}

func (h *ConnectionHandler) handleConnect(ctx context.Context, arg string) {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		h.send(authHelp)
		return
	}
	username, password := fields[0], fields[1]

	var userID ulid.ULID
	var hash string
	err := h.srv.engine.With(func(svc *world.Service) error {
		u, ok := svc.Store().UserByName(username)
		if !ok {
			return world.ValueErrorf("unknown user")
		}
		userID = u.ID
		hash = u.User.PasswordHash
		return nil
	})
	if err != nil {
		h.recordConnection("denied")
		h.send(loginFailed)
		return
	}

	// Argon2 verification is the expensive step; it runs outside the
	// world lock.
	ok, err := h.srv.hasher.Verify(password, hash)
	if err != nil || !ok {
		h.recordConnection("denied")
		h.send(loginFailed)
		return
	}

	h.userID = userID
	h.authed = true
	session := h.srv.sessions.Connect(userID, h.connID)
	go h.writeLoop(session)

	err = h.srv.engine.With(func(svc *world.Service) error {
		u, ok := svc.Store().Get(userID)
		if !ok {
			return world.ValueErrorf("unknown user")
		}
		now := time.Now().UTC()
		u.User.LastLogin = &now
		if u.User.LocationID == nil && h.srv.defaultRoom != "" {
			if err := svc.Teleport(u, h.srv.defaultRoom); err != nil {
				slog.Warn("could not place user in the default room",
					"user", username,
					"room", h.srv.defaultRoom,
					"error", err,
				)
			}
		}
		return nil
	})
	if err != nil {
		h.recordConnection("denied")
		h.send(loginFailed)
		return
	}

	h.recordConnection("connected")
	slog.Info("user connected",
		"user", username,
		"conn_id", h.connID.String(),
	)
	h.send("Welcome, " + username + "!")
	h.srv.interp.Eval(ctx, userID, "look")
}

func (h *ConnectionHandler) handleRegister(arg string) {
	fields := strings.Fields(arg)
	if len(fields) != 2 && len(fields) != 3 {
		h.send(authHelp)
		return
	}
	username, password := fields[0], fields[1]
	email := ""
	if len(fields) == 3 {
		email = fields[2]
	}

	err := h.srv.engine.With(func(svc *world.Service) error {
		_, createErr := svc.CreateUser(username, "", password, email)
		return createErr
	})
	if err != nil {
		h.send(err.Error())
		return
	}
	h.recordConnection("registered")
	slog.Info("user registered", "user", username)
	h.send("Account created. Now: connect " + username + " <password>")
}

// writeLoop drains the session outbox onto the connection. It exits when
// the outbox closes, either at disconnect or when a newer login replaces
// this session.
func (h *ConnectionHandler) writeLoop(session *core.Session) {
	for text := range session.Outbox {
		h.send(text)
	}
}

func (h *ConnectionHandler) send(text string) {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if _, err := h.conn.Write([]byte(text + "\r\n")); err != nil {
		slog.Debug("connection write failed",
			"conn_id", h.connID.String(),
			"error", err,
		)
	}
}

func (h *ConnectionHandler) recordConnection(outcome string) {
	if h.srv.metrics != nil {
		h.srv.metrics.ConnectionsTotal.WithLabelValues(outcome).Inc()
	}
}
