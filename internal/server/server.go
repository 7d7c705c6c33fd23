// Package server is the WebSocket gateway over a table session: it
// broadcasts every table event and state change to all connected clients
// and routes incoming actions into the table. Clients are trusted to act
// for any seat; the gateway serves a single operator and their tools, not
// adversarial players.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lcrostarosa/ploscope/internal/engine"
	"github.com/lcrostarosa/ploscope/internal/table"
)

// Server is the WebSocket gateway.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	logger   *log.Logger
	tbl      *table.Table

	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	mu          sync.RWMutex

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a gateway for the table. The table's event bus is subscribed
// immediately so no event between construction and Run is lost.
func New(addr string, tbl *table.Table, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		tbl:         tbl,
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
	tbl.Bus().Subscribe(table.SubscriberFunc(s.onTableEvent))
	return s
}

// Addr returns the bound listen address, useful when the configured port
// was 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	httpServer := &http.Server{Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.run()
		return nil
	})
	g.Go(func() error {
		err := httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		s.cancel()
		return httpServer.Close()
	})

	s.logger.Info("gateway listening", "addr", listener.Addr())
	return g.Wait()
}

// run owns the connection set.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("client disconnected", "total", total)

		case <-s.ctx.Done():
			s.mu.Lock()
			for conn := range s.connections {
				_ = conn.Close()
			}
			s.connections = make(map[*Connection]bool)
			s.mu.Unlock()
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newConnection(conn, s.logger, s)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.start()

	// A new client gets the current state straight away.
	s.sendState(client, "")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// Broadcast sends a message to every connected client.
func (s *Server) Broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if err := conn.Send(msg); err != nil {
			s.logger.Debug("failed to send to client", "error", err)
		}
	}
}

// onTableEvent relays table events to every client.
func (s *Server) onTableEvent(event table.Event) {
	msg, err := messageForEvent(event)
	if err != nil {
		s.logger.Error("failed to encode event", "type", event.EventType(), "error", err)
		return
	}
	if msg != nil {
		s.Broadcast(msg)
	}
}

// handleMessage dispatches one client request.
func (s *Server) handleMessage(c *Connection, msg *Message) {
	switch msg.Type {
	case MessageTypeAction:
		s.handleAction(c, msg)

	case MessageTypeGetState:
		s.sendState(c, msg.RequestID)

	case MessageTypeGetOpen:
		var data GetOpenData
		if err := unmarshalData(msg, &data); err != nil {
			c.sendError(msg.RequestID, "bad_request", err.Error())
			return
		}
		reply, err := NewMessage(MessageTypeActionsOpen, ActionsOpenData{
			Seat:    data.Seat,
			Actions: actionInfosFrom(s.tbl.AvailableActions(data.Seat)),
		})
		c.reply(msg.RequestID, reply, err)

	case MessageTypeNextHand:
		if _, err := s.tbl.ResetHand(); err != nil {
			c.sendError(msg.RequestID, "reset_failed", err.Error())
			return
		}
		s.broadcastState()

	default:
		c.sendError(msg.RequestID, "unknown_type", fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (s *Server) handleAction(c *Connection, msg *Message) {
	var data ActionData
	if err := unmarshalData(msg, &data); err != nil {
		c.sendError(msg.RequestID, "bad_request", err.Error())
		return
	}
	kind, err := engine.ParseActionKind(data.Action)
	if err != nil {
		c.sendError(msg.RequestID, "bad_action", err.Error())
		return
	}

	outcome, err := s.tbl.HandleAction(data.Seat, kind, data.Amount)
	if err != nil {
		c.sendError(msg.RequestID, errorCode(err), err.Error())
		return
	}

	if outcome.NeedsAmount != nil {
		reply, err := NewMessage(MessageTypeAmountRequired, AmountRequiredData{
			Seat:     data.Seat,
			Action:   data.Action,
			Min:      outcome.NeedsAmount.Min,
			Max:      outcome.NeedsAmount.Max,
			PotLimit: outcome.NeedsAmount.PotLimit,
		})
		c.reply(msg.RequestID, reply, err)
		return
	}

	s.broadcastState()
}

// sendState sends the current table view to one client.
func (s *Server) sendState(c *Connection, requestID string) {
	state := s.tbl.State()
	msg, err := NewMessage(MessageTypeState, stateDataFrom(&state, s.tbl.SidePots()))
	c.reply(requestID, msg, err)
}

// broadcastState pushes the current table view to everyone.
func (s *Server) broadcastState() {
	state := s.tbl.State()
	msg, err := NewMessage(MessageTypeState, stateDataFrom(&state, s.tbl.SidePots()))
	if err != nil {
		s.logger.Error("failed to encode state", "error", err)
		return
	}
	s.Broadcast(msg)
}

// errorCode maps table and engine errors onto wire error codes.
func errorCode(err error) string {
	var validation *engine.ValidationError
	var stack *engine.InsufficientStackError
	switch {
	case errors.As(err, &validation):
		return "invalid_action"
	case errors.As(err, &stack):
		return "insufficient_stack"
	case errors.Is(err, table.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, table.ErrHandFrozen):
		return "hand_frozen"
	case errors.Is(err, table.ErrHandComplete):
		return "hand_complete"
	case errors.Is(err, table.ErrHandBroken):
		return "hand_broken"
	case errors.Is(err, table.ErrSittingOut):
		return "sitting_out"
	default:
		return "internal_error"
	}
}

func unmarshalData(msg *Message, v interface{}) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("missing data payload")
	}
	return json.Unmarshal(msg.Data, v)
}
