// Package ws implements the ConnectionHandler state machine: one goroutine
// pair per upgraded WebSocket, running the Unattached -> Attached ->
// Terminating lifecycle described in spec.md section 4.3.
package ws

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/sony/gobreaker"

	"github.com/nplate/relay/internal/domain/client"
	"github.com/nplate/relay/internal/domain/mailbox"
	"github.com/nplate/relay/internal/domain/shutdown"
)

// Handler serves upgraded WebSocket connections against a shared
// MailboxTable and ClientRegistry. One Handler is constructed per process
// and its Serve method is invoked once per connection.
type Handler struct {
	table    *mailbox.Table
	registry *client.Registry
	shutdown *shutdown.Coordinator
	logger   *slog.Logger
}

// NewHandler wires the ConnectionHandler to the process-wide core state.
func NewHandler(table *mailbox.Table, registry *client.Registry, coordinator *shutdown.Coordinator, logger *slog.Logger) *Handler {
	return &Handler{table: table, registry: registry, shutdown: coordinator, logger: logger}
}

type incomingFrame struct {
	kind    mailbox.FrameKind
	payload []byte
}

// Serve runs one connection's full lifecycle to completion: read pump,
// write pump, state machine, and cleanup. It returns once the connection
// has fully terminated.
func (h *Handler) Serve(ctx context.Context, conn *websocket.Conn) {
	c := h.registry.NewClient()
	logger := h.logger.With("client_id", uint64(c.ID()))
	logger.Debug("connected")

	stop := make(chan struct{})
	writeErr := make(chan struct{}, 1)
	writeDone := make(chan struct{})
	readCh := make(chan incomingFrame)
	readErr := make(chan struct{}, 1)

	breaker := newWriteBreaker(fmt.Sprintf("client-%d", c.ID()))

	go h.writePump(c, conn, breaker, stop, writeErr, writeDone)
	go readPump(conn, readCh, readErr)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-h.shutdown.Done():
			break loop
		case <-c.Killed():
			break loop
		case <-writeErr:
			break loop
		case <-readErr:
			break loop
		case in := <-readCh:
			if !h.handleInbound(c, logger, in) {
				break loop
			}
		}
	}

	close(stop)
	<-writeDone // writePump must stop touching conn before cleanup writes to it
	h.cleanup(c, conn, logger)
}

// handleInbound processes one inbound data frame. It returns false if the
// connection must transition to Terminating (malformed initial message,
// unrecognized/not-found/busy connect target).
func (h *Handler) handleInbound(c *client.Client, logger *slog.Logger, in incomingFrame) bool {
	if mailboxID, attached := c.MailboxID(); attached {
		h.routeDataFrame(c, mailboxID, in)
		return true
	}
	return h.handleInitialRequest(c, logger, in)
}

func (h *Handler) routeDataFrame(c *client.Client, mailboxID mailbox.ID, in incomingFrame) {
	frame := mailbox.Frame{Kind: in.kind, Payload: in.payload}
	target, delivered := h.table.Send(mailboxID, c.ID(), frame)
	if !delivered {
		return
	}
	if partner, ok := h.registry.Find(target); ok {
		partner.Send(frame)
	}
	// Partner vanished between Send and lookup: it is already disconnecting,
	// dropping the frame is correct (spec.md section 4.3, data phase).
}

func (h *Handler) handleInitialRequest(c *client.Client, logger *slog.Logger, in incomingFrame) bool {
	req, err := ParseInitialRequest(in.payload)
	if err != nil {
		logger.Debug("malformed initial message", "err", err)
		return false
	}

	switch req.Kind {
	case RequestCreateMailbox:
		return h.handleCreate(c, logger)
	case RequestConnectToMailbox:
		return h.handleConnect(c, logger, req.ID)
	default:
		return false
	}
}

func (h *Handler) handleCreate(c *client.Client, logger *slog.Logger) bool {
	id, err := h.table.Create()
	if err != nil {
		logger.Debug("create mailbox failed", "err", err)
		return false
	}
	if err := h.table.Attach(id, c.ID()); err != nil {
		// A brand-new mailbox is never busy; reaching here means the
		// invariant a fresh Create always leaves a free slot was violated.
		logger.Error("attach to freshly created mailbox failed", "mailbox_id", uint32(id), "err", err)
		return false
	}
	c.SetMailboxID(id)

	reply, err := FormatCreated(uint32(id))
	if err != nil {
		logger.Error("format created reply failed", "err", err)
		return false
	}
	c.Send(mailbox.Frame{Kind: mailbox.FrameText, Payload: reply})
	logger.Debug("created mailbox", "mailbox_id", uint32(id))
	return true
}

func (h *Handler) handleConnect(c *client.Client, logger *slog.Logger, rawID uint32) bool {
	id, err := h.table.Find(rawID)
	if err != nil {
		logger.Debug("connect to mailbox failed", "id", rawID, "err", err)
		return false
	}
	if err := h.table.Attach(id, c.ID()); err != nil {
		logger.Debug("attach after find failed (race with a third peer)", "mailbox_id", uint32(id), "err", err)
		return false
	}
	c.SetMailboxID(id)

	reply, err := FormatConnected(uint32(id))
	if err != nil {
		logger.Error("format connected reply failed", "err", err)
		return false
	}
	c.Send(mailbox.Frame{Kind: mailbox.FrameText, Payload: reply})

	for _, pending := range h.table.TakePending(id, c.ID()) {
		c.Send(pending)
	}
	logger.Debug("connected to mailbox", "mailbox_id", uint32(id))
	return true
}

// cleanup runs exactly once per handler, on every exit path (spec.md
// section 4.3, "Termination and cleanup").
func (h *Handler) cleanup(c *client.Client, conn *websocket.Conn, logger *slog.Logger) {
	if mailboxID, attached := c.MailboxID(); attached {
		for _, survivorID := range h.table.Detach(mailboxID, c.ID()) {
			h.registry.Kill(survivorID)
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	c.CloseOutbound()
	h.registry.Remove(c.ID())
	logger.Debug("disconnected")
}

// writePump is the sole writer of conn for as long as it runs. It closes
// done on return — by a write failure or by stop closing — so cleanup can
// wait for that before writing the close frame itself, guaranteeing the two
// never touch conn concurrently (gorilla/websocket permits only one writer
// at a time).
func (h *Handler) writePump(c *client.Client, conn *websocket.Conn, breaker *gobreaker.CircuitBreaker[struct{}], stop <-chan struct{}, failed chan<- struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		frame, ok := c.Recv(stop)
		if !ok {
			return
		}
		wireType := websocket.TextMessage
		if frame.Kind == mailbox.FrameBinary {
			wireType = websocket.BinaryMessage
		}
		if err := writeFrame(breaker, conn, wireType, frame.Payload); err != nil {
			select {
			case failed <- struct{}{}:
			default:
			}
			return
		}
	}
}

func readPump(conn *websocket.Conn, out chan<- incomingFrame, errCh chan<- struct{}) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			// Normal close frames, timeouts, and transport errors all land
			// here; none are distinguished further (spec.md section 4.3
			// treats them identically: -> Terminating).
			select {
			case errCh <- struct{}{}:
			default:
			}
			return
		}

		kind := mailbox.FrameText
		if messageType == websocket.BinaryMessage {
			kind = mailbox.FrameBinary
		}
		out <- incomingFrame{kind: kind, payload: payload}
	}
}
