package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Factory builds the session for a plan when its first client connects.
type Factory func(ctx context.Context, planID string) (*Session, error)

type room struct {
	session *Session
	client  *Client
}

// Hub tracks the live session and active client per plan. Register and
// unregister run on the hub goroutine; one client owns a plan at a time and
// a newer connection displaces the older one.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*room // planID -> room
	factory    Factory
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

func NewHub(factory Factory) *Hub {
	return &Hub{
		rooms:      make(map[string]*room),
		factory:    factory,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop flushes every open session and halts the hub loop.
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for planID, rm := range h.rooms {
		if err := rm.session.Flush(context.Background()); err != nil {
			slog.Error("flush session", "plan", planID, "error", err)
		}
		delete(h.rooms, planID)
	}
}

// Register hands the client to the hub goroutine. After Stop it returns
// without registering, since nothing drains the channel anymore.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister is the counterpart used when a client's read pump exits. Safe to
// call after Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Session returns the live session for planID, if one is open.
func (h *Hub) Session(planID string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rm, ok := h.rooms[planID]
	if !ok {
		return nil, false
	}
	return rm.session, true
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	rm, ok := h.rooms[client.PlanID]
	if !ok {
		sess, err := h.factory(context.Background(), client.PlanID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("open session", "plan", client.PlanID, "error", err)
			payload, _ := json.Marshal(ErrorPayload{Message: "could not open plan"})
			client.Send(&Message{Type: TypeError, Payload: payload})
			close(client.send)
			return
		}
		rm = &room{session: sess}
		h.rooms[client.PlanID] = rm
	}

	if prev := rm.client; prev != nil {
		rm.session.SetPush(nil)
		close(prev.send)
	}
	rm.client = client
	h.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		PlanID: client.PlanID,
		State:  rm.session.Snapshot(),
	})
	client.Send(&Message{Type: TypeWelcome, Payload: welcome})

	rm.session.SetPush(client.Send)

	slog.Info("client joined", "user", client.UserID, "plan", client.PlanID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	rm, ok := h.rooms[client.PlanID]
	if !ok || rm.client != client {
		// Already displaced by a newer connection.
		h.mu.Unlock()
		return
	}

	rm.session.SetPush(nil)
	rm.client = nil
	close(client.send)
	delete(h.rooms, client.PlanID)
	h.mu.Unlock()

	if err := rm.session.Flush(context.Background()); err != nil {
		slog.Error("flush session", "plan", client.PlanID, "error", err)
	}

	slog.Info("client left", "user", client.UserID, "plan", client.PlanID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	h.mu.RLock()
	rm, ok := h.rooms[sender.PlanID]
	active := ok && rm.client == sender
	h.mu.RUnlock()
	if !active {
		return
	}
	rm.session.Handle(msg)
}
