package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHubRegisterAfterStopReturns(t *testing.T) {
	hub := NewHub(func(ctx context.Context, planID string) (*Session, error) {
		return nil, errors.New("no sessions after stop")
	})
	go hub.Run()
	hub.Stop()

	client := NewClient(hub, nil, "user-test", "plan-test", "client-test")

	done := make(chan struct{})
	go func() {
		hub.Register(client)
		hub.Unregister(client)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register/Unregister blocked after hub stop")
	}

	if _, ok := hub.Session("plan-test"); ok {
		t.Error("stopped hub should hold no sessions")
	}
}
