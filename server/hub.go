package server

import (
	"context"
)

// job is a closure submitted to the strand; it runs to completion without
// suspension once dequeued (§5).
type job func()

// Hub is the single logical executor ("the strand", C9) that all mutating
// API operations and periodic ticks are serialized through. Read-only
// paths may share the same executor for simplicity, at the cost of some
// unnecessary contention; the spec permits this (§4.9).
//
// The pattern is a single goroutine reading from an inbox channel; callers
// send a closure and block on a reply channel, mirroring the "message per
// request" idiom the spec calls out in its design notes (§9).
type Hub struct {
	Game *Game

	inbox chan job
	done  chan struct{}
}

// NewHub constructs a Hub around game and starts its dispatch loop. Close
// must be called to stop accepting work and let the current job finish
// (§5 cancellation policy).
func NewHub(game *Game) *Hub {
	h := &Hub{
		Game:  game,
		inbox: make(chan job, 64),
		done:  make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for j := range h.inbox {
		j()
	}
	close(h.done)
}

// Submit enqueues fn and blocks until it has run to completion on the
// strand. It returns ctx.Err() if ctx is cancelled before fn is accepted
// into the inbox; once accepted, fn always runs to completion and Submit
// waits for it (no in-progress request is forcibly cancelled, per §5).
func (h *Hub) Submit(ctx context.Context, fn func()) error {
	reply := make(chan struct{})
	select {
	case h.inbox <- func() {
		fn()
		close(reply)
	}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		<-reply
		return nil
	}
}

// Join dispatches JoinGame onto the strand.
func (h *Hub) Join(ctx context.Context, userName, mapID string) (*Player, *Dog, error) {
	var player *Player
	var dog *Dog
	var err error
	subErr := h.Submit(ctx, func() {
		player, dog, err = h.Game.JoinGame(userName, mapID, h.Game.Clock.NowMs())
	})
	if subErr != nil {
		return nil, nil, subErr
	}
	return player, dog, err
}

// Action dispatches a move-direction change onto the strand.
func (h *Hub) Action(ctx context.Context, token string, dir Direction) error {
	var opErr error
	subErr := h.Submit(ctx, func() {
		p := h.Game.FindPlayerByToken(token)
		if p == nil {
			opErr = NewAPIError(ErrUnknownToken, "no live player for token")
			return
		}
		dog := h.Game.DogForPlayer(p)
		if dog == nil {
			opErr = NewAPIError(ErrInternal, "player has no live dog")
			return
		}
		m := h.Game.SessionForPlayer(p).Map
		dog.Direction = dir
		dog.Velocity = dir.Velocity(m.DogSpeed)
	})
	if subErr != nil {
		return subErr
	}
	return opErr
}

// Tick dispatches a simulation tick of deltaMs milliseconds onto the
// strand. Only valid in TEST clock mode; NORMAL-mode callers should rely on
// the periodic ticker instead (§7 S5).
func (h *Hub) Tick(ctx context.Context, deltaMs int64) error {
	if h.Game.Clock.Mode() != ClockTest {
		return NewAPIError(ErrBadRequest, "explicit tick is only valid in TEST mode")
	}
	var tickErr error
	subErr := h.Submit(ctx, func() {
		h.Game.Clock.Advance(deltaMs)
		tickErr = h.Game.Tick(ctx, deltaMs)
	})
	if subErr != nil {
		return subErr
	}
	return tickErr
}

// PeriodicTick is invoked by the NORMAL-mode ticker; it does not advance a
// TEST clock (NORMAL mode tracks wall time on its own).
func (h *Hub) PeriodicTick(ctx context.Context, deltaMs int64) error {
	var tickErr error
	subErr := h.Submit(ctx, func() {
		tickErr = h.Game.Tick(ctx, deltaMs)
	})
	if subErr != nil {
		return subErr
	}
	return tickErr
}

// Snapshot runs fn on the strand, for read-only queries (players list,
// state) that still want a consistent view of mutable game state (§4.9).
// fn hands its results back through variables it captures; the returned
// error is only Submit's.
func (h *Hub) Snapshot(ctx context.Context, fn func()) error {
	return h.Submit(ctx, fn)
}

// Close stops the strand from accepting new work and waits for the
// in-flight job and every job already queued to finish before returning
// (§5).
func (h *Hub) Close() error {
	close(h.inbox)
	<-h.done
	return nil
}
