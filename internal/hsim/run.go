package hsim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hephbuild/rwsched/internal/hcore/hlog"
	"github.com/hephbuild/rwsched/lib/rwlock"
)

type EventType string

const (
	EventRequested EventType = "requested"
	EventGranted   EventType = "granted"
	EventTimeout   EventType = "timeout"
	EventReleased  EventType = "released"
)

type Event struct {
	Elapsed   time.Duration `json:"elapsed"`
	Actor     string        `json:"actor"`
	Lock      string        `json:"lock"`
	Kind      rwlock.Kind   `json:"kind"`
	Type      EventType     `json:"type"`
	Occupancy int           `json:"occupancy"`
}

type Timeline struct {
	RunID    uuid.UUID `json:"run_id"`
	Scenario string    `json:"scenario"`
	Events   []Event   `json:"events"`
}

// Actor returns the event types recorded for the named actor, in order.
func (t Timeline) Actor(name string) []EventType {
	var types []EventType
	for _, e := range t.Events {
		if e.Actor == name {
			types = append(types, e.Type)
		}
	}

	return types
}

type run struct {
	reg   *rwlock.Registry
	loop  rwlock.Loop
	start time.Time

	events   []Event
	pending  int
	requests []*rwlock.Request
	doneCh   chan []Event
}

// Run replays sc on the registry loop and waits until every actor has either
// timed out or released its lease.
func Run(ctx context.Context, reg *rwlock.Registry, sc Scenario) (Timeline, error) {
	plans, err := sc.compile()
	if err != nil {
		return Timeline{}, fmt.Errorf("%v: %w", sc.Name, err)
	}

	tl := Timeline{RunID: uuid.New(), Scenario: sc.Name}

	ctx, logger := hlog.ContextWith(ctx, "run", tl.RunID.String(), "scenario", sc.Name)
	logger.Debug("starting scenario", "actors", len(plans))

	r := &run{
		reg:     reg,
		loop:    reg.Loop(),
		pending: len(plans),
		doneCh:  make(chan []Event, 1),
	}

	err = r.loop.Post(func() {
		r.start = time.Now()
		for _, p := range plans {
			// actors starting together request in declaration order
			if p.at == 0 {
				r.request(p)
				continue
			}

			r.loop.AfterFunc(p.at, func() {
				r.request(p)
			})
		}
	})
	if err != nil {
		return Timeline{}, fmt.Errorf("%v: %w", sc.Name, err)
	}

	select {
	case tl.Events = <-r.doneCh:
		logger.Debug("scenario done", "events", len(tl.Events))

		return tl, nil
	case <-ctx.Done():
		_ = r.loop.Post(r.abort)

		return Timeline{}, fmt.Errorf("%v: %w", sc.Name, context.Cause(ctx))
	}
}

func (r *run) state(a Actor) *rwlock.State {
	if a.Default || a.Key == "" {
		return r.reg.Default()
	}

	return r.reg.Get(a.Key)
}

func (r *run) record(p plan, s *rwlock.State, typ EventType) {
	r.recordOccupancy(p, s, typ, s.Occupancy())
}

func (r *run) recordOccupancy(p plan, s *rwlock.State, typ EventType, occupancy int) {
	r.events = append(r.events, Event{
		Elapsed:   time.Since(r.start),
		Actor:     p.actor.Name,
		Lock:      s.Name(),
		Kind:      p.kind,
		Type:      typ,
		Occupancy: occupancy,
	})
}

func (r *run) finish() {
	r.pending--
	if r.pending == 0 {
		r.doneCh <- r.events
	}
}

func (r *run) abort() {
	for _, req := range r.requests {
		req.Cancel()
	}
}

func (r *run) request(p plan) {
	s := r.state(p.actor)

	var opts []rwlock.Option
	if p.hasTimeout {
		opts = append(opts,
			rwlock.WithTimeout(p.timeout),
			rwlock.WithTimeoutCallback(func() {
				r.record(p, s, EventTimeout)
				r.finish()
			}),
		)
	}

	r.record(p, s, EventRequested)

	cb := func(l *rwlock.Lease) {
		r.record(p, s, EventGranted)

		// Release grants the next waiters synchronously, the release has to
		// be on the timeline before them.
		release := func() {
			occupancy := 0
			if p.kind == rwlock.KindRead {
				occupancy = s.Occupancy() - 1
			}
			r.recordOccupancy(p, s, EventReleased, occupancy)

			l.Release()
			r.finish()
		}

		if p.hold == 0 {
			release()
			return
		}

		r.loop.AfterFunc(p.hold, release)
	}

	var req *rwlock.Request
	if p.kind == rwlock.KindWrite {
		req = s.AcquireWrite(cb, opts...)
	} else {
		req = s.AcquireRead(cb, opts...)
	}
	r.requests = append(r.requests, req)
}
