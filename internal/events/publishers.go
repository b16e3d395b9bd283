package events

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// LogPublisher writes events to the log. It is the fallback when no bus is configured.
type LogPublisher struct {
	log hclog.Logger
}

func NewLogPublisher(logger hclog.Logger) *LogPublisher {
	return &LogPublisher{log: logger}
}

func (p *LogPublisher) Publish(_ context.Context, ev Event) error {
	args := []interface{}{"type", ev.Type, "match", ev.Match.ID, "status", ev.Match.Status}
	if ev.Actor != "" {
		args = append(args, "actor", ev.Actor)
	}
	if ev.Round != nil {
		args = append(args, "round", ev.Round.Number, "outcome", ev.Round.Outcome)
	}
	p.log.Info("event", args...)
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Fanout delivers every event to all publishers, even if some fail.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs *multierror.Error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (f Fanout) Close() error {
	var errs *multierror.Error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Recorder keeps published events in memory. Used by transport tests and
// handy for local debugging.
type Recorder struct {
	ch chan Event
}

func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Event, size)}
}

// Publish blocks while the buffer is full until ctx is done.
func (r *Recorder) Publish(ctx context.Context, ev Event) error {
	select {
	case r.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) Close() error { return nil }

// Events drains what has been recorded so far.
func (r *Recorder) Events() []Event {
	var out []Event
	for {
		select {
		case ev := <-r.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
