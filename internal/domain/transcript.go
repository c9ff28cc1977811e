package domain

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TranscriptKind distinguishes interim recognition results from finalized ones.
type TranscriptKind string

const (
	TranscriptPartial TranscriptKind = "partial"
	TranscriptFinal   TranscriptKind = "final"
)

// TranscriptEvent is one speech recognition result.
type TranscriptEvent struct {
	Kind TranscriptKind `json:"kind"`
	Text string         `json:"text"`
}

// Recognizer produces transcript events for one listening window.
// Start may be called once; Stop must be safe to call more than once and must
// eventually close the channel returned by Start.
type Recognizer interface {
	Start(ctx Context) (<-chan TranscriptEvent, error)
	Stop() error
}

// ErrRecognizerClosed is returned when events are pushed outside a listening window.
var ErrRecognizerClosed = fmt.Errorf("%w: recognizer is not listening", ErrConflict)

// PushRecognizer is a Recognizer fed by callers, e.g. a client relaying
// results from a browser speech SDK.
type PushRecognizer struct {
	mu      sync.Mutex
	ch      chan TranscriptEvent
	quit    chan struct{}
	started bool
	stopped bool
}

// NewPushRecognizer returns a recognizer buffering up to size events.
func NewPushRecognizer(size int) *PushRecognizer {
	if size <= 0 {
		size = 64
	}
	return &PushRecognizer{ch: make(chan TranscriptEvent, size), quit: make(chan struct{})}
}

// Start opens the event stream. The stream is closed by Stop or when ctx ends.
func (r *PushRecognizer) Start(ctx Context) (<-chan TranscriptEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return nil, errors.New("recognizer already used")
	}
	r.started = true
	go func() {
		select {
		case <-ctx.Done():
			_ = r.Stop()
		case <-r.quit:
		}
	}()
	return r.ch, nil
}

// Push delivers ev to the stream without blocking.
func (r *PushRecognizer) Push(ev TranscriptEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.stopped {
		return ErrRecognizerClosed
	}
	select {
	case r.ch <- ev:
		return nil
	default:
		return fmt.Errorf("%w: transcript buffer full", ErrRateLimited)
	}
}

// Stop closes the stream. It is idempotent.
func (r *PushRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return nil
	}
	r.stopped = true
	close(r.quit)
	close(r.ch)
	return nil
}

// Capture drains a Recognizer in the background and accumulates the answer.
type Capture struct {
	rec      Recognizer
	done     chan struct{}
	mu       sync.Mutex
	finals   []string
	partial  string
	stopOnce sync.Once
	stopErr  error
}

// StartCapture starts rec and consumes its events until Stop.
// rec is stopped if it fails to start.
func StartCapture(ctx Context, rec Recognizer) (*Capture, error) {
	return ResumeCapture(ctx, rec, nil)
}

// ResumeCapture is StartCapture with finals already recorded, for reopening a
// window whose answer was never committed.
func ResumeCapture(ctx Context, rec Recognizer, finals []string) (*Capture, error) {
	events, err := rec.Start(ctx)
	if err != nil {
		_ = rec.Stop()
		return nil, fmt.Errorf("op=capture.start: %w", err)
	}
	c := &Capture{rec: rec, done: make(chan struct{}), finals: append([]string(nil), finals...)}
	go c.drain(events)
	return c, nil
}

func (c *Capture) drain(events <-chan TranscriptEvent) {
	defer close(c.done)
	for ev := range events {
		text := strings.TrimSpace(ev.Text)
		c.mu.Lock()
		switch ev.Kind {
		case TranscriptFinal:
			if text != "" {
				c.finals = append(c.finals, text)
			}
			c.partial = ""
		case TranscriptPartial:
			c.partial = text
		}
		c.mu.Unlock()
	}
}

// Stop releases the recognizer, waits for buffered events, and returns the
// space-joined finalized fragments. Safe to call more than once.
func (c *Capture) Stop() (string, error) {
	c.stopOnce.Do(func() { c.stopErr = c.rec.Stop() })
	<-c.done
	return c.Transcript(), c.stopErr
}

// Transcript returns the finalized fragments received so far.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.finals, " ")
}

// Finals returns a copy of the finalized fragments received so far.
func (c *Capture) Finals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.finals...)
}

// Partial returns the latest interim result.
func (c *Capture) Partial() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.partial
}
