package input

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spigell/interview-prep/internal/logger"
	"go.uber.org/zap"
)

var (
	// ErrCaptureUnsupported means the host has no speech capture facility.
	ErrCaptureUnsupported = errors.New("speech capture is not supported in this environment")
	// ErrCaptureActive is returned by Start while a capture is running.
	ErrCaptureActive = errors.New("speech capture is already running")
)

// Fragment is one transcript event. Interim fragments replace each other until
// a final fragment arrives. A fragment with Err set ends the stream.
type Fragment struct {
	Text  string
	Final bool
	Err   error
}

// Capturer is the host speech capture facility. The returned channel delivers
// fragments in arrival order and is closed when capture ends on its own or
// ctx is cancelled.
type Capturer interface {
	Capture(ctx context.Context) (<-chan Fragment, error)
}

// Recorder subscribes to a Capturer and accumulates the transcript buffer.
type Recorder struct {
	capturer Capturer
	logger   *zap.Logger

	mu        sync.Mutex
	recording bool
	run       uint64
	final     []string
	interim   string
	streamErr error
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewRecorder(capturer Capturer, log *zap.Logger) *Recorder {
	return &Recorder{
		capturer: capturer,
		logger:   logger.WithFields(log, zap.String("component", "speech")),
	}
}

// Start clears the buffer and subscribes to the capture stream.
func (r *Recorder) Start(ctx context.Context) error {
	if r.capturer == nil {
		return ErrCaptureUnsupported
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording && !r.ended() {
		return ErrCaptureActive
	}
	if r.cancel != nil {
		r.cancel()
	}

	r.final = nil
	r.interim = ""
	r.streamErr = nil

	captureCtx, cancel := context.WithCancel(ctx)
	stream, err := r.capturer.Capture(captureCtx)
	if err != nil {
		cancel()
		return err
	}

	r.run++
	r.recording = true
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.consume(stream, r.run, r.done)

	r.logger.Debug("speech capture started")
	return nil
}

func (r *Recorder) consume(stream <-chan Fragment, run uint64, done chan struct{}) {
	defer close(done)

	for fragment := range stream {
		r.mu.Lock()
		if r.recording && r.run == run {
			r.apply(fragment)
		}
		r.mu.Unlock()
	}
}

// apply must be called with mu held.
func (r *Recorder) apply(f Fragment) {
	if f.Err != nil {
		r.streamErr = f.Err
		r.logger.Warn("speech capture error", zap.Error(f.Err))
		return
	}

	if f.Final {
		if text := strings.TrimSpace(f.Text); text != "" {
			r.final = append(r.final, text)
		}
		r.interim = ""
		return
	}

	r.interim = f.Text
}

// Stop unsubscribes and snapshots the buffer in one step. Fragments arriving
// afterwards are dropped. The buffer is cleared once read.
func (r *Recorder) Stop() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return ""
	}

	transcript := r.text()

	r.recording = false
	r.final = nil
	r.interim = ""
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}

	r.logger.Debug("speech capture stopped",
		zap.String("transcript_preview", logger.TruncateForLog(transcript, 80)),
	)

	return transcript
}

// Transcript returns the live view of the buffer: finalized segments followed
// by the current interim segment.
func (r *Recorder) Transcript() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.text()
}

func (r *Recorder) text() string {
	parts := append([]string(nil), r.final...)
	if interim := strings.TrimSpace(r.interim); interim != "" {
		parts = append(parts, interim)
	}
	return strings.Join(parts, " ")
}

// ended must be called with mu held.
func (r *Recorder) ended() bool {
	if r.done == nil {
		return true
	}
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Recording reports whether a capture is running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.recording
}

// Done is closed when the current capture stream ends. It is nil before the
// first Start.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.done
}

// Err returns the error reported by the current capture stream, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.streamErr
}
