package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"jyotchat-be/pkg/stream"
)

const generationFailedMessage = "An error occurred while generating the answer"

// FlushWriter is a buffered client connection; a failed Flush means the
// client has gone away.
type FlushWriter interface {
	io.Writer
	Flush() error
}

// Turn is one streamed answer in flight.
type Turn struct {
	SessionKey string
	Query      string

	svc     *chatService
	frames  *stream.FrameStream
	cancel  context.CancelFunc
	release func()

	disconnected atomic.Bool
	closeOnce    sync.Once
}

// Disconnected reports whether a write to the client has failed.
func (t *Turn) Disconnected() bool {
	return t.disconnected.Load()
}

// Run streams every frame to w and, if the stream completes, records the
// turn. It returns the generation error, if any; client disconnects are not
// errors.
func (t *Turn) Run(w FlushWriter) error {
	defer t.Close()

	enc := stream.NewEncoder(w)
	for {
		frame, err := t.frames.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.svc.logger.Error("CHAT", "Generation failed", map[string]interface{}{
				"session_key": t.SessionKey,
				"error":       err.Error(),
			})
			if !t.Disconnected() {
				if enc.EncodeError(generationFailedMessage) == nil {
					w.Flush()
				}
			}
			return err
		}

		if err := enc.Encode(frame); err != nil {
			t.disconnected.Store(true)
			continue
		}
		if err := w.Flush(); err != nil {
			t.disconnected.Store(true)
		}
	}

	if !t.frames.Completed() {
		t.svc.logger.Info("CHAT", "Turn abandoned by client", map[string]interface{}{
			"session_key":  t.SessionKey,
			"answer_bytes": len(t.frames.Answer()),
		})
		return nil
	}

	if err := t.svc.recordTurn(context.Background(), t.SessionKey, t.Query, t.frames.Evidence(), t.frames.Answer()); err != nil {
		t.svc.logger.Error("CHAT", "Failed to record turn", map[string]interface{}{
			"session_key": t.SessionKey,
			"error":       err.Error(),
		})
	}
	return nil
}

// Close abandons the turn and frees the session. Safe to call more than once.
func (t *Turn) Close() {
	t.closeOnce.Do(func() {
		t.frames.Close()
		t.cancel()
		t.release()
	})
}
