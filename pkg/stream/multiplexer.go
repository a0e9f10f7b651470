package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"jyotchat-be/pkg/events"
	"jyotchat-be/pkg/store"
)

// TokenSource is a pull-based sequence of answer tokens. Next returns io.EOF
// after the last token. Close may be called concurrently with a blocked Next
// and must make it return.
type TokenSource interface {
	Next() (string, error)
	Close() error
}

type tokenItem struct {
	text string
	err  error
}

// FrameStream merges a token source and an event sink into one sequence of
// frames. Text and event frames interleave in whatever order their sources
// produce them; each source keeps its own order. A single sources frame
// closes a stream that was neither cancelled nor failed.
//
// FrameStream is not safe for concurrent use by multiple consumers.
type FrameStream struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	tokens      TokenSource
	sink        *EventSink
	evidence    []store.Evidence
	isCancelled func() bool

	textCh  chan tokenItem
	eventCh chan events.Progress

	answer    strings.Builder
	err       error
	finished  bool
	cancelled bool
	closeOnce sync.Once
}

// Multiplex starts pulling from tokens and sink. isCancelled is polled before
// every frame is handed out; when it reports true (or ctx ends) the stream
// stops both sources and ends without a sources frame. A nil isCancelled
// never cancels.
func Multiplex(
	ctx context.Context,
	tokens TokenSource,
	sink *EventSink,
	evidence []store.Evidence,
	isCancelled func() bool,
) *FrameStream {
	if isCancelled == nil {
		isCancelled = func() bool { return false }
	}
	inner, cancel := context.WithCancel(ctx)
	fs := &FrameStream{
		parent:      ctx,
		ctx:         inner,
		cancel:      cancel,
		tokens:      tokens,
		sink:        sink,
		evidence:    evidence,
		isCancelled: isCancelled,
		textCh:      make(chan tokenItem),
		eventCh:     make(chan events.Progress),
	}
	go fs.pumpTokens()
	go fs.pumpEvents()
	return fs
}

func (fs *FrameStream) pumpTokens() {
	defer close(fs.textCh)
	for {
		tok, err := fs.tokens.Next()
		if errors.Is(err, io.EOF) {
			// Generation is exhausted, so no further progress events can arrive.
			fs.sink.MarkDone()
			return
		}
		item := tokenItem{text: tok, err: err}
		select {
		case fs.textCh <- item:
		case <-fs.ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

func (fs *FrameStream) pumpEvents() {
	defer close(fs.eventCh)
	for {
		ev, err := fs.sink.Next(fs.ctx)
		if err != nil {
			return
		}
		select {
		case fs.eventCh <- ev:
		case <-fs.ctx.Done():
			return
		}
	}
}

// Next returns the next frame. It returns io.EOF when the stream is over
// (normally or by cancellation) and a non-nil error when the token source
// failed; once an error is returned every later call returns it too.
func (fs *FrameStream) Next() (Frame, error) {
	if fs.err != nil {
		return Frame{}, fs.err
	}
	if fs.finished {
		return Frame{}, io.EOF
	}

	for {
		if fs.textCh == nil && fs.eventCh == nil {
			if fs.stopIfCancelled() || fs.closedEarly() {
				return Frame{}, io.EOF
			}
			fs.finished = true
			fs.Close()
			return SourcesFrame(fs.evidence), nil
		}

		select {
		case <-fs.parent.Done():
			fs.stopIfCancelled()
			return Frame{}, io.EOF

		case item, ok := <-fs.textCh:
			if !ok {
				fs.textCh = nil
				continue
			}
			if item.err != nil {
				if fs.closedEarly() {
					return Frame{}, io.EOF
				}
				fs.err = fmt.Errorf("stream: token source: %w", item.err)
				fs.Close()
				return Frame{}, fs.err
			}
			if fs.stopIfCancelled() {
				return Frame{}, io.EOF
			}
			fs.answer.WriteString(item.text)
			return TextFrame(item.text), nil

		case ev, ok := <-fs.eventCh:
			if !ok {
				fs.eventCh = nil
				continue
			}
			if fs.stopIfCancelled() {
				return Frame{}, io.EOF
			}
			return EventFrame(ev.Title()), nil
		}
	}
}

func (fs *FrameStream) stopIfCancelled() bool {
	if fs.cancelled {
		return true
	}
	if !fs.isCancelled() && fs.parent.Err() == nil {
		return false
	}
	fs.cancelled = true
	fs.finished = true
	fs.Close()
	return true
}

// closedEarly reports a Close that happened before the stream completed; the
// pumps then exit without draining, so no sources frame may follow.
func (fs *FrameStream) closedEarly() bool {
	if fs.ctx.Err() == nil {
		return false
	}
	fs.cancelled = true
	fs.finished = true
	return true
}

// Answer returns the concatenation of every text frame handed out so far.
func (fs *FrameStream) Answer() string {
	return fs.answer.String()
}

// Evidence returns the evidence list carried by the sources frame.
func (fs *FrameStream) Evidence() []store.Evidence {
	return fs.evidence
}

// Cancelled reports whether the stream ended because of cancellation.
func (fs *FrameStream) Cancelled() bool {
	return fs.cancelled
}

// Completed reports whether the sources frame has been produced.
func (fs *FrameStream) Completed() bool {
	return fs.finished && !fs.cancelled && fs.err == nil
}

// Close stops both pumps and releases the token source. Safe to call more
// than once and from any goroutine.
func (fs *FrameStream) Close() error {
	var err error
	fs.closeOnce.Do(func() {
		fs.cancel()
		fs.sink.MarkDone()
		err = fs.tokens.Close()
	})
	return err
}
