package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jyotchat-be/pkg/events"
	"jyotchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokens yields toks, optionally waiting on gate before reporting EOF,
// then returns failWith (or io.EOF).
type fakeTokens struct {
	toks     []string
	i        int
	delay    time.Duration
	gate     <-chan struct{}
	failWith error
	closed   atomic.Bool
	closeCh  chan struct{}
}

func newFakeTokens(toks ...string) *fakeTokens {
	return &fakeTokens{toks: toks, closeCh: make(chan struct{})}
}

func (f *fakeTokens) Next() (string, error) {
	if f.closed.Load() {
		return "", errors.New("closed")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-f.closeCh:
			return "", errors.New("closed")
		}
	}
	if f.i < len(f.toks) {
		t := f.toks[f.i]
		f.i++
		return t, nil
	}
	if f.failWith != nil {
		return "", f.failWith
	}
	if f.gate != nil {
		<-f.gate
	}
	return "", io.EOF
}

func (f *fakeTokens) Close() error {
	if f.closed.CompareAndSwap(false, true) {
		close(f.closeCh)
	}
	return nil
}

func collect(t *testing.T, fs *FrameStream) ([]Frame, error) {
	t.Helper()
	var frames []Frame
	for {
		f, err := fs.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}

func split(frames []Frame) (texts, titles []string, sources int) {
	for _, f := range frames {
		switch f.Kind {
		case KindText:
			texts = append(texts, f.Text)
		case KindEvent:
			titles = append(titles, f.Title)
		case KindSources:
			sources++
		}
	}
	return
}

func TestMultiplexPreservesPerSourceOrder(t *testing.T) {
	toks := []string{"The ", "answer ", "is ", "42", "."}
	titles := []string{"Retrieving context", "Found 2 sources", "Calling tool", "Tool done"}

	emitted := make(chan struct{})
	tokens := newFakeTokens(toks...)
	tokens.delay = time.Millisecond
	tokens.gate = emitted

	sink := NewEventSink()
	go func() {
		for _, title := range titles {
			sink.OnEvent(events.NewProgress(events.KindRetrieve, title))
			time.Sleep(time.Millisecond)
		}
		close(emitted)
	}()

	evidence := []store.Evidence{{ID: "n1", Text: "ctx"}}
	fs := Multiplex(context.Background(), tokens, sink, evidence, nil)
	frames, err := collect(t, fs)
	require.NoError(t, err)

	gotTexts, gotTitles, sources := split(frames)
	assert.Equal(t, toks, gotTexts)
	assert.Equal(t, titles, gotTitles)
	assert.Equal(t, 1, sources)

	last := frames[len(frames)-1]
	assert.Equal(t, KindSources, last.Kind)
	assert.Equal(t, evidence, last.Sources)

	assert.Equal(t, strings.Join(toks, ""), fs.Answer())
	assert.True(t, fs.Completed())
	assert.False(t, fs.Cancelled())
}

func TestMultiplexWithoutEvents(t *testing.T) {
	fs := Multiplex(context.Background(), newFakeTokens("a", "b"), NewEventSink(), nil, nil)
	frames, err := collect(t, fs)
	require.NoError(t, err)

	require.Len(t, frames, 3)
	assert.Equal(t, KindSources, frames[2].Kind)
	assert.Equal(t, "ab", fs.Answer())

	// Exhausted streams keep reporting EOF.
	_, err = fs.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestMultiplexCancellationSuppressesSources(t *testing.T) {
	toks := make([]string, 100)
	for i := range toks {
		toks[i] = "x"
	}
	tokens := newFakeTokens(toks...)

	const limit = 5
	var pulled int
	fs := Multiplex(context.Background(), tokens, NewEventSink(), []store.Evidence{{ID: "n1"}}, func() bool {
		return pulled >= limit
	})

	var frames []Frame
	for {
		f, err := fs.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		frames = append(frames, f)
		pulled++
	}

	assert.LessOrEqual(t, len(frames), limit+1)
	_, _, sources := split(frames)
	assert.Zero(t, sources)
	assert.True(t, fs.Cancelled())
	assert.False(t, fs.Completed())
	assert.Eventually(t, tokens.closed.Load, time.Second, 5*time.Millisecond)
}

func TestMultiplexParentContextCancels(t *testing.T) {
	tokens := newFakeTokens("a", "b", "c")
	tokens.delay = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	fs := Multiplex(ctx, tokens, NewEventSink(), nil, nil)
	cancel()

	frames, err := collect(t, fs)
	require.NoError(t, err)
	_, _, sources := split(frames)
	assert.Zero(t, sources)
	assert.True(t, fs.Cancelled())
}

func TestMultiplexTokenFailureStopsStream(t *testing.T) {
	boom := errors.New("engine exploded")
	tokens := newFakeTokens("partial ")
	tokens.failWith = boom

	sink := NewEventSink()
	fs := Multiplex(context.Background(), tokens, sink, []store.Evidence{{ID: "n1"}}, nil)

	frames, err := collect(t, fs)
	require.ErrorIs(t, err, boom)

	_, _, sources := split(frames)
	assert.Zero(t, sources)

	_, again := fs.Next()
	assert.ErrorIs(t, again, boom)
	assert.True(t, sink.Done(), "event source must be stopped on failure")
	assert.False(t, fs.Completed())
}

func TestMultiplexCloseBeforeCompletion(t *testing.T) {
	tokens := newFakeTokens("a", "b", "c")
	tokens.delay = 20 * time.Millisecond

	fs := Multiplex(context.Background(), tokens, NewEventSink(), []store.Evidence{{ID: "n1"}}, nil)
	require.NoError(t, fs.Close())

	frames, err := collect(t, fs)
	require.NoError(t, err)
	_, _, sources := split(frames)
	assert.Zero(t, sources)
}
