package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
const keyB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(t.TempDir(), logger.NewNopLogger())
	require.NoError(t, err)
	l.now = func() time.Time { return turnTime }
	return l
}

func TestAppendTurnWritesCompleteRecords(t *testing.T) {
	l := newTestLogger(t)

	require.NoError(t, l.AppendTurn(keyA, "q1", []store.Evidence{{Text: "e1"}}, "a1"))
	require.NoError(t, l.AppendTurn(keyA, "q2", nil, "a2"))

	b, err := os.ReadFile(l.Path(keyA))
	require.NoError(t, err)

	res := Parse(string(b))
	require.Len(t, res.Records, 2)
	assert.Equal(t, "q1", res.Records[0].Query)
	assert.Equal(t, "a2", res.Records[1].Response)
	assert.True(t, strings.HasSuffix(string(b), terminalMarker))
}

func TestAppendTurnRejectsUnsafeKey(t *testing.T) {
	l := newTestLogger(t)
	assert.ErrorIs(t, l.AppendTurn("../etc/passwd", "q", nil, "a"), ErrInvalidSessionKey)
}

func TestAppendTurnConcurrentSessions(t *testing.T) {
	l := newTestLogger(t)

	var wg sync.WaitGroup
	for _, key := range []string{keyA, keyB} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				assert.NoError(t, l.AppendTurn(key, "q", nil, "a"))
			}
		}(key)
	}
	wg.Wait()

	for _, key := range []string{keyA, keyB} {
		b, err := os.ReadFile(l.Path(key))
		require.NoError(t, err)
		res := Parse(string(b))
		assert.Len(t, res.Records, 20)
		assert.Empty(t, res.Unmatched)
	}
}

func TestClaimMovesLiveLog(t *testing.T) {
	l := newTestLogger(t)
	require.NoError(t, l.AppendTurn(keyA, "q", nil, "a"))

	batch, err := l.Claim(keyA)
	require.NoError(t, err)
	require.NotEmpty(t, batch)

	_, err = os.Stat(l.Path(keyA))
	assert.True(t, os.IsNotExist(err))

	pending, err := l.Pending(keyA)
	require.NoError(t, err)
	assert.Equal(t, []string{batch}, pending)
	assert.True(t, strings.HasPrefix(BatchID(batch), keyA+"."))

	content, err := l.Read(batch)
	require.NoError(t, err)
	assert.Len(t, Parse(content).Records, 1)
}

func TestClaimWithoutLog(t *testing.T) {
	l := newTestLogger(t)
	batch, err := l.Claim(keyA)
	require.NoError(t, err)
	assert.Empty(t, batch)
}

func TestClaimRemovesEmptyLog(t *testing.T) {
	l := newTestLogger(t)
	require.NoError(t, os.WriteFile(l.Path(keyA), nil, 0o644))

	batch, err := l.Claim(keyA)
	require.NoError(t, err)
	assert.Empty(t, batch)
	_, err = os.Stat(l.Path(keyA))
	assert.True(t, os.IsNotExist(err))
}

func TestPendingIsOrderedAndUniqueWithFrozenClock(t *testing.T) {
	l := newTestLogger(t)

	var claimed []string
	for i := 0; i < 3; i++ {
		require.NoError(t, l.AppendTurn(keyA, "q", nil, "a"))
		batch, err := l.Claim(keyA)
		require.NoError(t, err)
		claimed = append(claimed, batch)
	}

	pending, err := l.Pending(keyA)
	require.NoError(t, err)
	assert.Equal(t, claimed, pending)
}

func TestClearIfNonEmpty(t *testing.T) {
	l := newTestLogger(t)

	moved, err := l.ClearIfNonEmpty(keyA)
	require.NoError(t, err)
	assert.False(t, moved)

	require.NoError(t, l.AppendTurn(keyA, "q", nil, "a"))
	moved, err = l.ClearIfNonEmpty(keyA)
	require.NoError(t, err)
	assert.True(t, moved)

	info, err := os.Stat(l.Path(keyA))
	if err == nil {
		assert.Zero(t, info.Size())
	}

	// Residual content is kept for loading, not discarded.
	pending, err := l.Pending(keyA)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSessionsListsLiveAndPending(t *testing.T) {
	l := newTestLogger(t)
	require.NoError(t, l.AppendTurn(keyA, "q", nil, "a"))
	require.NoError(t, l.AppendTurn(keyB, "q", nil, "a"))
	_, err := l.Claim(keyB)
	require.NoError(t, err)

	keys, err := l.Sessions()
	require.NoError(t, err)
	assert.Equal(t, []string{keyA, keyB}, keys)
}

func TestRejectAndRemove(t *testing.T) {
	l := newTestLogger(t)
	require.NoError(t, l.AppendTurn(keyA, "q", nil, "a"))
	batch, err := l.Claim(keyA)
	require.NoError(t, err)

	require.NoError(t, l.Reject(batch, []string{"partial"}))
	require.NoError(t, l.Remove(batch))
	require.NoError(t, l.Remove(batch)) // already gone

	rejected, err := os.ReadFile(filepath.Join(l.dir, rejectedDir, filepath.Base(batch)))
	require.NoError(t, err)
	assert.Equal(t, "partial", string(rejected))

	pending, err := l.Pending(keyA)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
