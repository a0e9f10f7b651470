package session

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResolverRejectsEmptySecret(t *testing.T) {
	_, err := NewResolver(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestResolveIsDeterministic(t *testing.T) {
	r1, err := NewResolver([]byte("app-secret"))
	require.NoError(t, err)
	r2, err := NewResolver([]byte("app-secret"))
	require.NoError(t, err)

	// A fresh resolver with the same secret stands in for a process restart.
	assert.Equal(t, r1.Resolve("10.0.0.7"), r1.Resolve("10.0.0.7"))
	assert.Equal(t, r1.Resolve("10.0.0.7"), r2.Resolve("10.0.0.7"))
}

func TestResolveHidesIdentity(t *testing.T) {
	r, err := NewResolver([]byte("app-secret"))
	require.NoError(t, err)

	key := r.Resolve("alice@example.com")
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), key)
	assert.NotContains(t, key, "alice")
}

func TestResolveDependsOnSecret(t *testing.T) {
	a, _ := NewResolver([]byte("secret-a"))
	b, _ := NewResolver([]byte("secret-b"))
	assert.NotEqual(t, a.Resolve("user-1"), b.Resolve("user-1"))
}

func TestResolveHasNoCollisionsOverSample(t *testing.T) {
	r, err := NewResolver([]byte("app-secret"))
	require.NoError(t, err)

	seen := make(map[string]string, 50000)
	for i := 0; i < 50000; i++ {
		id := fmt.Sprintf("user-%d", i)
		key := r.Resolve(id)
		if prev, ok := seen[key]; ok {
			t.Fatalf("collision between %q and %q", prev, id)
		}
		seen[key] = id
	}
}

func TestResolveLongSecret(t *testing.T) {
	long := make([]byte, 200)
	for i := range long {
		long[i] = byte(i)
	}
	r, err := NewResolver(long)
	require.NoError(t, err)
	assert.Len(t, r.Resolve("x"), 64)
}
