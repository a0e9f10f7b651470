package transcript

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/pkg/store"
)

const (
	logExt        = ".log"
	processingDir = "processing"
	rejectedDir   = "rejected"
	lockStripes   = 64
)

var (
	ErrInvalidSessionKey = errors.New("transcript: invalid session key")

	validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Logger owns the per-session transcript files under one directory:
//
//	<dir>/<key>.log                       live log, appended once per turn
//	<dir>/processing/<key>.<nanos>.log    batches claimed for loading
//	<dir>/rejected/<key>.<nanos>.log      fragments that never formed a record
//
// Appends and claims of the same session are serialized, so a batch never
// contains half of a record written concurrently.
//
// Callers must still run at most one turn per session at a time; the logger
// does not order two turns of the same session.
type Logger struct {
	dir   string
	log   logger.ILogger
	now   func() time.Time
	locks [lockStripes]sync.Mutex
	seq   atomic.Int64
}

func NewLogger(dir string, log logger.ILogger) (*Logger, error) {
	for _, d := range []string{dir, filepath.Join(dir, processingDir), filepath.Join(dir, rejectedDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("transcript: create %s: %w", d, err)
		}
	}
	return &Logger{
		dir: dir,
		log: log,
		now: time.Now,
	}, nil
}

func (l *Logger) lock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.locks[h.Sum32()%lockStripes]
}

// Path returns the live log of a session.
func (l *Logger) Path(sessionKey string) string {
	return filepath.Join(l.dir, sessionKey+logExt)
}

// AppendTurn writes one complete record, terminal marker included, with a
// single append so that a reader never sees a partial turn it could mistake
// for a finished one.
func (l *Logger) AppendTurn(sessionKey, query string, evidence []store.Evidence, answer string) error {
	if !validKey.MatchString(sessionKey) {
		return ErrInvalidSessionKey
	}
	record := Render(l.now(), query, evidence, answer)

	mu := l.lock(sessionKey)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(l.Path(sessionKey), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("transcript: open log: %w", err)
	}
	if _, err := f.Write(record); err != nil {
		f.Close()
		return fmt.Errorf("transcript: append turn: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("transcript: close log: %w", err)
	}

	l.log.Debug("TRANSCRIPT", "Turn appended", map[string]interface{}{
		"session_key": sessionKey,
		"bytes":       len(record),
		"evidence":    len(evidence),
	})
	return nil
}

// ClearIfNonEmpty leaves the live log empty before a new turn starts. Residual
// content (left behind when a load never ran) is claimed for loading rather
// than thrown away. It reports whether anything was moved aside.
func (l *Logger) ClearIfNonEmpty(sessionKey string) (bool, error) {
	batch, err := l.Claim(sessionKey)
	if err != nil {
		return false, err
	}
	if batch != "" {
		l.log.Warn("TRANSCRIPT", "Residual transcript claimed before new turn", map[string]interface{}{
			"session_key": sessionKey,
			"batch":       filepath.Base(batch),
		})
	}
	return batch != "", nil
}

// Claim moves the live log into the processing area and returns the batch
// path. It returns "" when there is no live log or it is empty.
func (l *Logger) Claim(sessionKey string) (string, error) {
	if !validKey.MatchString(sessionKey) {
		return "", ErrInvalidSessionKey
	}
	mu := l.lock(sessionKey)
	mu.Lock()
	defer mu.Unlock()

	live := l.Path(sessionKey)
	info, err := os.Stat(live)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("transcript: stat log: %w", err)
	}
	if info.Size() == 0 {
		if err := os.Remove(live); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("transcript: remove empty log: %w", err)
		}
		return "", nil
	}

	batch := filepath.Join(l.dir, processingDir, sessionKey+"."+strconv.FormatInt(l.nextSeq(), 10)+logExt)
	if err := os.Rename(live, batch); err != nil {
		return "", fmt.Errorf("transcript: claim log: %w", err)
	}
	return batch, nil
}

// nextSeq returns a strictly increasing batch sequence based on the clock.
func (l *Logger) nextSeq() int64 {
	for {
		last := l.seq.Load()
		next := l.now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if l.seq.CompareAndSwap(last, next) {
			return next
		}
	}
}

// Pending lists the claimed batches of a session, oldest first.
func (l *Logger) Pending(sessionKey string) ([]string, error) {
	if !validKey.MatchString(sessionKey) {
		return nil, ErrInvalidSessionKey
	}
	matches, err := filepath.Glob(filepath.Join(l.dir, processingDir, sessionKey+".*"+logExt))
	if err != nil {
		return nil, fmt.Errorf("transcript: list batches: %w", err)
	}
	sort.Slice(matches, func(i, j int) bool {
		return batchSeq(matches[i]) < batchSeq(matches[j])
	})
	return matches, nil
}

// Sessions lists every session with a live log or a claimed batch.
func (l *Logger) Sessions() ([]string, error) {
	seen := map[string]bool{}
	for _, d := range []string{l.dir, filepath.Join(l.dir, processingDir)} {
		entries, err := os.ReadDir(d)
		if err != nil {
			return nil, fmt.Errorf("transcript: read %s: %w", d, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
				continue
			}
			key, _, _ := strings.Cut(strings.TrimSuffix(e.Name(), logExt), ".")
			if validKey.MatchString(key) {
				seen[key] = true
			}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns the content of a claimed batch.
func (l *Logger) Read(batch string) (string, error) {
	b, err := os.ReadFile(batch)
	if err != nil {
		return "", fmt.Errorf("transcript: read batch: %w", err)
	}
	return string(b), nil
}

// Reject keeps fragments of a batch that never formed a record.
func (l *Logger) Reject(batch string, fragments []string) error {
	if len(fragments) == 0 {
		return nil
	}
	path := filepath.Join(l.dir, rejectedDir, filepath.Base(batch))
	if err := os.WriteFile(path, []byte(strings.Join(fragments, "\n")), 0o644); err != nil {
		return fmt.Errorf("transcript: write rejected fragments: %w", err)
	}
	return nil
}

// Remove deletes a consumed batch.
func (l *Logger) Remove(batch string) error {
	if err := os.Remove(batch); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("transcript: remove batch: %w", err)
	}
	return nil
}

// BatchID identifies a claimed batch; it is stored with the rows it produced.
func BatchID(batch string) string {
	return strings.TrimSuffix(filepath.Base(batch), logExt)
}

func batchSeq(batch string) int64 {
	id := BatchID(batch)
	i := strings.LastIndexByte(id, '.')
	if i < 0 {
		return 0
	}
	n, _ := strconv.ParseInt(id[i+1:], 10, 64)
	return n
}
