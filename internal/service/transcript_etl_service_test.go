package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/implementation"
	"jyotchat-be/internal/repository/specification"
	"jyotchat-be/internal/repository/unitofwork"
	"jyotchat-be/pkg/store"
	"jyotchat-be/pkg/transcript"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	sessionA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	sessionB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection, so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

type etlFixture struct {
	db          *gorm.DB
	transcripts *transcript.Logger
	dir         string
	etl         ITranscriptEtlService
}

func newEtlFixture(t *testing.T) *etlFixture {
	t.Helper()
	db := openTestDB(t)
	dir := t.TempDir()
	transcripts, err := transcript.NewLogger(dir, logger.NewNopLogger())
	require.NoError(t, err)
	return &etlFixture{
		db:          db,
		transcripts: transcripts,
		dir:         dir,
		etl:         NewTranscriptEtlService(unitofwork.NewRepositoryFactory(db), transcripts, logger.NewNopLogger()),
	}
}

func (f *etlFixture) rows(t *testing.T, sessionKey string) []*entity.ChatLog {
	t.Helper()
	logs, err := implementation.NewChatLogRepository(f.db).FindAll(context.Background(),
		specification.BySessionKey{SessionKey: sessionKey},
		specification.OrderBy{Field: "id"},
	)
	require.NoError(t, err)
	return logs
}

func appendRaw(t *testing.T, path, content string) {
	t.Helper()
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = fh.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, fh.Close())
}

func TestEtlLoadsCompleteRecordsAndQuarantinesTail(t *testing.T) {
	f := newEtlFixture(t)
	evidence := []store.Evidence{
		{Text: "Letters\n  are   signed.", Page: "3", ResourcePath: `C:\docs\standards.pdf`},
		{Text: "Second source", ResourcePath: "/srv/docs/guide.pdf"},
	}
	for _, q := range []string{"first", "second", "third"} {
		require.NoError(t, f.transcripts.AppendTurn(sessionA, q, evidence, "answer to "+q))
	}
	tail := "2024-05-01 09:00:00.000000 - User Query: crashed\n" + transcript.Separator + "\n"
	appendRaw(t, f.transcripts.Path(sessionA), tail)

	res, err := f.etl.Process(context.Background(), sessionA)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 1, res.Rejected)

	rows := f.rows(t, sessionA)
	require.Len(t, rows, 3)
	assert.Equal(t, "first", rows[0].UserQuery)
	assert.Equal(t, "answer to third", rows[2].GeneratedResponse)
	assert.True(t, rows[0].IsDefault)
	assert.Equal(t, "", rows[0].CorrectedResponse)
	assert.Equal(t, entity.ChatLogContext{Text: "Letters are signed.", PageNumber: "3", Resource: "standards.pdf"}, rows[0].Contexts[0])
	assert.Equal(t, entity.ChatLogContext{Text: "Second source", Resource: "guide.pdf"}, rows[0].Contexts[1])
	for i := 2; i < entity.ChatLogContextSlots; i++ {
		assert.Equal(t, entity.ChatLogContext{}, rows[0].Contexts[i])
	}

	// Consumed: nothing live, nothing pending, the crash fragment kept aside.
	_, err = os.Stat(f.transcripts.Path(sessionA))
	assert.True(t, os.IsNotExist(err))
	pending, err := f.transcripts.Pending(sessionA)
	require.NoError(t, err)
	assert.Empty(t, pending)

	rejected, err := filepath.Glob(filepath.Join(f.dir, "rejected", sessionA+".*.log"))
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	b, err := os.ReadFile(rejected[0])
	require.NoError(t, err)
	assert.Equal(t, tail, string(b))
}

func TestEtlWithoutTranscriptIsNoop(t *testing.T) {
	f := newEtlFixture(t)

	res, err := f.etl.Process(context.Background(), sessionA)
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.Zero(t, res.Batches)
}

func TestEtlRejectsInvalidSessionKey(t *testing.T) {
	f := newEtlFixture(t)

	_, err := f.etl.Process(context.Background(), "../../etc")
	assert.ErrorIs(t, err, transcript.ErrInvalidSessionKey)
}

func TestEtlRetryAfterCommitDoesNotDuplicate(t *testing.T) {
	f := newEtlFixture(t)
	require.NoError(t, f.transcripts.AppendTurn(sessionA, "q1", nil, "a1"))
	require.NoError(t, f.transcripts.AppendTurn(sessionA, "q2", nil, "a2"))

	batch, err := f.transcripts.Claim(sessionA)
	require.NoError(t, err)
	content, err := os.ReadFile(batch)
	require.NoError(t, err)

	res, err := f.etl.Process(context.Background(), sessionA)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	// A crash between commit and delete leaves the batch in place.
	require.NoError(t, os.WriteFile(batch, content, 0o644))

	res, err = f.etl.Process(context.Background(), sessionA)
	require.NoError(t, err)
	assert.Zero(t, res.Rows)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, f.rows(t, sessionA), 2)

	pending, err := f.transcripts.Pending(sessionA)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEtlStorageFailureKeepsBatch(t *testing.T) {
	f := newEtlFixture(t)
	require.NoError(t, f.transcripts.AppendTurn(sessionA, "q", nil, "a"))

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = f.etl.Process(context.Background(), sessionA)
	require.Error(t, err)

	pending, err := f.transcripts.Pending(sessionA)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestEtlProcessAllLoadsEverySession(t *testing.T) {
	f := newEtlFixture(t)
	require.NoError(t, f.transcripts.AppendTurn(sessionA, "qa", nil, "aa"))
	require.NoError(t, f.transcripts.AppendTurn(sessionB, "qb", nil, "ab"))
	// An orphaned batch from an earlier run.
	require.NoError(t, f.transcripts.AppendTurn(sessionB, "qb0", nil, "ab0"))
	_, err := f.transcripts.Claim(sessionB)
	require.NoError(t, err)
	require.NoError(t, f.transcripts.AppendTurn(sessionB, "qb1", nil, "ab1"))

	res, err := f.etl.ProcessAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sessions)
	assert.Equal(t, 3, res.Batches)
	assert.Equal(t, 4, res.Rows)

	assert.Len(t, f.rows(t, sessionA), 1)
	assert.Len(t, f.rows(t, sessionB), 3)
}
