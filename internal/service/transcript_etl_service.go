package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/entity"
	"jyotchat-be/internal/mapper"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/internal/repository/specification"
	"jyotchat-be/internal/repository/unitofwork"
	"jyotchat-be/pkg/transcript"
)

type ITranscriptEtlService interface {
	// Process loads every complete turn of one session. A session without a
	// transcript is a no-op, not an error.
	Process(ctx context.Context, sessionKey string) (*dto.EtlResult, error)
	// ProcessAll runs Process for every session found on disk.
	ProcessAll(ctx context.Context) (*dto.EtlResult, error)
}

type transcriptEtlService struct {
	uowFactory  unitofwork.RepositoryFactory
	transcripts *transcript.Logger
	mapper      *mapper.ChatLogMapper
	logger      logger.ILogger

	// Runs are serialized so two triggers for one session never load the
	// same batch in parallel transactions.
	mu sync.Mutex
}

func NewTranscriptEtlService(
	uowFactory unitofwork.RepositoryFactory,
	transcripts *transcript.Logger,
	logger logger.ILogger,
) ITranscriptEtlService {
	return &transcriptEtlService{
		uowFactory:  uowFactory,
		transcripts: transcripts,
		mapper:      mapper.NewChatLogMapper(),
		logger:      logger,
	}
}

type parsedBatch struct {
	path      string
	id        string
	rows      []*entity.ChatLog
	unmatched []string
}

func (s *transcriptEtlService) Process(ctx context.Context, sessionKey string) (*dto.EtlResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.process(ctx, sessionKey)
}

func (s *transcriptEtlService) ProcessAll(ctx context.Context) (*dto.EtlResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.transcripts.Sessions()
	if err != nil {
		return nil, err
	}

	total := &dto.EtlResult{}
	var firstErr error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		res, err := s.process(ctx, key)
		total.Add(res)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("session %s: %w", key, err)
		}
	}
	return total, firstErr
}

func (s *transcriptEtlService) process(ctx context.Context, sessionKey string) (*dto.EtlResult, error) {
	// 1. Hand the live log over to the processing area
	if _, err := s.transcripts.Claim(sessionKey); err != nil {
		return nil, err
	}
	paths, err := s.transcripts.Pending(sessionKey)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return &dto.EtlResult{}, nil
	}

	// 2. Parse every claimed batch
	batches := make([]*parsedBatch, 0, len(paths))
	for _, path := range paths {
		content, err := s.transcripts.Read(path)
		if err != nil {
			return nil, err
		}
		parsed := transcript.Parse(content)
		b := &parsedBatch{
			path:      path,
			id:        transcript.BatchID(path),
			unmatched: parsed.Unmatched,
		}
		for _, rec := range parsed.Records {
			b.rows = append(b.rows, s.mapper.RecordToEntity(rec, sessionKey, b.id))
		}
		batches = append(batches, b)
	}

	// 3. Load in one transaction; batches already loaded are skipped
	result, err := s.load(ctx, batches)
	if err != nil {
		s.logger.Error("TRANSCRIPT_ETL", "Load failed, batches kept for retry", map[string]interface{}{
			"session_key": sessionKey,
			"batches":     len(batches),
			"error":       err.Error(),
		})
		return nil, err
	}
	result.Sessions = 1

	// 4. Only now is it safe to let go of the files
	for _, b := range batches {
		if len(b.unmatched) > 0 {
			if err := s.transcripts.Reject(b.path, b.unmatched); err != nil {
				return result, err
			}
			result.Rejected += len(b.unmatched)
			s.logger.Warn("TRANSCRIPT_ETL", "Unmatched transcript content quarantined", map[string]interface{}{
				"session_key": sessionKey,
				"batch":       filepath.Base(b.path),
				"fragments":   len(b.unmatched),
			})
		}
		if err := s.transcripts.Remove(b.path); err != nil {
			return result, err
		}
	}

	s.logger.Info("TRANSCRIPT_ETL", "Transcript loaded", map[string]interface{}{
		"session_key": sessionKey,
		"batches":     result.Batches,
		"rows":        result.Rows,
		"skipped":     result.Skipped,
	})
	return result, nil
}

func (s *transcriptEtlService) load(ctx context.Context, batches []*parsedBatch) (*dto.EtlResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	repo := uow.ChatLogRepository()
	if err := repo.EnsureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure chat_logs: %w", err)
	}

	result := &dto.EtlResult{}
	for _, b := range batches {
		result.Batches++

		loaded, err := repo.Count(ctx, specification.ByBatchID{BatchID: b.id})
		if err != nil {
			return nil, fmt.Errorf("check batch %s: %w", b.id, err)
		}
		if loaded > 0 {
			result.Skipped++
			continue
		}

		if err := repo.CreateBulk(ctx, b.rows); err != nil {
			return nil, fmt.Errorf("insert batch %s: %w", b.id, err)
		}
		result.Rows += len(b.rows)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return result, nil
}
