package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jyotchat-be/internal/dto"
	"jyotchat-be/internal/pkg/logger"
	"jyotchat-be/pkg/events"
	"jyotchat-be/pkg/nats"
	"jyotchat-be/pkg/transcript"

	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	nackDelay   = 2 * time.Second
	etlDurable  = "transcript-etl"
	retryNotice = "ETL failed, message will be redelivered"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	etlService ITranscriptEtlService
	logger     logger.ILogger
}

// NewConsumerService loads transcripts announced on the in-process queue.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	etlService ITranscriptEtlService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		etlService: etlService,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TranscriptCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.SessionKey == "" {
		cs.logger.Error("ETL_CONSUMER", "Dropping malformed trigger", map[string]interface{}{
			"message_id": msg.UUID,
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	res, err := cs.etlService.Process(ctx, payload.SessionKey)
	if err != nil {
		if errors.Is(err, transcript.ErrInvalidSessionKey) {
			cs.logger.Error("ETL_CONSUMER", "Dropping trigger with invalid session key", map[string]interface{}{
				"message_id": msg.UUID,
			})
			msg.Ack()
			return
		}
		cs.logger.Warn("ETL_CONSUMER", retryNotice, map[string]interface{}{
			"session_key": payload.SessionKey,
			"error":       err.Error(),
		})
		// gochannel redelivers a nacked message at once.
		select {
		case <-time.After(nackDelay):
		case <-ctx.Done():
		}
		msg.Nack()
		return
	}

	cs.logger.Debug("ETL_CONSUMER", "Trigger processed", map[string]interface{}{
		"session_key": payload.SessionKey,
		"rows":        res.Rows,
	})
	msg.Ack()
}

type natsConsumerService struct {
	subscriber *nats.Subscriber
	etlService ITranscriptEtlService
	logger     logger.ILogger
}

// NewNatsConsumerService loads transcripts announced on JetStream.
func NewNatsConsumerService(subscriber *nats.Subscriber, etlService ITranscriptEtlService, logger logger.ILogger) IConsumerService {
	return &natsConsumerService{
		subscriber: subscriber,
		etlService: etlService,
		logger:     logger,
	}
}

func (cs *natsConsumerService) Consume(ctx context.Context) error {
	return cs.subscriber.Subscribe(ctx, nats.Subject(events.TypeTranscriptCompleted), etlDurable, cs.handle)
}

func (cs *natsConsumerService) handle(ctx context.Context, event events.Event) error {
	sessionKey, _ := event.Payload()["session_key"].(string)
	if sessionKey == "" {
		cs.logger.Error("ETL_CONSUMER", "Dropping trigger without session key", nil)
		return nil
	}

	_, err := cs.etlService.Process(ctx, sessionKey)
	if errors.Is(err, transcript.ErrInvalidSessionKey) {
		return nil
	}
	return err
}
