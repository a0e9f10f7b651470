package service

import (
	"context"
	"encoding/json"
	"time"

	"jyotchat-be/internal/dto"
	"jyotchat-be/pkg/events"
	"jyotchat-be/pkg/nats"
)

// ITranscriptPublisher announces that a session transcript gained a
// complete turn and should be loaded.
type ITranscriptPublisher interface {
	PublishCompleted(ctx context.Context, sessionKey string) error
}

type transcriptPublisher struct {
	publisherService IPublisherService
}

// NewTranscriptPublisher publishes on the in-process queue.
func NewTranscriptPublisher(publisherService IPublisherService) ITranscriptPublisher {
	return &transcriptPublisher{publisherService: publisherService}
}

func (p *transcriptPublisher) PublishCompleted(ctx context.Context, sessionKey string) error {
	msgJson, err := json.Marshal(dto.TranscriptCompletedMessage{
		SessionKey:  sessionKey,
		CompletedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return p.publisherService.Publish(ctx, msgJson)
}

type natsTranscriptPublisher struct {
	publisher *nats.Publisher
}

// NewNatsTranscriptPublisher publishes on JetStream so an ETL worker in
// another process can pick the session up.
func NewNatsTranscriptPublisher(publisher *nats.Publisher) ITranscriptPublisher {
	return &natsTranscriptPublisher{publisher: publisher}
}

func (p *natsTranscriptPublisher) PublishCompleted(ctx context.Context, sessionKey string) error {
	return p.publisher.Publish(ctx, events.NewTranscriptCompleted(sessionKey))
}
