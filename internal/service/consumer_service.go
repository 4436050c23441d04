package service

import (
	"context"
	"encoding/json"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// SubmissionNotifier pushes recorded submissions to live viewers of a session.
type SubmissionNotifier interface {
	NotifySubmission(msg dto.SubmissionRecordedMessage)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	auditLogger logger.ILogger
	notifier    SubmissionNotifier
	logger      logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	auditLogger logger.ILogger,
	notifier SubmissionNotifier,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		auditLogger: auditLogger,
		notifier:    notifier,
		logger:      log,
	}
}

// Consume subscribes to the topic and handles messages on a background
// goroutine until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.SubmissionRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal submission event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Nothing to retry for an undecodable payload.
		msg.Ack()
		return
	}

	cs.auditLogger.Info("Audit", "Submission recorded", map[string]interface{}{
		"session_id":       payload.SessionId,
		"question_id":      payload.QuestionId,
		"filename":         payload.Filename,
		"is_new_file":      payload.IsNewFile,
		"submission_count": payload.SubmissionCount,
		"occurred_at":      payload.OccurredAt,
	})

	if cs.notifier != nil {
		cs.notifier.NotifySubmission(payload)
	}

	msg.Ack()
}
