package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/pkg/events"
)

var (
	ErrMissingSessionID  = errors.New("no session ID provided")
	ErrInvalidSessionID  = errors.New("invalid session ID")
	ErrMissingQuestionID = errors.New("no question ID provided")
	ErrSessionNotFound   = errors.New("session not found")
)

// EventPublisher is satisfied by *nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ISubmissionService interface {
	Record(ctx context.Context, req *dto.SubmitQuestionRequest) (*dto.SubmitQuestionResponse, error)
	GetSession(ctx context.Context, sessionId string) (*entity.SessionDocument, error)
}

type submissionService struct {
	repository       contract.SessionDocumentRepository
	publisherService IPublisherService
	eventPublisher   EventPublisher
	logger           logger.ILogger
	now              func() time.Time
}

// NewSubmissionService wires the ledger. publisherService and eventPublisher
// may be nil.
func NewSubmissionService(
	repository contract.SessionDocumentRepository,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) ISubmissionService {
	return &submissionService{
		repository:       repository,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		now:              time.Now,
	}
}

func validateSessionID(sessionId string) error {
	if sessionId == "" {
		return ErrMissingSessionID
	}
	if !serverutils.IsValidSessionID(sessionId) {
		return ErrInvalidSessionID
	}
	return nil
}

func (s *submissionService) Record(ctx context.Context, req *dto.SubmitQuestionRequest) (*dto.SubmitQuestionResponse, error) {
	if err := validateSessionID(req.SessionId); err != nil {
		return nil, err
	}
	if req.QuestionId == 0 {
		return nil, ErrMissingQuestionID
	}

	record := req.ToRecord()
	doc, err := s.repository.Mutate(ctx, req.SessionId, func(current *entity.SessionDocument) (*entity.SessionDocument, error) {
		now := s.now()
		if current == nil {
			current = entity.NewSessionDocument(req.SessionId, now)
		}
		current.Upsert(record, now)
		return current, nil
	})
	if err != nil {
		s.logger.Error("Ledger", "Failed to save submission", map[string]interface{}{
			"session_id":  req.SessionId,
			"question_id": req.QuestionId,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("save submission: %w", err)
	}

	filename := entity.DocumentFilename(req.SessionId)
	isNewFile := doc.SubmissionCount() == 1

	s.logger.Info("Ledger", "Submission saved", map[string]interface{}{
		"session_id":       req.SessionId,
		"question_id":      req.QuestionId,
		"submission_count": doc.SubmissionCount(),
		"is_new_file":      isNewFile,
	})

	s.publish(ctx, req.SessionId, req.QuestionId, filename, isNewFile, doc.SubmissionCount())

	return &dto.SubmitQuestionResponse{
		Success:   true,
		Message:   "Submission saved successfully",
		Filename:  filename,
		IsNewFile: isNewFile,
	}, nil
}

func (s *submissionService) GetSession(ctx context.Context, sessionId string) (*entity.SessionDocument, error) {
	if err := validateSessionID(sessionId); err != nil {
		return nil, err
	}

	doc, err := s.repository.FindBySessionId(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrSessionNotFound
	}
	return doc, nil
}

// publish never fails the request; the document is already persisted.
func (s *submissionService) publish(ctx context.Context, sessionId string, questionId int, filename string, isNewFile bool, count int) {
	at := s.now()

	if s.publisherService != nil {
		msg := dto.SubmissionRecordedMessage{
			SessionId:       sessionId,
			QuestionId:      questionId,
			Filename:        filename,
			IsNewFile:       isNewFile,
			SubmissionCount: count,
			OccurredAt:      entity.FormatTimestamp(at),
		}
		payload, err := json.Marshal(msg)
		if err == nil {
			err = s.publisherService.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Warn("Ledger", "Failed to publish submission event", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewSubmissionRecorded(sessionId, questionId, filename, isNewFile, count, at)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Ledger", "Failed to publish SUBMISSION_RECORDED to NATS", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}
}
