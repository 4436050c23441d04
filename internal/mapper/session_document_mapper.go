package mapper

import (
	"encoding/json"
	"fmt"

	"interview-practice-be/internal/entity"
	"interview-practice-be/internal/model"

	"gorm.io/datatypes"
)

type SessionDocumentMapper struct{}

func NewSessionDocumentMapper() *SessionDocumentMapper {
	return &SessionDocumentMapper{}
}

func (m *SessionDocumentMapper) ToEntity(s *model.SessionDocument) (*entity.SessionDocument, error) {
	if s == nil {
		return nil, nil
	}

	submissions := make(map[string]entity.SubmissionRecord)
	if len(s.Submissions) > 0 {
		if err := json.Unmarshal(s.Submissions, &submissions); err != nil {
			return nil, fmt.Errorf("decode submissions of %s: %w", s.SessionId, err)
		}
	}

	var extra map[string]json.RawMessage
	if len(s.Extra) > 0 {
		if err := json.Unmarshal(s.Extra, &extra); err != nil {
			return nil, fmt.Errorf("decode extra fields of %s: %w", s.SessionId, err)
		}
	}

	return &entity.SessionDocument{
		SessionId:   s.SessionId,
		StartTime:   s.StartTime,
		LastUpdated: s.LastUpdated,
		Submissions: submissions,
		Extra:       extra,
	}, nil
}

func (m *SessionDocumentMapper) ToModel(d *entity.SessionDocument) (*model.SessionDocument, error) {
	if d == nil {
		return nil, nil
	}

	submissions := d.Submissions
	if submissions == nil {
		submissions = map[string]entity.SubmissionRecord{}
	}
	raw, err := json.Marshal(submissions)
	if err != nil {
		return nil, fmt.Errorf("encode submissions of %s: %w", d.SessionId, err)
	}

	var extra datatypes.JSON
	if len(d.Extra) > 0 {
		if extra, err = json.Marshal(d.Extra); err != nil {
			return nil, fmt.Errorf("encode extra fields of %s: %w", d.SessionId, err)
		}
	}

	return &model.SessionDocument{
		SessionId:   d.SessionId,
		StartTime:   d.StartTime,
		LastUpdated: d.LastUpdated,
		Submissions: datatypes.JSON(raw),
		Extra:       extra,
	}, nil
}
