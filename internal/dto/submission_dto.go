package dto

import "interview-practice-be/internal/entity"

type SubmitQuestionRequest struct {
	SessionId           string            `json:"sessionId" validate:"sessionid"`
	QuestionId          int               `json:"questionId" validate:"required"`
	QuestionTitle       string            `json:"questionTitle"`
	QuestionDescription string            `json:"questionDescription"`
	Template            string            `json:"template"`
	Submitted           bool              `json:"submitted"`
	SubmissionDate      string            `json:"submissionDate"`
	Files               entity.FileMap    `json:"files"`
}

func (r *SubmitQuestionRequest) ToRecord() entity.SubmissionRecord {
	return entity.SubmissionRecord{
		QuestionId:          r.QuestionId,
		QuestionTitle:       r.QuestionTitle,
		QuestionDescription: r.QuestionDescription,
		Template:            r.Template,
		Submitted:           r.Submitted,
		SubmissionDate:      r.SubmissionDate,
		Files:               r.Files,
	}
}

type SubmitQuestionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Filename  string `json:"filename,omitempty"`
	IsNewFile bool   `json:"isNewFile"`
}

type SessionDocumentResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Data    *entity.SessionDocument `json:"data,omitempty"`
}

// SubmissionRecordedMessage is the payload of the SUBMISSION_RECORDED event.
type SubmissionRecordedMessage struct {
	SessionId       string `json:"sessionId"`
	QuestionId      int    `json:"questionId"`
	Filename        string `json:"filename"`
	IsNewFile       bool   `json:"isNewFile"`
	SubmissionCount int    `json:"submissionCount"`
	OccurredAt      string `json:"occurredAt"`
}
