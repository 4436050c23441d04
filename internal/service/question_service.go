package service

import (
	"context"
	"errors"

	"interview-practice-be/internal/dto"
	"interview-practice-be/pkg/catalog"
)

var ErrQuestionNotFound = errors.New("question not found")

type IQuestionService interface {
	GetAll(ctx context.Context) ([]*dto.QuestionSummaryResponse, error)
	Show(ctx context.Context, id int) (*dto.QuestionDetailResponse, error)
	Templates(ctx context.Context) map[string]string
}

type questionService struct {
	catalog *catalog.Catalog
}

func NewQuestionService(c *catalog.Catalog) IQuestionService {
	return &questionService{catalog: c}
}

func toSummary(q catalog.Question) dto.QuestionSummaryResponse {
	return dto.QuestionSummaryResponse{
		Id:           q.Id,
		Title:        q.Title,
		Description:  q.Description,
		Difficulty:   q.Difficulty,
		Category:     q.Category,
		Template:     q.Template,
		TemplateName: catalog.TemplateName(q.Template),
	}
}

func (s *questionService) GetAll(ctx context.Context) ([]*dto.QuestionSummaryResponse, error) {
	questions := s.catalog.Questions()
	res := make([]*dto.QuestionSummaryResponse, 0, len(questions))
	for _, q := range questions {
		summary := toSummary(q)
		res = append(res, &summary)
	}
	return res, nil
}

func (s *questionService) Show(ctx context.Context, id int) (*dto.QuestionDetailResponse, error) {
	q, err := s.catalog.Find(id)
	if err != nil {
		if errors.Is(err, catalog.ErrQuestionNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &dto.QuestionDetailResponse{
		QuestionSummaryResponse: toSummary(q),
		StarterCode:             q.StarterFiles(),
	}, nil
}

func (s *questionService) Templates(ctx context.Context) map[string]string {
	return catalog.Templates()
}
