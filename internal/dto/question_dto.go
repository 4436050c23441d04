package dto

type QuestionSummaryResponse struct {
	Id           int    `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Difficulty   string `json:"difficulty"`
	Category     string `json:"category"`
	Template     string `json:"template"`
	TemplateName string `json:"templateName"`
}

type QuestionDetailResponse struct {
	QuestionSummaryResponse
	StarterCode map[string]string `json:"starterCode"`
}
