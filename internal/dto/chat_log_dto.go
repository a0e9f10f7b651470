package dto

type ChatLogContextResponse struct {
	Text       string `json:"text"`
	PageNumber string `json:"page_number"`
	Resource   string `json:"resource"`
}

// ChatLogResponse is one loaded turn, including its curation fields.
type ChatLogResponse struct {
	Id                int64                    `json:"id"`
	Timestamp         string                   `json:"timestamp"`
	UserQuery         string                   `json:"user_query"`
	Contexts          []ChatLogContextResponse `json:"contexts"`
	GeneratedResponse string                   `json:"generated_response"`
	IsDefault         bool                     `json:"is_default"`
	CorrectedResponse string                   `json:"corrected_response"`
}

type ChatLogPage struct {
	Items    []*ChatLogResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
