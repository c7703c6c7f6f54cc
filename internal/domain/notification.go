package domain

// Notification данные для внешнего слоя уведомлений, форматирование не наше
type Notification struct {
	TeamId        string    `json:"team_id"`
	ReviewerId    string    `json:"reviewer_id"`
	ReviewerName  string    `json:"reviewer_name"`
	ReviewerEmail string    `json:"reviewer_email"`
	PrUrl         *string   `json:"pr_url,omitempty"`
	Assigner      *ActionBy `json:"assigner,omitempty"`
	Forced        bool      `json:"forced"`
}
