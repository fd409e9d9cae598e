package interview

// Record is one past interview row from the backend's /dashboard endpoint.
// The backend stores whatever its database holds, so only the fields the
// dashboard actually renders are typed and everything else is ignored.
type Record struct {
	ID           int64  `json:"id,omitempty"`
	UserQuestion string `json:"user_question,omitempty"`
	AIResponse   string `json:"ai_response,omitempty"`
	Score        Score  `json:"score"`
	CreatedAt    string `json:"created_at,omitempty"`
}
