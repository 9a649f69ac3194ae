package api

// CreateAgentRequest is the body of POST /agents.
type CreateAgentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	Type        string `json:"type"`
	IsPublic    bool   `json:"is_public"`
}

// AgentResponse is what POST /agents returns.
type AgentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsPublic    bool   `json:"is_public"`
	Version     int    `json:"version"`
}

// ExecuteWriterRequest is the body of POST /agents/execute/writer.
type ExecuteWriterRequest struct {
	AgentID            string `json:"agent_id"`
	Model              string `json:"model"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	ContestDescription string `json:"contest_description"`
	Force              bool   `json:"force"`
}

// ExecuteJudgeRequest is the body of POST /agents/execute/judge.
type ExecuteJudgeRequest struct {
	AgentID   string `json:"agent_id"`
	Model     string `json:"model"`
	ContestID string `json:"contest_id"`
	Force     bool   `json:"force"`
}

// ExecutionResponse reports the outcome of one agent invocation (spec §6).
type ExecutionResponse struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ResultID     string `json:"result_id,omitempty"`
	CreditsUsed  int64  `json:"credits_used"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// VoteCreate is one entry of the replace-all body of POST /contests/{id}/votes.
type VoteCreate struct {
	TextID    string `json:"text_id"`
	TextPlace *int   `json:"text_place,omitempty"`
	Comment   string `json:"comment"`
	IsAIVote  bool   `json:"is_ai_vote"`
}

// VotesResponse is the result of a replace-all vote submission.
type VotesResponse struct {
	VotesWritten  int   `json:"votes_written"`
	HasVoted      bool  `json:"has_voted"`
	ContestClosed bool  `json:"contest_closed"`
	CreditsUsed   int64 `json:"credits_used,omitempty"`
}

// TransactionResponse is one row of GET /admin/credits/transactions.
type TransactionResponse struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Amount      int64   `json:"amount"`
	Kind        string  `json:"kind"`
	Description string  `json:"description"`
	Model       string  `json:"model,omitempty"`
	Tokens      int     `json:"tokens,omitempty"`
	RealCostUSD float64 `json:"real_cost_usd,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// UsageSummaryResponse is the shape of GET /admin/credits/usage.
type UsageSummaryResponse struct {
	TotalCreditsUsed int64            `json:"total_credits_used"`
	ByModel          map[string]int64 `json:"by_model"`
	ByUser           map[string]int64 `json:"by_user"`
	TotalTokens      int64            `json:"total_tokens"`
	TotalRealCostUSD float64          `json:"total_real_cost_usd"`
}

// AdjustCreditsRequest is the body of PATCH /admin/users/{id}/credits.
type AdjustCreditsRequest struct {
	Amount int64 `json:"amount"`
}

// HealthResponse is the shape of GET /health.
type HealthResponse struct {
	Status  string        `json:"status"`
	Catalog int           `json:"catalog_models"`
	Watch   *WatchdogStat `json:"watchdog,omitempty"`
}

// WatchdogStat surfaces the watchdog's last sweep on the health endpoint.
type WatchdogStat struct {
	LastScan       string `json:"last_scan,omitempty"`
	TotalRecovered int    `json:"total_recovered"`
}
