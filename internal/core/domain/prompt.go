package domain

// DocumentExcerpt is a budget-selected slice of one extracted block,
// labeled with its provenance for the prompt.
type DocumentExcerpt struct {
	SourceID  string    `json:"source_id"`
	Filename  string    `json:"filename"`
	Ordinal   int       `json:"ordinal"`
	Kind      BlockKind `json:"kind"`
	Text      string    `json:"text"`
	Truncated bool      `json:"truncated"`
}

// BudgetedContext is computed per request and never persisted. Its total
// size by the metric in effect never exceeds Budget.
type BudgetedContext struct {
	Excerpts []DocumentExcerpt  `json:"excerpts"`
	Turns    []ConversationTurn `json:"turns"`

	Budget       int `json:"budget"`
	FixedCost    int `json:"fixed_cost"`
	DocumentCost int `json:"document_cost"`
	HistoryCost  int `json:"history_cost"`
}

func (c *BudgetedContext) TotalCost() int {
	return c.FixedCost + c.DocumentCost + c.HistoryCost
}

type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// PromptPayload is the fully assembled, already-budgeted request body for
// the external model. No truncation happens after assembly.
type PromptPayload struct {
	Messages []PromptMessage `json:"messages"`
}

type ConverseOptions struct {
	// Budget overrides the configured prompt budget when positive.
	Budget int
	// Model overrides the default model id when non-empty; it must be
	// present in the configured catalog.
	Model string
}

type ChatResult struct {
	Payload PromptPayload   `json:"payload"`
	Context BudgetedContext `json:"context"`
	Reply   string          `json:"reply"`
	Model   string          `json:"model"`
}
