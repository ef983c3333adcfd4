package domain

// EmailMode selects the drafting flow: composing a new email or replying
// to a received one.
type EmailMode string

const (
	EmailModeWrite EmailMode = "write"
	EmailModeReply EmailMode = "reply"
)

// EmailRequest describes one drafting call. Requirements drives write
// mode; OriginalEmail drives reply mode, with Instructions optional.
type EmailRequest struct {
	Mode          EmailMode `json:"mode"`
	Requirements  string    `json:"requirements"`
	OriginalEmail string    `json:"original_email"`
	Instructions  string    `json:"instructions"`

	Model  string `json:"model"`
	Budget int    `json:"budget"`
}

// EmailDraft is the collaborator's draft plus the budget accounting for
// the document context that backed it. Drafts are not recorded as
// conversation turns.
type EmailDraft struct {
	Draft   string          `json:"draft"`
	Model   string          `json:"model"`
	Context BudgetedContext `json:"context"`
}
