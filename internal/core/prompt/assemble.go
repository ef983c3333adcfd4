// Package prompt formats an already-budgeted context into the final
// request payload. No truncation logic lives here: by contract the input
// fits the budget.
package prompt

import (
	"fmt"
	"strings"

	"github.com/inklyn/docchat/internal/core/domain"
)

// DocumentContextHeader introduces the excerpt list inside the system
// message. The budgeter charges it against the document allocation, so it
// must stay in sync with systemContent.
const DocumentContextHeader = "\n\nContext from uploaded documents:\n"

// Assemble concatenates in fixed order: system instructions with labeled
// document excerpts, history turns, then the user query.
func Assemble(systemInstructions string, bc *domain.BudgetedContext, userQuery string) domain.PromptPayload {
	messages := make([]domain.PromptMessage, 0, len(bc.Turns)+2)
	messages = append(messages, domain.PromptMessage{
		Role:    "system",
		Content: systemContent(systemInstructions, bc.Excerpts),
	})
	for _, turn := range bc.Turns {
		messages = append(messages, domain.PromptMessage{
			Role:    turn.Role,
			Content: turn.Text,
		})
	}
	messages = append(messages, domain.PromptMessage{
		Role:    domain.RoleUser,
		Content: userQuery,
	})
	return domain.PromptPayload{Messages: messages}
}

func systemContent(instructions string, excerpts []domain.DocumentExcerpt) string {
	if len(excerpts) == 0 {
		return instructions
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString(DocumentContextHeader)
	for _, e := range excerpts {
		fmt.Fprintf(&sb, "[%s #%d %s]\n%s\n", e.Filename, e.Ordinal, e.Kind, e.Text)
	}
	return sb.String()
}
