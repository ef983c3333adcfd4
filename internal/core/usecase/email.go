package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/inklyn/docchat/internal/core/budget"
	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/core/prompt"
)

const (
	writeEmailInstructions = "You are a professional email writing assistant."
	replyEmailInstructions = "You are a professional email reply assistant."
)

type EmailUseCase struct {
	sessions     ports.SessionStore
	budgeter     *budget.Budgeter
	model        ports.ChatModel
	defaultModel string
	catalog      map[string]struct{}
}

func NewEmailUseCase(
	sessions ports.SessionStore,
	budgeter *budget.Budgeter,
	model ports.ChatModel,
	defaultModel string,
	modelCatalog []string,
) *EmailUseCase {
	catalog := make(map[string]struct{}, len(modelCatalog)+1)
	catalog[defaultModel] = struct{}{}
	for _, id := range modelCatalog {
		catalog[id] = struct{}{}
	}
	return &EmailUseCase{
		sessions:     sessions,
		budgeter:     budgeter,
		model:        model,
		defaultModel: defaultModel,
		catalog:      catalog,
	}
}

// DraftEmail drafts a new email or a reply against the session's document
// context. The chat history is excluded from the payload, and the draft is
// not appended to it either; drafting is a side channel over the same
// documents and collaborator.
func (uc *EmailUseCase) DraftEmail(ctx context.Context, sessionID string, req domain.EmailRequest) (*domain.EmailDraft, error) {
	instructions, request, err := emailPrompt(req)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = uc.defaultModel
	}
	if _, ok := uc.catalog[model]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "draft email", fmt.Errorf("model %q is not in the catalog", model))
	}

	snap, err := uc.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot session: %w", err)
	}
	// Document context only: with no turns the budgeter hands the whole
	// remainder to the documents.
	snap.Turns = nil

	bc, err := uc.budgeter.Build(snap, instructions, request, req.Budget)
	if err != nil {
		return nil, err
	}

	payload := prompt.Assemble(instructions, bc, request)

	draft, err := uc.model.Complete(ctx, payload, model)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	return &domain.EmailDraft{Draft: draft, Model: model, Context: *bc}, nil
}

// emailPrompt validates the request and renders the per-mode system
// instructions and user request text.
func emailPrompt(req domain.EmailRequest) (instructions, request string, err error) {
	switch req.Mode {
	case domain.EmailModeWrite:
		requirements := strings.TrimSpace(req.Requirements)
		if requirements == "" {
			return "", "", domain.WrapError(domain.ErrInvalidInput, "draft email", fmt.Errorf("requirements are required for write mode"))
		}
		var sb strings.Builder
		sb.WriteString("Please help me write a professional email based on the following:\n\n")
		sb.WriteString("Requirements: ")
		sb.WriteString(requirements)
		sb.WriteString("\n\nPlease provide:\n")
		sb.WriteString("1. Subject line\n")
		sb.WriteString("2. Professional email body\n")
		sb.WriteString("3. Appropriate greeting and closing\n\n")
		sb.WriteString("Make it clear, professional, and well-structured.")
		return writeEmailInstructions, sb.String(), nil

	case domain.EmailModeReply:
		original := strings.TrimSpace(req.OriginalEmail)
		if original == "" {
			return "", "", domain.WrapError(domain.ErrInvalidInput, "draft email", fmt.Errorf("original_email is required for reply mode"))
		}
		var sb strings.Builder
		sb.WriteString("Please help me write a professional reply to this email:\n\n")
		sb.WriteString("Original Email:\n")
		sb.WriteString(original)
		if extra := strings.TrimSpace(req.Instructions); extra != "" {
			sb.WriteString("\n\nAdditional instructions: ")
			sb.WriteString(extra)
		}
		sb.WriteString("\n\nPlease write an appropriate professional reply.")
		return replyEmailInstructions, sb.String(), nil

	default:
		return "", "", domain.WrapError(domain.ErrInvalidInput, "draft email", fmt.Errorf("mode %q is not supported", req.Mode))
	}
}
