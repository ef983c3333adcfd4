package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/inklyn/docchat/internal/core/budget"
	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/core/prompt"
)

type ConverseUseCase struct {
	sessions     ports.SessionStore
	budgeter     *budget.Budgeter
	model        ports.ChatModel
	instructions string
	defaultModel string
	catalog      map[string]struct{}
}

func NewConverseUseCase(
	sessions ports.SessionStore,
	budgeter *budget.Budgeter,
	model ports.ChatModel,
	systemInstructions string,
	defaultModel string,
	modelCatalog []string,
) *ConverseUseCase {
	catalog := make(map[string]struct{}, len(modelCatalog)+1)
	catalog[defaultModel] = struct{}{}
	for _, id := range modelCatalog {
		catalog[id] = struct{}{}
	}
	return &ConverseUseCase{
		sessions:     sessions,
		budgeter:     budgeter,
		model:        model,
		instructions: systemInstructions,
		defaultModel: defaultModel,
		catalog:      catalog,
	}
}

// Converse runs one chat turn: snapshot the session, budget and assemble
// the prompt, call the collaborator, then append both turns. Budgeting
// failures are fatal for this turn only; the history stays intact.
func (uc *ConverseUseCase) Converse(ctx context.Context, sessionID, userQuery string, opts domain.ConverseOptions) (*domain.ChatResult, error) {
	userQuery = strings.TrimSpace(userQuery)
	if userQuery == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "converse", fmt.Errorf("query is required"))
	}

	model := opts.Model
	if model == "" {
		model = uc.defaultModel
	}
	if _, ok := uc.catalog[model]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "converse", fmt.Errorf("model %q is not in the catalog", model))
	}

	// Snapshot is taken under the session lock; budgeting and assembly run
	// on the copy without holding it, so they never block ingestion.
	snap, err := uc.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot session: %w", err)
	}

	bc, err := uc.budgeter.Build(snap, uc.instructions, userQuery, opts.Budget)
	if err != nil {
		return nil, err
	}

	payload := prompt.Assemble(uc.instructions, bc, userQuery)

	reply, err := uc.model.Complete(ctx, payload, model)
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	now := time.Now().UTC()
	if err := uc.sessions.AppendTurn(ctx, sessionID, domain.ConversationTurn{
		Role:         domain.RoleUser,
		Text:         userQuery,
		Timestamp:    now,
		ApproxTokens: uc.budgeter.SizeOf(userQuery),
	}); err != nil {
		return nil, fmt.Errorf("append user turn: %w", err)
	}
	if err := uc.sessions.AppendTurn(ctx, sessionID, domain.ConversationTurn{
		Role:         domain.RoleAssistant,
		Text:         reply,
		Timestamp:    now,
		ApproxTokens: uc.budgeter.SizeOf(reply),
	}); err != nil {
		return nil, fmt.Errorf("append assistant turn: %w", err)
	}

	return &domain.ChatResult{Payload: payload, Context: *bc, Reply: reply, Model: model}, nil
}
