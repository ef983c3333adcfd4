package usecase

import (
	"context"
	"fmt"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
)

// SessionUseCase exposes session lifecycle to the adapters. It never
// creates a session implicitly on behalf of another operation.
type SessionUseCase struct {
	sessions ports.SessionStore
}

func NewSessionUseCase(sessions ports.SessionStore) *SessionUseCase {
	return &SessionUseCase{sessions: sessions}
}

func (uc *SessionUseCase) StartSession(ctx context.Context) (*domain.Session, error) {
	sess, err := uc.sessions.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (uc *SessionUseCase) EndSession(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (uc *SessionUseCase) SessionSnapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := uc.sessions.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot session: %w", err)
	}
	return sess, nil
}
