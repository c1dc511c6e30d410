package repository

import (
	"context"

	"gifts-buyer/internal/domain/model"
)

// SessionRepository is the port for per-operator conversational state.
// GetSession returns (nil, nil) when the operator has no open session or it expired.
type SessionRepository interface {
	GetSession(ctx context.Context, operatorID int64) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error
	ClearSession(ctx context.Context, operatorID int64) error
}

// RangeWriter durably replaces the persisted gift ranges field with encoded in one atomic step.
type RangeWriter interface {
	WriteRanges(ctx context.Context, encoded string) error
}
