package repository

import (
	"context"
	"errors"

	"github.com/essaypilot/essaypilot/internal/essay"
)

var ErrNotFound = errors.New("essay not found")

// Repository provides persistence for essays and their analyses.
// Implementations must return ListByOwner results ordered by most recent
// update first, and DeleteEssay must cascade to the essay's analyses.
type Repository interface {
	CreateEssay(ctx context.Context, e *essay.Essay) (string, error)
	GetEssay(ctx context.Context, id string) (*essay.Essay, error)
	ListByOwner(ctx context.Context, userID string) ([]*essay.Essay, error)
	UpdateEssay(ctx context.Context, e *essay.Essay) error
	DeleteEssay(ctx context.Context, id string) error

	InsertAnalysis(ctx context.Context, a *essay.Analysis) (string, error)
	LatestAnalysis(ctx context.Context, essayID string) (*essay.Analysis, error)
}
