package service

import (
	"context"
	"errors"
	"strings"

	"github.com/essaypilot/essaypilot/internal/essay"
	"github.com/essaypilot/essaypilot/internal/essay/repository"
	"github.com/essaypilot/essaypilot/pkg/logger"
)

var (
	ErrNotFound   = errors.New("essay not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

// Archiver stores a copy of an essay's content before it is overwritten.
// Optional; a nil Archiver disables archiving.
type Archiver interface {
	Save(ctx context.Context, essayID, content string) error
}

// UpdateInput carries a partial update. Nil fields are left untouched; a
// TargetUniversity explicitly set to an empty string clears the field.
type UpdateInput struct {
	Title            *string
	Content          *string
	TargetUniversity *string
}

// Service implements owner-scoped essay operations.
type Service struct {
	repo    repository.Repository
	archive Archiver
}

func New(repo repository.Repository, archive Archiver) *Service {
	return &Service{repo: repo, archive: archive}
}

// List returns the caller's essays, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]*essay.Essay, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Create persists a new essay owned by the caller. Title must be non-empty
// after trimming; content defaults to the empty string.
func (s *Service) Create(ctx context.Context, userID, title, content string) (*essay.Essay, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation
	}
	e := &essay.Essay{
		UserID:  userID,
		Title:   title,
		Content: content,
	}
	if _, err := s.repo.CreateEssay(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the essay and its most recent analysis (nil when none exists).
func (s *Service) Get(ctx context.Context, userID, id string) (*essay.Essay, *essay.Analysis, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	latest, err := s.repo.LatestAnalysis(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return e, latest, nil
}

// Update applies the supplied fields to an owned essay. The previous content
// is archived first when an archiver is configured and the content changes.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput) (*essay.Essay, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if t := strings.TrimSpace(*in.Title); t != "" {
			e.Title = t
		}
	}
	if in.Content != nil && *in.Content != e.Content {
		if s.archive != nil {
			// archiving is best-effort; a failed upload must not block the save
			if err := s.archive.Save(ctx, e.ID, e.Content); err != nil {
				logger.Warnf("failed to archive essay %s revision: %v", e.ID, err)
			}
		}
		e.Content = *in.Content
	}
	if in.TargetUniversity != nil {
		if t := strings.TrimSpace(*in.TargetUniversity); t != "" {
			e.TargetUniversity = &t
		} else {
			e.TargetUniversity = nil
		}
	}
	if err := s.repo.UpdateEssay(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes an owned essay and all of its analyses.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.DeleteEssay(ctx, id)
}

// SaveAnalysis records an analysis result against an owned essay.
func (s *Service) SaveAnalysis(ctx context.Context, userID string, a *essay.Analysis) (*essay.Analysis, error) {
	if _, err := s.owned(ctx, userID, a.EssayID); err != nil {
		return nil, err
	}
	if _, err := s.repo.InsertAnalysis(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// owned loads an essay and verifies the caller is its owner.
func (s *Service) owned(ctx context.Context, userID, id string) (*essay.Essay, error) {
	e, err := s.repo.GetEssay(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.UserID != userID {
		return nil, ErrForbidden
	}
	return e, nil
}
