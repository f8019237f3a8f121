// Package exercise manages the exercise catalog shared between templates
// seeded from fixtures or the wger importer and user-created entries.
package exercise

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/yuin/goldmark"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
)

var (
	ErrNotFound     = errors.NewSentinel("exercise: not found")
	ErrNameTaken    = errors.NewSentinel("exercise: name already exists")
	ErrInvalidInput = errors.NewSentinel("exercise: invalid input")
)

// Service provides catalog operations.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// List returns exercises visible to the user narrowed by the filter.
func (s *Service) List(ctx context.Context, userID int64, filter Filter) ([]Exercise, error) {
	exercises, err := s.repo.listVisible(ctx, userID, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list exercises", slog.Int64("user_id", userID))
	}
	return exercises, nil
}

// Get returns a single exercise visible to the user.
func (s *Service) Get(ctx context.Context, userID, exerciseID int64) (Exercise, error) {
	return s.repo.get(ctx, userID, exerciseID)
}

// Create adds a user-owned exercise to the catalog.
func (s *Service) Create(ctx context.Context, userID int64, ex Exercise) (Exercise, error) {
	if err := validate(&ex); err != nil {
		return Exercise{}, err
	}
	taken, err := s.repo.exists(ctx, ex.Name)
	if err != nil {
		return Exercise{}, errors.Wrap(err, "check exercise name")
	}
	if taken {
		return Exercise{}, ErrNameTaken
	}

	ex.IsTemplate = false
	ex.CreatedBy = &userID
	id, err := s.repo.insert(ctx, ex)
	if err != nil {
		return Exercise{}, errors.Wrap(err, "insert exercise", slog.String("name", ex.Name))
	}
	return s.repo.get(ctx, userID, id)
}

// Update overwrites a user-owned exercise. Template exercises are immutable
// through the API.
func (s *Service) Update(ctx context.Context, userID int64, ex Exercise) (Exercise, error) {
	if err := validate(&ex); err != nil {
		return Exercise{}, err
	}
	if err := s.repo.update(ctx, userID, ex); err != nil {
		return Exercise{}, err
	}
	return s.repo.get(ctx, userID, ex.ID)
}

// Delete removes a user-owned exercise.
func (s *Service) Delete(ctx context.Context, userID, exerciseID int64) error {
	return s.repo.remove(ctx, userID, exerciseID)
}

// insertTemplate is used by the importer to add shared template exercises.
func (s *Service) insertTemplate(ctx context.Context, ex Exercise) error {
	ex.IsTemplate = true
	ex.CreatedBy = nil
	if _, err := s.repo.insert(ctx, ex); err != nil {
		return errors.Wrap(err, "insert template exercise", slog.String("name", ex.Name))
	}
	return nil
}

func validate(ex *Exercise) error {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return errors.Wrap(ErrInvalidInput, "name must not be empty")
	}
	if ex.Category == "" {
		ex.Category = CategoryStrength
	}
	if !ex.Category.Valid() {
		return errors.Wrap(ErrInvalidInput, "unknown category", slog.String("category", string(ex.Category)))
	}
	if ex.Difficulty == "" {
		ex.Difficulty = DifficultyBeginner
	}
	if !ex.Difficulty.Valid() {
		return errors.Wrap(ErrInvalidInput, "unknown difficulty", slog.String("difficulty", string(ex.Difficulty)))
	}
	return nil
}

// RenderInstructions converts instruction markdown to HTML for the detail
// endpoint.
func RenderInstructions(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "convert markdown")
	}
	return buf.String(), nil
}
