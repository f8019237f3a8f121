// Package workoutlog records performed workouts and computes the dashboard
// statistics derived from them.
package workoutlog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
)

var (
	ErrNotFound     = errors.NewSentinel("workoutlog: not found")
	ErrInvalidInput = errors.NewSentinel("workoutlog: invalid input")
)

const (
	minDifficultyRating = 1
	maxDifficultyRating = 10
	topExerciseCount    = 5
)

// Service provides workout log operations.
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

// Create validates and stores a workout log.
func (s *Service) Create(ctx context.Context, userID int64, log Log) (Log, error) {
	if err := s.validate(ctx, userID, &log); err != nil {
		return Log{}, err
	}
	id, err := s.repo.insert(ctx, userID, log)
	if err != nil {
		return Log{}, errors.Wrap(err, "insert workout log", slog.Int64("user_id", userID))
	}
	return s.repo.get(ctx, userID, id)
}

// Update overwrites a workout log owned by the user.
func (s *Service) Update(ctx context.Context, userID int64, log Log) (Log, error) {
	if err := s.validate(ctx, userID, &log); err != nil {
		return Log{}, err
	}
	if err := s.repo.update(ctx, userID, log); err != nil {
		return Log{}, err
	}
	return s.repo.get(ctx, userID, log.ID)
}

// Delete removes a workout log owned by the user.
func (s *Service) Delete(ctx context.Context, userID, logID int64) error {
	return s.repo.remove(ctx, userID, logID)
}

// Get returns a single workout log owned by the user.
func (s *Service) Get(ctx context.Context, userID, logID int64) (Log, error) {
	return s.repo.get(ctx, userID, logID)
}

// List returns the user's logs since the given date, newest first. A zero
// since value returns everything.
func (s *Service) List(ctx context.Context, userID int64, since time.Time) ([]Log, error) {
	logs, err := s.repo.list(ctx, userID, since)
	if err != nil {
		return nil, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}
	return logs, nil
}

func (s *Service) validate(ctx context.Context, userID int64, log *Log) error {
	if log.Date.IsZero() {
		log.Date = time.Now()
	}
	if log.SetsCompleted < 0 {
		return errors.Wrap(ErrInvalidInput, "sets_completed must not be negative")
	}
	if len(log.Reps) != log.SetsCompleted {
		return errors.Wrap(ErrInvalidInput, "reps length must equal sets_completed",
			slog.Int("sets_completed", log.SetsCompleted), slog.Int("reps", len(log.Reps)))
	}
	if log.DifficultyRating != nil &&
		(*log.DifficultyRating < minDifficultyRating || *log.DifficultyRating > maxDifficultyRating) {
		return errors.Wrap(ErrInvalidInput, "difficulty_rating must be between 1 and 10")
	}

	visible, err := s.repo.exerciseVisible(ctx, userID, log.ExerciseID)
	if err != nil {
		return errors.Wrap(err, "check exercise visibility")
	}
	if !visible {
		return errors.Wrap(ErrInvalidInput, "unknown exercise", slog.Int64("exercise_id", log.ExerciseID))
	}
	return nil
}

// Stats summarizes the user's full history: workout count, set count, and
// the five most performed exercises.
func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	logs, err := s.repo.list(ctx, userID, time.Time{})
	if err != nil {
		return Stats{}, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}

	stats := Stats{TotalWorkouts: len(logs)}
	counts := make(map[int64]*ExerciseCount)
	for _, log := range logs {
		stats.TotalSets += log.SetsCompleted
		if entry, ok := counts[log.ExerciseID]; ok {
			entry.Count++
		} else {
			counts[log.ExerciseID] = &ExerciseCount{
				ExerciseID:   log.ExerciseID,
				ExerciseName: log.ExerciseName,
				Count:        1,
			}
		}
	}

	top := make([]ExerciseCount, 0, len(counts))
	for _, entry := range counts {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].ExerciseName < top[j].ExerciseName
	})
	if len(top) > topExerciseCount {
		top = top[:topExerciseCount]
	}
	stats.TopExercises = top
	return stats, nil
}
