package workoutlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
)

const dateFormat = time.DateOnly

// sqliteRepository handles database operations for workout logs.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// insert creates a workout log row and returns its ID.
func (r *sqliteRepository) insert(ctx context.Context, userID int64, log Log) (int64, error) {
	repsJSON, err := json.Marshal(log.Reps)
	if err != nil {
		return 0, fmt.Errorf("marshal reps: %w", err)
	}
	var weightsJSON *string
	if log.WeightsKg != nil {
		raw, marshalErr := json.Marshal(log.WeightsKg)
		if marshalErr != nil {
			return 0, fmt.Errorf("marshal weights: %w", marshalErr)
		}
		s := string(raw)
		weightsJSON = &s
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_logs (
			user_id, exercise_id, workout_date, sets_completed, reps, weights_kg,
			duration_seconds, distance_km, notes, difficulty_rating
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, log.ExerciseID, log.Date.Format(dateFormat), log.SetsCompleted,
		string(repsJSON), weightsJSON, log.DurationSeconds, log.DistanceKm,
		log.Notes, log.DifficultyRating)
	if err != nil {
		return 0, fmt.Errorf("insert workout log: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// update overwrites a workout log owned by the user.
func (r *sqliteRepository) update(ctx context.Context, userID int64, log Log) error {
	repsJSON, err := json.Marshal(log.Reps)
	if err != nil {
		return fmt.Errorf("marshal reps: %w", err)
	}
	var weightsJSON *string
	if log.WeightsKg != nil {
		raw, marshalErr := json.Marshal(log.WeightsKg)
		if marshalErr != nil {
			return fmt.Errorf("marshal weights: %w", marshalErr)
		}
		s := string(raw)
		weightsJSON = &s
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE workout_logs
		SET exercise_id = ?, workout_date = ?, sets_completed = ?, reps = ?, weights_kg = ?,
		    duration_seconds = ?, distance_km = ?, notes = ?, difficulty_rating = ?
		WHERE id = ? AND user_id = ?`,
		log.ExerciseID, log.Date.Format(dateFormat), log.SetsCompleted, string(repsJSON),
		weightsJSON, log.DurationSeconds, log.DistanceKm, log.Notes, log.DifficultyRating,
		log.ID, userID)
	if err != nil {
		return fmt.Errorf("update workout log: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// remove deletes a workout log owned by the user.
func (r *sqliteRepository) remove(ctx context.Context, userID, logID int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM workout_logs WHERE id = ? AND user_id = ?`, logID, userID)
	if err != nil {
		return fmt.Errorf("delete workout log: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// get returns a single workout log owned by the user.
func (r *sqliteRepository) get(ctx context.Context, userID, logID int64) (Log, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT wl.id, wl.exercise_id, e.name, wl.workout_date, wl.sets_completed,
		       wl.reps, wl.weights_kg, wl.duration_seconds, wl.distance_km,
		       wl.notes, wl.difficulty_rating
		FROM workout_logs wl
		JOIN exercises e ON e.id = wl.exercise_id
		WHERE wl.id = ? AND wl.user_id = ?`, logID, userID)
	log, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Log{}, ErrNotFound
	}
	if err != nil {
		return Log{}, err
	}
	return log, nil
}

// list returns the user's workout logs since the given date, newest first.
// A zero since value returns the full history.
func (r *sqliteRepository) list(ctx context.Context, userID int64, since time.Time) ([]Log, error) {
	query := `
		SELECT wl.id, wl.exercise_id, e.name, wl.workout_date, wl.sets_completed,
		       wl.reps, wl.weights_kg, wl.duration_seconds, wl.distance_km,
		       wl.notes, wl.difficulty_rating
		FROM workout_logs wl
		JOIN exercises e ON e.id = wl.exercise_id
		WHERE wl.user_id = ?`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND wl.workout_date >= ?`
		args = append(args, since.Format(dateFormat))
	}
	query += ` ORDER BY wl.workout_date DESC, wl.id DESC`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workout logs: %w", err)
	}
	defer rows.Close()

	var logs []Log
	for rows.Next() {
		log, scanErr := scanLog(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		logs = append(logs, log)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout log rows: %w", err)
	}
	return logs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (Log, error) {
	var (
		log         Log
		dateStr     string
		repsJSON    string
		weightsJSON sql.NullString
		notes       sql.NullString
	)
	err := row.Scan(&log.ID, &log.ExerciseID, &log.ExerciseName, &dateStr, &log.SetsCompleted,
		&repsJSON, &weightsJSON, &log.DurationSeconds, &log.DistanceKm, &notes, &log.DifficultyRating)
	if err != nil {
		return Log{}, fmt.Errorf("scan workout log: %w", err)
	}
	if log.Date, err = time.Parse(dateFormat, dateStr); err != nil {
		return Log{}, fmt.Errorf("parse workout date: %w", err)
	}
	if err = json.Unmarshal([]byte(repsJSON), &log.Reps); err != nil {
		return Log{}, fmt.Errorf("unmarshal reps: %w", err)
	}
	if weightsJSON.Valid {
		if err = json.Unmarshal([]byte(weightsJSON.String), &log.WeightsKg); err != nil {
			return Log{}, fmt.Errorf("unmarshal weights: %w", err)
		}
	}
	log.Notes = notes.String
	return log, nil
}

// exerciseVisible reports whether the exercise can be logged by the user.
func (r *sqliteRepository) exerciseVisible(ctx context.Context, userID, exerciseID int64) (bool, error) {
	var one int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT 1 FROM exercises WHERE id = ? AND (is_template = 1 OR created_by = ?)`,
		exerciseID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exercise visibility: %w", err)
	}
	return true, nil
}
