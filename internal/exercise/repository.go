package exercise

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
)

// sqliteRepository handles database operations for the exercise catalog.
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

// listVisible returns all exercises visible to the user, i.e. templates and
// the user's own creations, narrowed by the filter.
func (r *sqliteRepository) listVisible(ctx context.Context, userID int64, filter Filter) ([]Exercise, error) {
	query := `
		SELECT DISTINCT e.id, e.name, e.description, e.category, e.difficulty,
		       e.instructions_markdown, e.is_template, e.created_by
		FROM exercises e`
	args := []any{}

	if filter.MuscleGroup != "" {
		query += `
		JOIN exercise_muscle_groups emg ON emg.exercise_id = e.id
			AND emg.muscle_group_name LIKE ?`
		args = append(args, "%"+strings.ToLower(filter.MuscleGroup)+"%")
	}

	query += `
		WHERE (e.is_template = 1 OR e.created_by = ?)`
	args = append(args, userID)

	if filter.Category != "" {
		query += ` AND e.category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.Difficulty != "" {
		query += ` AND e.difficulty = ?`
		args = append(args, string(filter.Difficulty))
	}
	query += ` ORDER BY e.id`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var ex Exercise
		if err = rows.Scan(&ex.ID, &ex.Name, &ex.Description, &ex.Category, &ex.Difficulty,
			&ex.Instructions, &ex.IsTemplate, &ex.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan exercise row: %w", err)
		}
		exercises = append(exercises, ex)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise rows: %w", err)
	}

	for i := range exercises {
		if err = r.loadAssociations(ctx, &exercises[i]); err != nil {
			return nil, err
		}
	}
	return exercises, nil
}

// get returns an exercise visible to the user.
func (r *sqliteRepository) get(ctx context.Context, userID, exerciseID int64) (Exercise, error) {
	var ex Exercise
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, description, category, difficulty,
		       instructions_markdown, is_template, created_by
		FROM exercises
		WHERE id = ? AND (is_template = 1 OR created_by = ?)`,
		exerciseID, userID).Scan(
		&ex.ID, &ex.Name, &ex.Description, &ex.Category, &ex.Difficulty,
		&ex.Instructions, &ex.IsTemplate, &ex.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return Exercise{}, ErrNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query exercise: %w", err)
	}
	if err = r.loadAssociations(ctx, &ex); err != nil {
		return Exercise{}, err
	}
	return ex, nil
}

// exists reports whether any exercise with the given name is present.
func (r *sqliteRepository) exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT 1 FROM exercises WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exercise name: %w", err)
	}
	return true, nil
}

// insert creates an exercise together with its muscle-group and equipment
// associations in a single transaction.
func (r *sqliteRepository) insert(ctx context.Context, ex Exercise) (int64, error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		err = tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback transaction", slog.Any("error", err))
		}
	}(tx)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO exercises (name, description, category, difficulty, instructions_markdown, is_template, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ex.Name, ex.Description, string(ex.Category), string(ex.Difficulty),
		ex.Instructions, ex.IsTemplate, ex.CreatedBy)
	if err != nil {
		return 0, fmt.Errorf("insert exercise: %w", err)
	}
	exerciseID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	if err = saveAssociations(ctx, tx, exerciseID, ex); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return exerciseID, nil
}

// update overwrites an exercise and its associations. Only the owner of a
// non-template exercise may update it.
func (r *sqliteRepository) update(ctx context.Context, userID int64, ex Exercise) error {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		err = tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback transaction", slog.Any("error", err))
		}
	}(tx)

	result, err := tx.ExecContext(ctx, `
		UPDATE exercises
		SET name = ?, description = ?, category = ?, difficulty = ?, instructions_markdown = ?
		WHERE id = ? AND is_template = 0 AND created_by = ?`,
		ex.Name, ex.Description, string(ex.Category), string(ex.Difficulty), ex.Instructions,
		ex.ID, userID)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM exercise_muscle_groups WHERE exercise_id = ?`, ex.ID); err != nil {
		return fmt.Errorf("delete muscle group rows: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `
		DELETE FROM exercise_equipment WHERE exercise_id = ?`, ex.ID); err != nil {
		return fmt.Errorf("delete equipment rows: %w", err)
	}
	if err = saveAssociations(ctx, tx, ex.ID, ex); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// remove deletes a user-created exercise.
func (r *sqliteRepository) remove(ctx context.Context, userID, exerciseID int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM exercises WHERE id = ? AND is_template = 0 AND created_by = ?`,
		exerciseID, userID)
	if err != nil {
		return fmt.Errorf("delete exercise: %w", err)
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

// saveAssociations writes the muscle group and equipment rows for an
// exercise. Unknown muscle groups are added to the reference table first.
func saveAssociations(ctx context.Context, tx *sql.Tx, exerciseID int64, ex Exercise) error {
	for _, group := range ex.MuscleGroups {
		group = strings.ToLower(strings.TrimSpace(group))
		if group == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO muscle_groups (name) VALUES (?)`, group); err != nil {
			return fmt.Errorf("insert muscle group: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO exercise_muscle_groups (exercise_id, muscle_group_name)
			VALUES (?, ?)`, exerciseID, group); err != nil {
			return fmt.Errorf("insert exercise muscle group: %w", err)
		}
	}
	for _, equipment := range ex.Equipment {
		equipment = strings.ToLower(strings.TrimSpace(equipment))
		if equipment == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO exercise_equipment (exercise_id, equipment)
			VALUES (?, ?)`, exerciseID, equipment); err != nil {
			return fmt.Errorf("insert exercise equipment: %w", err)
		}
	}
	return nil
}

// loadAssociations fills in the muscle groups and equipment of an exercise.
func (r *sqliteRepository) loadAssociations(ctx context.Context, ex *Exercise) error {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT muscle_group_name FROM exercise_muscle_groups
		WHERE exercise_id = ? ORDER BY muscle_group_name`, ex.ID)
	if err != nil {
		return fmt.Errorf("query muscle groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return fmt.Errorf("scan muscle group: %w", err)
		}
		ex.MuscleGroups = append(ex.MuscleGroups, name)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate muscle group rows: %w", err)
	}

	equipmentRows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT equipment FROM exercise_equipment
		WHERE exercise_id = ? ORDER BY equipment`, ex.ID)
	if err != nil {
		return fmt.Errorf("query equipment: %w", err)
	}
	defer equipmentRows.Close()
	for equipmentRows.Next() {
		var equipment string
		if err = equipmentRows.Scan(&equipment); err != nil {
			return fmt.Errorf("scan equipment: %w", err)
		}
		ex.Equipment = append(ex.Equipment, equipment)
	}
	if err = equipmentRows.Err(); err != nil {
		return fmt.Errorf("iterate equipment rows: %w", err)
	}
	return nil
}
