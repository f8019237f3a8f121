package user

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

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository handles database operations for user accounts.
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

// insertUser creates a user row and returns its ID.
func (r *sqliteRepository) insertUser(ctx context.Context, email string, passwordHash []byte, name string) (int64, error) {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES (?, ?, ?)`,
		email, passwordHash, name)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// getCredentials looks up the user ID and password hash for an email address.
func (r *sqliteRepository) getCredentials(ctx context.Context, email string) (int64, []byte, error) {
	var (
		id   int64
		hash []byte
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if err != nil {
		return 0, nil, fmt.Errorf("query credentials: %w", err)
	}
	return id, hash, nil
}

// getUser retrieves a user with their profile.
func (r *sqliteRepository) getUser(ctx context.Context, userID int64) (User, error) {
	var (
		u             User
		goalsJSON     string
		equipmentJSON string
		createdStr    string
		level         string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, email, name, fitness_level, goals, available_equipment,
		       preferred_duration_minutes, created_at
		FROM users WHERE id = ?`, userID).Scan(
		&u.ID, &u.Email, &u.Name, &level, &goalsJSON, &equipmentJSON,
		&u.Profile.PreferredDurationMinutes, &createdStr)
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}

	u.Profile.FitnessLevel = FitnessLevel(level)
	if err = json.Unmarshal([]byte(goalsJSON), &u.Profile.Goals); err != nil {
		return User{}, fmt.Errorf("unmarshal goals: %w", err)
	}
	if err = json.Unmarshal([]byte(equipmentJSON), &u.Profile.AvailableEquipment); err != nil {
		return User{}, fmt.Errorf("unmarshal equipment: %w", err)
	}
	if u.Created, err = time.Parse(timestampFormat, createdStr); err != nil {
		return User{}, fmt.Errorf("parse created_at: %w", err)
	}
	return u, nil
}

// saveProfile overwrites the fitness profile fields of a user.
func (r *sqliteRepository) saveProfile(ctx context.Context, userID int64, profile Profile) error {
	goalsJSON, err := json.Marshal(orEmpty(profile.Goals))
	if err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	equipmentJSON, err := json.Marshal(orEmpty(profile.AvailableEquipment))
	if err != nil {
		return fmt.Errorf("marshal equipment: %w", err)
	}

	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE users
		SET fitness_level = ?, goals = ?, available_equipment = ?, preferred_duration_minutes = ?
		WHERE id = ?`,
		string(profile.FitnessLevel), string(goalsJSON), string(equipmentJSON),
		profile.PreferredDurationMinutes, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
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

// listGymProfiles returns all gym profiles owned by the user.
func (r *sqliteRepository) listGymProfiles(ctx context.Context, userID int64) ([]GymProfile, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, equipment, is_default
		FROM gym_profiles WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query gym profiles: %w", err)
	}
	defer rows.Close()

	var profiles []GymProfile
	for rows.Next() {
		var (
			p             GymProfile
			equipmentJSON string
		)
		if err = rows.Scan(&p.ID, &p.Name, &equipmentJSON, &p.IsDefault); err != nil {
			return nil, fmt.Errorf("scan gym profile: %w", err)
		}
		if err = json.Unmarshal([]byte(equipmentJSON), &p.Equipment); err != nil {
			return nil, fmt.Errorf("unmarshal gym equipment: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gym profile rows: %w", err)
	}
	return profiles, nil
}

// getGymProfile returns a single gym profile owned by the user.
func (r *sqliteRepository) getGymProfile(ctx context.Context, userID, profileID int64) (GymProfile, error) {
	var (
		p             GymProfile
		equipmentJSON string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, name, equipment, is_default
		FROM gym_profiles WHERE id = ? AND user_id = ?`, profileID, userID).Scan(
		&p.ID, &p.Name, &equipmentJSON, &p.IsDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return GymProfile{}, ErrNotFound
	}
	if err != nil {
		return GymProfile{}, fmt.Errorf("query gym profile: %w", err)
	}
	if err = json.Unmarshal([]byte(equipmentJSON), &p.Equipment); err != nil {
		return GymProfile{}, fmt.Errorf("unmarshal gym equipment: %w", err)
	}
	return p, nil
}

// saveGymProfile inserts or updates a gym profile. When the profile becomes
// the default, all other defaults for the user are cleared in the same
// transaction.
func (r *sqliteRepository) saveGymProfile(ctx context.Context, userID int64, profile GymProfile) (int64, error) {
	equipmentJSON, err := json.Marshal(orEmpty(profile.Equipment))
	if err != nil {
		return 0, fmt.Errorf("marshal gym equipment: %w", err)
	}

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

	if profile.IsDefault {
		if _, err = tx.ExecContext(ctx, `
			UPDATE gym_profiles SET is_default = 0 WHERE user_id = ?`, userID); err != nil {
			return 0, fmt.Errorf("clear default gym profiles: %w", err)
		}
	}

	profileID := profile.ID
	if profileID == 0 {
		var result sql.Result
		result, err = tx.ExecContext(ctx, `
			INSERT INTO gym_profiles (user_id, name, equipment, is_default)
			VALUES (?, ?, ?, ?)`,
			userID, profile.Name, string(equipmentJSON), profile.IsDefault)
		if err != nil {
			return 0, fmt.Errorf("insert gym profile: %w", err)
		}
		if profileID, err = result.LastInsertId(); err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
	} else {
		var result sql.Result
		result, err = tx.ExecContext(ctx, `
			UPDATE gym_profiles SET name = ?, equipment = ?, is_default = ?
			WHERE id = ? AND user_id = ?`,
			profile.Name, string(equipmentJSON), profile.IsDefault, profileID, userID)
		if err != nil {
			return 0, fmt.Errorf("update gym profile: %w", err)
		}
		var rows int64
		if rows, err = result.RowsAffected(); err != nil {
			return 0, fmt.Errorf("get rows affected: %w", err)
		}
		if rows == 0 {
			return 0, ErrNotFound
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return profileID, nil
}

// deleteGymProfile removes a gym profile owned by the user.
func (r *sqliteRepository) deleteGymProfile(ctx context.Context, userID, profileID int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM gym_profiles WHERE id = ? AND user_id = ?`, profileID, userID)
	if err != nil {
		return fmt.Errorf("delete gym profile: %w", err)
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

// defaultGymEquipment returns the equipment of the default gym profile, or
// nil when the user has none.
func (r *sqliteRepository) defaultGymEquipment(ctx context.Context, userID int64) ([]string, error) {
	var equipmentJSON string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT equipment FROM gym_profiles
		WHERE user_id = ? AND is_default = 1`, userID).Scan(&equipmentJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query default gym profile: %w", err)
	}
	var equipment []string
	if err = json.Unmarshal([]byte(equipmentJSON), &equipment); err != nil {
		return nil, fmt.Errorf("unmarshal gym equipment: %w", err)
	}
	return equipment, nil
}

// orEmpty substitutes an empty slice for nil so JSON columns store [] instead of null.
func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
