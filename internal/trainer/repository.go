package trainer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
	"ironlog/internal/user"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

// sqliteRepository handles database operations for programs and insights.
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

// insertProgram persists a program with all of its weeks, days, and entries
// in a single transaction. Either everything is stored or nothing is.
func (r *sqliteRepository) insertProgram(ctx context.Context, userID int64, program Program) (int64, error) {
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

	goalsJSON, err := marshalStrings(program.Goals)
	if err != nil {
		return 0, fmt.Errorf("marshal goals: %w", err)
	}
	equipmentJSON, err := marshalStrings(program.Equipment)
	if err != nil {
		return 0, fmt.Errorf("marshal equipment: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO training_programs (
			user_id, name, description, program_type, duration_weeks,
			days_per_week, time_per_session_minutes, fitness_level, goals,
			equipment, status, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, program.Name, program.Description, string(program.Type),
		nullableInt(program.DurationWeeks), nullableInt(program.DaysPerWeek),
		nullableInt(program.TimePerSessionMinutes), string(program.FitnessLevel),
		goalsJSON, equipmentJSON, string(StatusDraft), string(program.Source))
	if err != nil {
		return 0, fmt.Errorf("insert program: %w", err)
	}
	programID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	for _, week := range program.Weeks {
		var weekResult sql.Result
		weekResult, err = tx.ExecContext(ctx, `
			INSERT INTO weekly_plans (program_id, week_number, focus, notes)
			VALUES (?, ?, ?, ?)`, programID, week.WeekNumber, week.Focus, week.Notes)
		if err != nil {
			return 0, fmt.Errorf("insert weekly plan: %w", err)
		}
		var weekID int64
		if weekID, err = weekResult.LastInsertId(); err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		for _, day := range week.Days {
			if err = insertDailyWorkout(ctx, tx, programID, &weekID, day); err != nil {
				return 0, err
			}
		}
	}
	for _, day := range program.Days {
		if err = insertDailyWorkout(ctx, tx, programID, nil, day); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return programID, nil
}

func insertDailyWorkout(ctx context.Context, tx *sql.Tx, programID int64, weekID *int64, day DailyWorkout) error {
	focusJSON, err := marshalStrings(day.FocusAreas)
	if err != nil {
		return fmt.Errorf("marshal focus areas: %w", err)
	}
	result, err := tx.ExecContext(ctx, `
		INSERT INTO daily_workouts (
			program_id, weekly_plan_id, day_number, name, focus_areas, estimated_duration_minutes
		) VALUES (?, ?, ?, ?, ?, ?)`,
		programID, weekID, day.DayNumber, day.Name, focusJSON,
		nullableInt(day.EstimatedDurationMinutes))
	if err != nil {
		return fmt.Errorf("insert daily workout: %w", err)
	}
	dayID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	for _, entry := range day.Exercises {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workout_exercises (
				daily_workout_id, exercise_id, position, sets, reps, rest_seconds, intensity, notes
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			dayID, entry.ExerciseID, entry.Position, entry.Sets, entry.Reps.String(),
			entry.RestSeconds, nullableString(entry.Intensity), nullableString(entry.Notes)); err != nil {
			return fmt.Errorf("insert workout exercise: %w", err)
		}
	}
	return nil
}

// getProgram loads a program with its full week, day, and entry tree.
func (r *sqliteRepository) getProgram(ctx context.Context, userID, programID int64) (Program, error) {
	program, err := r.scanProgramRow(ctx, `
		SELECT id, name, description, program_type, duration_weeks, days_per_week,
		       time_per_session_minutes, fitness_level, goals, equipment,
		       status, source, created_at, accepted_at, started_at
		FROM training_programs WHERE id = ? AND user_id = ?`, programID, userID)
	if err != nil {
		return Program{}, err
	}
	if err = r.loadProgramTree(ctx, &program); err != nil {
		return Program{}, err
	}
	return program, nil
}

// activeProgram returns the user's active program with its full tree.
func (r *sqliteRepository) activeProgram(ctx context.Context, userID int64) (Program, error) {
	program, err := r.scanProgramRow(ctx, `
		SELECT id, name, description, program_type, duration_weeks, days_per_week,
		       time_per_session_minutes, fitness_level, goals, equipment,
		       status, source, created_at, accepted_at, started_at
		FROM training_programs WHERE user_id = ? AND status = 'active'
		ORDER BY id DESC LIMIT 1`, userID)
	if err != nil {
		return Program{}, err
	}
	if err = r.loadProgramTree(ctx, &program); err != nil {
		return Program{}, err
	}
	return program, nil
}

// listPrograms returns program headers without the workout tree, newest
// first, optionally narrowed to a status.
func (r *sqliteRepository) listPrograms(ctx context.Context, userID int64, status ProgramStatus) ([]Program, error) {
	query := `
		SELECT id, name, description, program_type, duration_weeks, days_per_week,
		       time_per_session_minutes, fitness_level, goals, equipment,
		       status, source, created_at, accepted_at, started_at
		FROM training_programs WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.ReadOnly.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer rows.Close()

	var programs []Program
	for rows.Next() {
		program, scanErr := scanProgram(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		programs = append(programs, program)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate program rows: %w", err)
	}
	return programs, nil
}

func (r *sqliteRepository) scanProgramRow(ctx context.Context, query string, args ...any) (Program, error) {
	program, err := scanProgram(r.db.ReadOnly.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Program{}, ErrNotFound
	}
	if err != nil {
		return Program{}, err
	}
	return program, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (Program, error) {
	var (
		program       Program
		programType   string
		fitnessLevel  string
		goalsJSON     string
		equipmentJSON string
		status        string
		source        string
		durationWeeks sql.NullInt64
		daysPerWeek   sql.NullInt64
		sessionTime   sql.NullInt64
		createdStr    string
		acceptedStr   sql.NullString
		startedStr    sql.NullString
	)
	err := row.Scan(&program.ID, &program.Name, &program.Description, &programType,
		&durationWeeks, &daysPerWeek, &sessionTime, &fitnessLevel, &goalsJSON,
		&equipmentJSON, &status, &source, &createdStr, &acceptedStr, &startedStr)
	if err != nil {
		return Program{}, fmt.Errorf("scan program: %w", err)
	}
	program.Type = ProgramType(programType)
	program.FitnessLevel = user.FitnessLevel(fitnessLevel)
	program.Status = ProgramStatus(status)
	program.Source = Source(source)
	program.DurationWeeks = int(durationWeeks.Int64)
	program.DaysPerWeek = int(daysPerWeek.Int64)
	program.TimePerSessionMinutes = int(sessionTime.Int64)
	if program.Goals, err = unmarshalStrings(goalsJSON); err != nil {
		return Program{}, fmt.Errorf("unmarshal goals: %w", err)
	}
	if program.Equipment, err = unmarshalStrings(equipmentJSON); err != nil {
		return Program{}, fmt.Errorf("unmarshal equipment: %w", err)
	}
	if program.CreatedAt, err = time.Parse(timestampFormat, createdStr); err != nil {
		return Program{}, fmt.Errorf("parse created_at: %w", err)
	}
	if program.AcceptedAt, err = parseTimestamp(acceptedStr); err != nil {
		return Program{}, fmt.Errorf("parse accepted_at: %w", err)
	}
	if program.StartedAt, err = parseTimestamp(startedStr); err != nil {
		return Program{}, fmt.Errorf("parse started_at: %w", err)
	}
	return program, nil
}

// loadProgramTree fills in weeks, days, and exercise entries.
func (r *sqliteRepository) loadProgramTree(ctx context.Context, program *Program) error {
	weekRows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, week_number, focus, notes FROM weekly_plans
		WHERE program_id = ? ORDER BY week_number`, program.ID)
	if err != nil {
		return fmt.Errorf("query weekly plans: %w", err)
	}
	defer weekRows.Close()

	weeksByID := make(map[int64]int)
	for weekRows.Next() {
		var week WeeklyPlan
		if err = weekRows.Scan(&week.ID, &week.WeekNumber, &week.Focus, &week.Notes); err != nil {
			return fmt.Errorf("scan weekly plan: %w", err)
		}
		program.Weeks = append(program.Weeks, week)
		weeksByID[week.ID] = len(program.Weeks) - 1
	}
	if err = weekRows.Err(); err != nil {
		return fmt.Errorf("iterate weekly plan rows: %w", err)
	}

	dayRows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, weekly_plan_id, day_number, name, focus_areas, estimated_duration_minutes
		FROM daily_workouts
		WHERE program_id = ? ORDER BY day_number, id`, program.ID)
	if err != nil {
		return fmt.Errorf("query daily workouts: %w", err)
	}
	defer dayRows.Close()

	var days []struct {
		day    DailyWorkout
		weekID sql.NullInt64
	}
	for dayRows.Next() {
		var (
			day       DailyWorkout
			weekID    sql.NullInt64
			focusJSON string
			duration  sql.NullInt64
		)
		if err = dayRows.Scan(&day.ID, &weekID, &day.DayNumber, &day.Name, &focusJSON, &duration); err != nil {
			return fmt.Errorf("scan daily workout: %w", err)
		}
		if day.FocusAreas, err = unmarshalStrings(focusJSON); err != nil {
			return fmt.Errorf("unmarshal focus areas: %w", err)
		}
		day.EstimatedDurationMinutes = int(duration.Int64)
		days = append(days, struct {
			day    DailyWorkout
			weekID sql.NullInt64
		}{day, weekID})
	}
	if err = dayRows.Err(); err != nil {
		return fmt.Errorf("iterate daily workout rows: %w", err)
	}

	for i := range days {
		if err = r.loadEntries(ctx, &days[i].day); err != nil {
			return err
		}
		if days[i].weekID.Valid {
			if idx, ok := weeksByID[days[i].weekID.Int64]; ok {
				program.Weeks[idx].Days = append(program.Weeks[idx].Days, days[i].day)
			}
		} else {
			program.Days = append(program.Days, days[i].day)
		}
	}
	return nil
}

func (r *sqliteRepository) loadEntries(ctx context.Context, day *DailyWorkout) error {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT we.exercise_id, e.name, we.position, we.sets, we.reps, we.rest_seconds,
		       we.intensity, we.notes
		FROM workout_exercises we
		JOIN exercises e ON e.id = we.exercise_id
		WHERE we.daily_workout_id = ? ORDER BY we.position`, day.ID)
	if err != nil {
		return fmt.Errorf("query workout exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry     ExerciseEntry
			repsStr   string
			intensity sql.NullString
			notes     sql.NullString
		)
		if err = rows.Scan(&entry.ExerciseID, &entry.ExerciseName, &entry.Position,
			&entry.Sets, &repsStr, &entry.RestSeconds, &intensity, &notes); err != nil {
			return fmt.Errorf("scan workout exercise: %w", err)
		}
		entry.Reps = ParseRepSpec(repsStr)
		entry.Intensity = intensity.String
		entry.Notes = notes.String
		day.Exercises = append(day.Exercises, entry)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("iterate workout exercise rows: %w", err)
	}
	return nil
}

// accept activates a draft program. Any other active program of the user is
// archived in the same transaction so at most one program stays active.
func (r *sqliteRepository) accept(ctx context.Context, userID, programID int64, now time.Time) error {
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

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM training_programs WHERE id = ? AND user_id = ?`,
		programID, userID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("query program status: %w", err)
	}
	if ProgramStatus(status) != StatusDraft {
		return ErrInvalidTransition
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE training_programs SET status = 'archived'
		WHERE user_id = ? AND status = 'active'`, userID); err != nil {
		return fmt.Errorf("archive active programs: %w", err)
	}

	nowStr := now.UTC().Format(timestampFormat)
	if _, err = tx.ExecContext(ctx, `
		UPDATE training_programs
		SET status = 'active', accepted_at = ?, started_at = ?
		WHERE id = ?`, nowStr, nowStr, programID); err != nil {
		return fmt.Errorf("activate program: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// setStatus transitions a program from one status to another.
func (r *sqliteRepository) setStatus(ctx context.Context, userID, programID int64, from, to ProgramStatus) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE training_programs SET status = ?
		WHERE id = ? AND user_id = ? AND status = ?`,
		string(to), programID, userID, string(from))
	if err != nil {
		return fmt.Errorf("update program status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing program from a wrong current status.
		var one int
		err = r.db.ReadOnly.QueryRowContext(ctx, `
			SELECT 1 FROM training_programs WHERE id = ? AND user_id = ?`,
			programID, userID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("query program: %w", err)
		}
		return ErrInvalidTransition
	}
	return nil
}

// deleteProgram removes a program and, through foreign keys, its whole tree.
func (r *sqliteRepository) deleteProgram(ctx context.Context, userID, programID int64) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM training_programs WHERE id = ? AND user_id = ?`, programID, userID)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
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

// insertInsight appends an insight row.
func (r *sqliteRepository) insertInsight(ctx context.Context, userID int64, insight Insight) error {
	dataJSON, err := json.Marshal(insight.Data)
	if err != nil {
		return fmt.Errorf("marshal insight data: %w", err)
	}
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO adaptation_insights (user_id, insight_type, message, recommendation, data)
		VALUES (?, ?, ?, ?, ?)`,
		userID, insight.Type, insight.Message, insight.Recommendation, string(dataJSON)); err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	return nil
}

// listInsights returns the newest insights first.
func (r *sqliteRepository) listInsights(ctx context.Context, userID int64, limit int) ([]Insight, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, insight_type, message, recommendation, data, applied, created_at
		FROM adaptation_insights
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}
	defer rows.Close()

	var insights []Insight
	for rows.Next() {
		var (
			insight    Insight
			dataJSON   string
			createdStr string
		)
		if err = rows.Scan(&insight.ID, &insight.Type, &insight.Message,
			&insight.Recommendation, &dataJSON, &insight.Applied, &createdStr); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		if err = json.Unmarshal([]byte(dataJSON), &insight.Data); err != nil {
			return nil, fmt.Errorf("unmarshal insight data: %w", err)
		}
		if insight.CreatedAt, err = time.Parse(timestampFormat, createdStr); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		insights = append(insights, insight)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate insight rows: %w", err)
	}
	return insights, nil
}

// setInsightApplied toggles the applied flag of an insight.
func (r *sqliteRepository) setInsightApplied(ctx context.Context, userID, insightID int64, applied bool) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE adaptation_insights SET applied = ?
		WHERE id = ? AND user_id = ?`, applied, insightID, userID)
	if err != nil {
		return fmt.Errorf("update insight: %w", err)
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

// parseTimestamp parses a timestamp from a nullable database string.
func parseTimestamp(timestampStr sql.NullString) (*time.Time, error) {
	if timestampStr.Valid {
		parsedTime, err := time.Parse(timestampFormat, timestampStr.String)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp format: %w", err)
		}
		return &parsedTime, nil
	}
	return nil, nil //nolint:nilnil // nil time.Time is expected when the string is NULL.
}

// marshalStrings stores string slices as JSON arrays, never NULL.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string slice: %w", err)
	}
	return string(raw), nil
}

func unmarshalStrings(raw string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("unmarshal string slice: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func nullableInt(value int) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
