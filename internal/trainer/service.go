package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ironlog/internal/errors"
	"ironlog/internal/exercise"
	"ironlog/internal/sqlite"
	"ironlog/internal/user"
	"ironlog/internal/workoutlog"
)

var (
	ErrNotFound          = errors.NewSentinel("program not found")
	ErrInvalidTransition = errors.NewSentinel("invalid program status transition")
	ErrInvalidInput      = errors.NewSentinel("invalid input")
	// ErrNoExercises means the catalog has nothing matching the user's
	// constraints, even after lifting the recency exclusion.
	ErrNoExercises = errors.NewSentinel("no exercises match the given constraints")
)

const (
	minDurationWeeks      = 1
	maxDurationWeeks      = 16
	defaultDaysPerWeek    = 3
	defaultSessionMinutes = 60

	// minInsightWorkouts is how many logged workouts a user needs in the
	// analysis window before insights are generated at all.
	minInsightWorkouts = 5
	// recoveryThreshold is the average difficulty rating above which a
	// recovery insight fires.
	recoveryThreshold = 7.5
	// progressionThreshold is the workout count at which a progression
	// insight fires.
	progressionThreshold = 12

	insightListLimit = 10
)

// Service is the recommendation engine: it generates training programs,
// manages their lifecycle, and derives adaptation insights from history.
type Service struct {
	repo      *sqliteRepository
	logger    *slog.Logger
	exercises *exercise.Service
	users     *user.Service
	logs      *workoutlog.Service
	ai        *aiGenerator
}

// NewService wires the trainer. An empty openAIKey disables the AI generator
// entirely; programs are then always rule-based.
func NewService(
	db *sqlite.Database,
	logger *slog.Logger,
	exercises *exercise.Service,
	users *user.Service,
	logs *workoutlog.Service,
	openAIKey string,
) *Service {
	s := &Service{
		repo:      newSQLiteRepository(db, logger),
		logger:    logger,
		exercises: exercises,
		users:     users,
		logs:      logs,
	}
	if openAIKey != "" {
		s.ai = newAIGenerator(openAIKey)
	}
	return s
}

// Generate builds a draft program for the user. When the AI generator is
// configured it is tried first; any failure there falls back to the
// rule-based generator and is never surfaced to the caller.
func (s *Service) Generate(ctx context.Context, userID int64, request ProgramRequest) (GenerationResult, error) {
	if err := normalizeRequest(&request); err != nil {
		return GenerationResult{}, err
	}

	now := time.Now()
	summary, err := s.historySummary(ctx, userID, now)
	if err != nil {
		return GenerationResult{}, err
	}
	if request.FitnessLevel, err = s.resolveFitnessLevel(ctx, userID, request.FitnessLevel); err != nil {
		return GenerationResult{}, err
	}
	if request.Equipment, err = s.resolveEquipment(ctx, userID, request.Equipment); err != nil {
		return GenerationResult{}, err
	}
	if request.Goals, err = s.resolveGoals(ctx, userID, request.Goals); err != nil {
		return GenerationResult{}, err
	}

	candidates, err := s.candidateExercises(ctx, userID, request, summary.RecentExerciseIDs)
	if err != nil {
		return GenerationResult{}, err
	}
	selected := selectForProgram(request.Type, candidates)

	program, unmatched := s.generateProgram(ctx, request, candidates, selected, summary)

	// Snapshot the resolved generation parameters so later profile edits do
	// not alter the stored program.
	program.FitnessLevel = request.FitnessLevel
	program.Goals = request.Goals
	program.Equipment = request.Equipment

	programID, err := s.repo.insertProgram(ctx, userID, program)
	if err != nil {
		return GenerationResult{}, errors.Wrap(err, "persist program")
	}
	stored, err := s.repo.getProgram(ctx, userID, programID)
	if err != nil {
		return GenerationResult{}, errors.Wrap(err, "load stored program")
	}
	return GenerationResult{Program: stored, UnmatchedExercises: unmatched}, nil
}

// generateProgram tries the AI generator and falls back to the rule-based
// builder on any failure.
func (s *Service) generateProgram(
	ctx context.Context,
	request ProgramRequest,
	candidates []exercise.Exercise,
	selected []exercise.Exercise,
	summary HistorySummary,
) (Program, int) {
	if s.ai == nil {
		return buildRuleBasedProgram(request, selected), 0
	}

	raw, err := s.ai.generate(ctx, request, candidates, summary)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "AI generation failed, falling back to rule-based",
			slog.Any("error", err))
		return buildRuleBasedProgram(request, selected), 0
	}
	program, unmatched, err := resolveAIProgram(request, raw, candidates)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "AI program unusable, falling back to rule-based",
			slog.Any("error", err),
			slog.Int("unmatched_exercises", unmatched))
		return buildRuleBasedProgram(request, selected), 0
	}
	return program, unmatched
}

// resolveAIProgram matches the model's exercise names against the candidate
// catalog. Names that do not resolve are dropped and counted. A program that
// resolves to zero exercises is an error so the caller can fall back.
func resolveAIProgram(request ProgramRequest, raw aiProgram, candidates []exercise.Exercise) (Program, int, error) {
	byName := make(map[string]exercise.Exercise, len(candidates))
	for _, candidate := range candidates {
		byName[strings.ToLower(candidate.Name)] = candidate
	}

	program := Program{
		Name:                  raw.Name,
		Description:           raw.Description,
		Type:                  request.Type,
		DaysPerWeek:           request.DaysPerWeek,
		TimePerSessionMinutes: request.TimePerSessionMinutes,
		Status:                StatusDraft,
		Source:                SourceAI,
	}
	if program.Name == "" {
		program.Name = request.Name
	}

	unmatched := 0
	total := 0
	for _, rawWeek := range raw.Weeks {
		week := WeeklyPlan{WeekNumber: rawWeek.WeekNumber, Focus: rawWeek.Focus, Notes: rawWeek.Notes}
		for _, rawWorkout := range rawWeek.Workouts {
			day := DailyWorkout{
				DayNumber:                rawWorkout.DayNumber,
				Name:                     rawWorkout.Name,
				FocusAreas:               rawWorkout.FocusAreas,
				EstimatedDurationMinutes: rawWorkout.EstimatedDurationMinutes,
			}
			if day.EstimatedDurationMinutes <= 0 {
				day.EstimatedDurationMinutes = request.TimePerSessionMinutes
			}
			var matched []exercise.Exercise
			for _, rawExercise := range rawWorkout.Exercises {
				match, ok := byName[strings.ToLower(strings.TrimSpace(rawExercise.ExerciseName))]
				if !ok {
					unmatched++
					continue
				}
				matched = append(matched, match)
				entry := ExerciseEntry{
					ExerciseID:   match.ID,
					ExerciseName: match.Name,
					Position:     len(day.Exercises),
					Sets:         rawExercise.Sets,
					Reps:         rawExercise.Reps,
					RestSeconds:  rawExercise.RestSeconds,
					Intensity:    rawExercise.Intensity,
					Notes:        rawExercise.Notes,
				}
				if entry.Sets <= 0 {
					entry.Sets = defaultSets
				}
				if entry.RestSeconds <= 0 {
					entry.RestSeconds = defaultRestSeconds
				}
				if entry.Reps.String() == "0" {
					entry.Reps = RepRange(defaultRepRange)
				}
				day.Exercises = append(day.Exercises, entry)
				total++
			}
			if len(day.FocusAreas) == 0 {
				day.FocusAreas = focusAreas(matched)
			}
			week.Days = append(week.Days, day)
		}
		program.Weeks = append(program.Weeks, week)
	}
	if total == 0 {
		return Program{}, unmatched, errors.New("no AI exercises matched the catalog")
	}

	if request.Type == TypeDaily {
		// Flatten the single-week shape into a daily program.
		var days []DailyWorkout
		for _, week := range program.Weeks {
			days = append(days, week.Days...)
		}
		program.Weeks = nil
		program.Days = days[:1]
		program.Days[0].DayNumber = 1
	} else {
		program.DurationWeeks = request.DurationWeeks
	}
	return program, unmatched, nil
}

// Program returns one of the user's programs with its full workout tree.
func (s *Service) Program(ctx context.Context, userID, programID int64) (Program, error) {
	return s.repo.getProgram(ctx, userID, programID)
}

// ActiveProgram returns the user's active program, or ErrNotFound when no
// program is active.
func (s *Service) ActiveProgram(ctx context.Context, userID int64) (Program, error) {
	return s.repo.activeProgram(ctx, userID)
}

// Programs lists the user's programs newest first, optionally narrowed to a
// status.
func (s *Service) Programs(ctx context.Context, userID int64, status ProgramStatus) ([]Program, error) {
	switch status {
	case "", StatusDraft, StatusActive, StatusCompleted, StatusArchived:
	default:
		return nil, errors.Wrap(ErrInvalidInput, fmt.Sprintf("unknown status %q", status))
	}
	return s.repo.listPrograms(ctx, userID, status)
}

// Accept activates a draft program and archives any other active one.
func (s *Service) Accept(ctx context.Context, userID, programID int64) error {
	return s.repo.accept(ctx, userID, programID, time.Now())
}

// Archive moves an active program to archived.
func (s *Service) Archive(ctx context.Context, userID, programID int64) error {
	return s.repo.setStatus(ctx, userID, programID, StatusActive, StatusArchived)
}

// Complete moves an active program to completed.
func (s *Service) Complete(ctx context.Context, userID, programID int64) error {
	return s.repo.setStatus(ctx, userID, programID, StatusActive, StatusCompleted)
}

// DeleteProgram removes a program and everything under it.
func (s *Service) DeleteProgram(ctx context.Context, userID, programID int64) error {
	return s.repo.deleteProgram(ctx, userID, programID)
}

// TodaysWorkout picks the scheduled workout from the user's active program.
// For multi-week programs the week is derived from the start date and the
// day from the current weekday, both clamped to the program's bounds.
func (s *Service) TodaysWorkout(ctx context.Context, userID int64) (DailyWorkout, error) {
	program, err := s.repo.activeProgram(ctx, userID)
	if err != nil {
		return DailyWorkout{}, err
	}
	return workoutForDate(program, time.Now()), nil
}

func workoutForDate(program Program, now time.Time) DailyWorkout {
	if program.Type == TypeDaily {
		if len(program.Days) == 0 {
			return DailyWorkout{}
		}
		return program.Days[len(program.Days)-1]
	}

	week := 1
	if program.StartedAt != nil {
		week = int(now.Sub(*program.StartedAt).Hours()/24)/7 + 1
	}
	if week < 1 {
		week = 1
	}
	if program.DurationWeeks > 0 && week > program.DurationWeeks {
		week = program.DurationWeeks
	}

	day := isoWeekday(now)
	if program.DaysPerWeek > 0 && day > program.DaysPerWeek {
		day = program.DaysPerWeek
	}

	for _, plan := range program.Weeks {
		if plan.WeekNumber != week {
			continue
		}
		for _, workout := range plan.Days {
			if workout.DayNumber == day {
				return workout
			}
		}
		if len(plan.Days) > 0 {
			return plan.Days[0]
		}
	}
	return DailyWorkout{}
}

// isoWeekday numbers Monday 1 through Sunday 7.
func isoWeekday(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

// GenerateInsights analyzes the last 30 days of history and persists any
// insights it finds. Users with fewer than five workouts in the window get
// none. Insights are append-only, so regenerating may create duplicates.
func (s *Service) GenerateInsights(ctx context.Context, userID int64) ([]Insight, error) {
	summary, err := s.historySummary(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if summary.WorkoutCount < minInsightWorkouts {
		return nil, nil
	}

	var insights []Insight
	if summary.AvgDifficulty > recoveryThreshold {
		insights = append(insights, Insight{
			Type: InsightRecoveryNeeded,
			Message: fmt.Sprintf(
				"Your average workout difficulty over the last 30 days is %.1f out of 10. Consider a lighter week to recover.",
				summary.AvgDifficulty),
			Recommendation: "Schedule a deload week: reduce your working weights to about 60% and halve your sets.",
			Data:           map[string]float64{"avg_difficulty": summary.AvgDifficulty},
		})
	}
	if summary.WorkoutCount >= progressionThreshold {
		insights = append(insights, Insight{
			Type: InsightProgressionDetected,
			Message: fmt.Sprintf(
				"You logged %d workouts in the last 30 days. You are ready to progress to heavier weights or harder variations.",
				summary.WorkoutCount),
			Recommendation: "Apply progressive overload: add a small amount of weight or an extra set to your main exercises.",
			Data:           map[string]float64{"workout_count": float64(summary.WorkoutCount)},
		})
	}
	for _, insight := range insights {
		if err = s.repo.insertInsight(ctx, userID, insight); err != nil {
			return nil, errors.Wrap(err, "persist insight")
		}
	}
	return insights, nil
}

// Insights lists the user's newest insights, at most ten.
func (s *Service) Insights(ctx context.Context, userID int64) ([]Insight, error) {
	return s.repo.listInsights(ctx, userID, insightListLimit)
}

// SetInsightApplied marks an insight as acted on, or clears the mark.
func (s *Service) SetInsightApplied(ctx context.Context, userID, insightID int64, applied bool) error {
	return s.repo.setInsightApplied(ctx, userID, insightID, applied)
}

// Suggest assembles a one-off workout suggestion outside of any program.
func (s *Service) Suggest(ctx context.Context, userID int64, request SuggestionRequest) (Suggestion, error) {
	level, err := s.resolveFitnessLevel(ctx, userID, request.FitnessLevel)
	if err != nil {
		return Suggestion{}, err
	}
	equipment, err := s.resolveEquipment(ctx, userID, request.Equipment)
	if err != nil {
		return Suggestion{}, err
	}
	summary, err := s.historySummary(ctx, userID, time.Now())
	if err != nil {
		return Suggestion{}, err
	}

	candidates, err := s.candidateExercises(ctx, userID, ProgramRequest{
		TargetMuscleGroups: request.TargetMuscleGroups,
		Equipment:          equipment,
		FitnessLevel:       level,
	}, summary.SuggestionExcludedIDs)
	if err != nil {
		return Suggestion{}, err
	}

	count := suggestionSize(request.DurationMinutes)
	selected := selectDiverse(candidates, count)

	rationale := fmt.Sprintf("Picked %d %s exercises", len(selected), level)
	if len(request.TargetMuscleGroups) > 0 {
		rationale += " targeting " + strings.Join(request.TargetMuscleGroups, ", ")
	}
	rationale += " based on your available equipment."
	return Suggestion{Exercises: selected, Rationale: rationale}, nil
}

// suggestionSize scales the exercise count with session length, roughly one
// exercise per ten minutes.
func suggestionSize(durationMinutes int) int {
	if durationMinutes <= 0 {
		durationMinutes = defaultSessionMinutes
	}
	count := durationMinutes / 10
	if count < warmUpCount {
		count = warmUpCount
	}
	if count > maxWorkoutExercises {
		count = maxWorkoutExercises
	}
	return count
}

// candidateExercises filters the visible catalog by the request. If the
// recency exclusion empties the result it is lifted and the filter retried,
// so a user training daily still gets a program.
func (s *Service) candidateExercises(
	ctx context.Context,
	userID int64,
	request ProgramRequest,
	exclude map[int64]struct{},
) ([]exercise.Exercise, error) {
	catalog, err := s.exercises.List(ctx, userID, exercise.Filter{})
	if err != nil {
		return nil, errors.Wrap(err, "list exercises")
	}

	criteria := filterCriteria{
		difficulty:         exercise.Difficulty(request.FitnessLevel),
		availableEquipment: request.Equipment,
		targetMuscles:      request.TargetMuscleGroups,
		exclude:            exclude,
	}
	candidates := filterExercises(catalog, criteria)
	if len(candidates) == 0 {
		criteria.exclude = nil
		candidates = filterExercises(catalog, criteria)
	}
	if len(candidates) == 0 {
		return nil, ErrNoExercises
	}
	return candidates, nil
}

func (s *Service) historySummary(ctx context.Context, userID int64, now time.Time) (HistorySummary, error) {
	logs, err := s.logs.List(ctx, userID, now.AddDate(0, 0, -historyWindowDays))
	if err != nil {
		return HistorySummary{}, errors.Wrap(err, "list workout logs")
	}
	catalog, err := s.exercises.List(ctx, userID, exercise.Filter{})
	if err != nil {
		return HistorySummary{}, errors.Wrap(err, "list exercises")
	}
	musclesByExercise := make(map[int64][]string, len(catalog))
	for _, ex := range catalog {
		musclesByExercise[ex.ID] = ex.MuscleGroups
	}
	return summarizeHistory(logs, musclesByExercise, now), nil
}

// resolveFitnessLevel falls back from the request to the profile to
// beginner.
func (s *Service) resolveFitnessLevel(ctx context.Context, userID int64, requested user.FitnessLevel) (user.FitnessLevel, error) {
	if requested.Valid() {
		return requested, nil
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", errors.Wrap(err, "get user")
	}
	if u.Profile.FitnessLevel.Valid() {
		return u.Profile.FitnessLevel, nil
	}
	return user.LevelBeginner, nil
}

// resolveGoals falls back from the request to the profile goals.
func (s *Service) resolveGoals(ctx context.Context, userID int64, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user")
	}
	return u.Profile.Goals, nil
}

// resolveEquipment unions the request equipment with the profile and default
// gym equipment, preserving order and dropping duplicates.
func (s *Service) resolveEquipment(ctx context.Context, userID int64, requested []string) ([]string, error) {
	defaults, err := s.users.DefaultEquipment(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "default equipment")
	}
	seen := make(map[string]struct{})
	var merged []string
	for _, item := range append(defaults, requested...) {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, item)
	}
	return merged, nil
}

func normalizeRequest(request *ProgramRequest) error {
	if request.Type == "" {
		request.Type = TypeDaily
	}
	switch request.Type {
	case TypeDaily, TypeMultiWeek:
	default:
		return errors.Wrap(ErrInvalidInput, fmt.Sprintf("unknown program type %q", request.Type))
	}
	if request.DaysPerWeek == 0 {
		request.DaysPerWeek = defaultDaysPerWeek
	}
	if request.DaysPerWeek < 1 || request.DaysPerWeek > 7 {
		return errors.Wrap(ErrInvalidInput, "days_per_week must be between 1 and 7")
	}
	if request.TimePerSessionMinutes == 0 {
		request.TimePerSessionMinutes = defaultSessionMinutes
	}
	if request.Type == TypeMultiWeek {
		if request.DurationWeeks < minDurationWeeks || request.DurationWeeks > maxDurationWeeks {
			return errors.Wrap(ErrInvalidInput,
				fmt.Sprintf("duration_weeks must be between %d and %d", minDurationWeeks, maxDurationWeeks))
		}
	}
	return nil
}
