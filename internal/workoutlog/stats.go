package workoutlog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ironlog/internal/errors"
)

const (
	daysPerWeek      = 7
	defaultChartWeek = 12
	maxChartWeeks    = 52
	// trendBand is the relative tolerance before a frequency change counts
	// as a trend.
	trendBand = 0.1
)

// WeeklyStreak returns the Monday-to-Sunday activity calendar of the week
// containing today.
func (s *Service) WeeklyStreak(ctx context.Context, userID int64, today time.Time) (WeeklyStreak, error) {
	start := weekStart(today)
	logs, err := s.repo.list(ctx, userID, start)
	if err != nil {
		return WeeklyStreak{}, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}
	return weeklyStreak(logs, start), nil
}

// CurrentStreak returns the consecutive-day streaks over the full history.
func (s *Service) CurrentStreak(ctx context.Context, userID int64, today time.Time) (StreakInfo, error) {
	logs, err := s.repo.list(ctx, userID, time.Time{})
	if err != nil {
		return StreakInfo{}, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}
	return streakInfo(logs, today), nil
}

// WeekComparison compares this week's training against last week's.
func (s *Service) WeekComparison(ctx context.Context, userID int64, today time.Time) (WeekComparison, error) {
	thisWeekStart := weekStart(today)
	lastWeekStart := thisWeekStart.AddDate(0, 0, -daysPerWeek)
	logs, err := s.repo.list(ctx, userID, lastWeekStart)
	if err != nil {
		return WeekComparison{}, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}

	thisWeek := weekMetrics(logs, thisWeekStart, thisWeekStart.AddDate(0, 0, daysPerWeek))
	lastWeek := weekMetrics(logs, lastWeekStart, thisWeekStart)
	return WeekComparison{
		ThisWeek: thisWeek,
		LastWeek: lastWeek,
		Change: WeekChange{
			Workouts:        percentChange(float64(thisWeek.Workouts), float64(lastWeek.Workouts)),
			Sets:            percentChange(float64(thisWeek.Sets), float64(lastWeek.Sets)),
			VolumeKg:        percentChange(thisWeek.VolumeKg, lastWeek.VolumeKg),
			WorkoutDays:     percentChange(float64(thisWeek.WorkoutDays), float64(lastWeek.WorkoutDays)),
			UniqueExercises: percentChange(float64(thisWeek.UniqueExercises), float64(lastWeek.UniqueExercises)),
		},
	}, nil
}

// FrequencyChart returns weekly workout counts for the given number of weeks
// ending with the current week, together with a trend classification. Weeks
// outside 1-52 fall back to the 12-week default.
func (s *Service) FrequencyChart(ctx context.Context, userID int64, weeks int, today time.Time) (FrequencyChart, error) {
	if weeks < 1 || weeks > maxChartWeeks {
		weeks = defaultChartWeek
	}
	start := weekStart(today).AddDate(0, 0, -daysPerWeek*(weeks-1))
	logs, err := s.repo.list(ctx, userID, start)
	if err != nil {
		return FrequencyChart{}, errors.Wrap(err, "list workout logs", slog.Int64("user_id", userID))
	}
	return frequencyChart(logs, start, weeks), nil
}

// weekStart truncates a date to the Monday of its week.
func weekStart(date time.Time) time.Time {
	date = truncateToDay(date)
	offset := (int(date.Weekday()) + 6) % daysPerWeek
	return date.AddDate(0, 0, -offset)
}

func truncateToDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

func weeklyStreak(logs []Log, start time.Time) WeeklyStreak {
	streak := WeeklyStreak{
		Days:      make([]bool, daysPerWeek),
		WeekStart: start,
	}
	for _, log := range logs {
		day := int(truncateToDay(log.Date).Sub(start).Hours()) / 24
		if day < 0 || day >= daysPerWeek {
			continue
		}
		streak.Days[day] = true
		streak.WorkoutsThisWeek++
	}
	return streak
}

func streakInfo(logs []Log, today time.Time) StreakInfo {
	dates := distinctDates(logs)
	if len(dates) == 0 {
		return StreakInfo{}
	}

	longest := 1
	run := 1
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	info := StreakInfo{LongestStreak: longest}

	// The streak is alive when the last workout was today or yesterday.
	today = truncateToDay(today)
	last := dates[len(dates)-1]
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		info.Active = true
		info.CurrentStreak = 1
		for i := len(dates) - 1; i > 0; i-- {
			if dates[i].Sub(dates[i-1]) != 24*time.Hour {
				break
			}
			info.CurrentStreak++
		}
	}
	return info
}

func weekMetrics(logs []Log, start, end time.Time) WeekMetrics {
	var metrics WeekMetrics
	days := make(map[time.Time]struct{})
	exercises := make(map[int64]struct{})
	for _, log := range logs {
		date := truncateToDay(log.Date)
		if date.Before(start) || !date.Before(end) {
			continue
		}
		metrics.Workouts++
		metrics.Sets += log.SetsCompleted
		// Zip reps and weights defensively since weights are optional and
		// may be shorter than reps.
		for i, reps := range log.Reps {
			if i < len(log.WeightsKg) {
				metrics.VolumeKg += log.WeightsKg[i] * float64(reps)
			}
		}
		days[date] = struct{}{}
		exercises[log.ExerciseID] = struct{}{}
	}
	metrics.WorkoutDays = len(days)
	metrics.UniqueExercises = len(exercises)
	return metrics
}

// percentChange returns the relative change in percent. A jump from zero to
// a positive value counts as 100%.
func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

func frequencyChart(logs []Log, start time.Time, weeks int) FrequencyChart {
	chart := FrequencyChart{
		Weeks: make([]WeekCount, weeks),
		Trend: TrendStable,
	}
	for i := range chart.Weeks {
		chart.Weeks[i].WeekStart = start.AddDate(0, 0, daysPerWeek*i)
	}
	for _, log := range logs {
		week := int(truncateToDay(log.Date).Sub(start).Hours()) / 24 / daysPerWeek
		if week < 0 || week >= weeks {
			continue
		}
		chart.Weeks[week].Count++
	}
	chart.Trend = classifyTrend(chart.Weeks)
	return chart
}

// classifyTrend compares the average of the first half of the chart with the
// second half. Changes within the tolerance band are stable.
func classifyTrend(weeks []WeekCount) Trend {
	if len(weeks) < 2 {
		return TrendStable
	}
	half := len(weeks) / 2
	firstAvg := averageCount(weeks[:half])
	secondAvg := averageCount(weeks[half:])

	if firstAvg == 0 {
		if secondAvg > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	switch {
	case secondAvg > firstAvg*(1+trendBand):
		return TrendIncreasing
	case secondAvg < firstAvg*(1-trendBand):
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func averageCount(weeks []WeekCount) float64 {
	if len(weeks) == 0 {
		return 0
	}
	total := 0
	for _, week := range weeks {
		total += week.Count
	}
	return float64(total) / float64(len(weeks))
}

// distinctDates returns the unique workout dates sorted ascending.
func distinctDates(logs []Log) []time.Time {
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, log := range logs {
		date := truncateToDay(log.Date)
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
