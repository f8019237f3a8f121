package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"ironlog/internal/errors"
	"ironlog/internal/exercise"
)

const systemPrompt = `You are an experienced personal trainer designing training programs.
You respond with a single JSON object and nothing else: no prose, no markdown fences.`

// aiProgram is the JSON shape the model is asked to produce. Daily programs
// come back as a single week with one workout.
type aiProgram struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Weeks       []aiWeek `json:"weeks"`
}

type aiWeek struct {
	WeekNumber int         `json:"week_number"`
	Focus      string      `json:"focus"`
	Notes      string      `json:"notes"`
	Workouts   []aiWorkout `json:"workouts"`
}

type aiWorkout struct {
	DayNumber                int                 `json:"day_number"`
	Name                     string              `json:"name"`
	FocusAreas               []string            `json:"focus_areas"`
	EstimatedDurationMinutes int                 `json:"estimated_duration_minutes"`
	Exercises                []aiWorkoutExercise `json:"exercises"`
}

type aiWorkoutExercise struct {
	ExerciseName string  `json:"exercise_name"`
	Sets         int     `json:"sets"`
	Reps         RepSpec `json:"reps"`
	RestSeconds  int     `json:"rest_seconds"`
	Intensity    string  `json:"intensity"`
	Notes        string  `json:"notes"`
}

// aiGenerator produces programs with an LLM. Its output is advisory; every
// caller must be prepared to fall back to the rule-based generator.
type aiGenerator struct {
	client openai.Client
}

func newAIGenerator(apiKey string) *aiGenerator {
	return &aiGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

// generate asks the model for a program constrained to the candidate
// exercises and parses its JSON reply.
func (g *aiGenerator) generate(
	ctx context.Context,
	request ProgramRequest,
	candidates []exercise.Exercise,
	history HistorySummary,
) (aiProgram, error) {
	prompt := buildProgramPrompt(request, candidates, history)

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return aiProgram{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return aiProgram{}, errors.New("chat completion returned no choices")
	}

	var program aiProgram
	content := stripCodeFences(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &program); err != nil {
		return aiProgram{}, fmt.Errorf("parse program JSON: %w", err)
	}
	if len(program.Weeks) == 0 {
		return aiProgram{}, errors.New("program has no weeks")
	}
	return program, nil
}

func buildProgramPrompt(request ProgramRequest, candidates []exercise.Exercise, history HistorySummary) string {
	var b strings.Builder

	b.WriteString("Design a training program as JSON with this exact shape:\n")
	b.WriteString(`{"name": string, "description": string, "weeks": [{"week_number": int, "focus": string, "notes": string, "workouts": [{"day_number": int, "name": string, "focus_areas": [string], "estimated_duration_minutes": int, "exercises": [{"exercise_name": string, "sets": int, "reps": int or "low-high" string, "rest_seconds": int}]}]}]}`)
	b.WriteString("\n\n")

	if request.Type == TypeDaily {
		b.WriteString("Produce a single-day program: exactly one week containing exactly one workout.\n")
	} else {
		fmt.Fprintf(&b, "Produce a %d-week program with %d workouts per week.\n",
			request.DurationWeeks, request.DaysPerWeek)
	}
	fmt.Fprintf(&b, "Each session should fit in %d minutes.\n", request.TimePerSessionMinutes)
	fmt.Fprintf(&b, "Fitness level: %s.\n", request.FitnessLevel)
	if len(request.TargetMuscleGroups) > 0 {
		fmt.Fprintf(&b, "Target muscle groups: %s.\n", strings.Join(request.TargetMuscleGroups, ", "))
	}

	if history.HasHistory {
		fmt.Fprintf(&b, "The user logged %d workouts in the last 30 days with an average difficulty rating of %.1f out of 10.\n",
			history.WorkoutCount, history.AvgDifficulty)
		if len(history.MuscleFrequency) > 0 {
			b.WriteString("Muscle groups trained in that window: ")
			b.WriteString(muscleFrequencyLine(history.MuscleFrequency))
			b.WriteString(". Balance the program against what was trained most.\n")
		}
		if history.RecentWorkoutCount > 0 {
			fmt.Fprintf(&b, "They trained %d times in the last 3 days, so keep fatigue in mind.\n",
				history.RecentWorkoutCount)
		}
	} else {
		b.WriteString("The user has no training history yet.\n")
	}

	b.WriteString("\nUse only exercises from this list, with exercise_name copied exactly:\n")
	for _, candidate := range candidates {
		fmt.Fprintf(&b, "- %s (%s, works %s)\n",
			candidate.Name, candidate.Difficulty, strings.Join(candidate.MuscleGroups, ", "))
	}
	return b.String()
}

// muscleFrequencyLine renders the frequency map as "chest 4x, back 2x",
// most-trained first with ties broken alphabetically.
func muscleFrequencyLine(frequency map[string]int) string {
	muscles := make([]string, 0, len(frequency))
	for muscle := range frequency {
		muscles = append(muscles, muscle)
	}
	sort.Slice(muscles, func(i, j int) bool {
		if frequency[muscles[i]] != frequency[muscles[j]] {
			return frequency[muscles[i]] > frequency[muscles[j]]
		}
		return muscles[i] < muscles[j]
	})
	parts := make([]string, 0, len(muscles))
	for _, muscle := range muscles {
		parts = append(parts, fmt.Sprintf("%s %dx", muscle, frequency[muscle]))
	}
	return strings.Join(parts, ", ")
}

// stripCodeFences tolerates models that wrap their JSON in a markdown code
// block despite being told not to.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
