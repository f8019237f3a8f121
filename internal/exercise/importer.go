package exercise

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"ironlog/internal/errors"
)

const (
	importPageSize     = 50
	importConcurrency  = 4
	maxDescriptionLen  = 500
	importClientTimout = 30 * time.Second
)

// categoryMapping maps wger categories to catalog categories.
var categoryMapping = map[string]Category{ //nolint:gochecknoglobals // static lookup table.
	"Arms":      CategoryStrength,
	"Legs":      CategoryStrength,
	"Abs":       CategoryStrength,
	"Chest":     CategoryStrength,
	"Back":      CategoryStrength,
	"Shoulders": CategoryStrength,
	"Calves":    CategoryStrength,
	"Cardio":    CategoryCardio,
}

// muscleMapping maps wger anatomical muscle names to catalog muscle groups.
var muscleMapping = map[string]string{ //nolint:gochecknoglobals // static lookup table.
	"Biceps brachii":              "biceps",
	"Anterior deltoid":            "shoulders",
	"Serratus anterior":           "chest",
	"Pectoralis major":            "chest",
	"Triceps brachii":             "triceps",
	"Latissimus dorsi":            "back",
	"Brachialis":                  "biceps",
	"Obliquus externus abdominis": "abs",
	"Trapezius":                   "back",
	"Gluteus maximus":             "glutes",
	"Quadriceps femoris":          "quadriceps",
	"Biceps femoris":              "hamstrings",
	"Gastrocnemius":               "calves",
	"Soleus":                      "calves",
	"Rectus abdominis":            "abs",
	"Deltoid":                     "shoulders",
	"Erector spinae":              "lower back",
}

// equipmentMapping maps wger equipment names to catalog equipment. An empty
// mapped value means the entry is dropped (bodyweight).
var equipmentMapping = map[string]string{ //nolint:gochecknoglobals // static lookup table.
	"Barbell":                    "barbell",
	"Dumbbell":                   "dumbbells",
	"Gym mat":                    "mat",
	"Swiss Ball":                 "swiss ball",
	"Pull-up bar":                "pull-up bar",
	"none (bodyweight exercise)": "",
	"Bench":                      "bench",
	"Incline bench":              "bench",
	"Kettlebell":                 "kettlebell",
	"EZ Bar":                     "ez bar",
	"Cable":                      "cable machine",
	"Cables":                     "cable machine",
}

// englishLanguageID is the wger identifier for English translations.
const englishLanguageID = 2

// Importer pulls template exercises from the wger.de exercise database.
type Importer struct {
	svc     *Service
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewImporter creates an importer against the given wger API base URL, e.g.
// https://wger.de/api/v2.
func NewImporter(svc *Service, baseURL string, logger *slog.Logger) *Importer {
	return &Importer{
		svc:     svc,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: importClientTimout},
		logger:  logger,
	}
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

type wgerMuscle struct {
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
}

type wgerExercise struct {
	Category struct {
		Name string `json:"name"`
	} `json:"category"`
	Muscles          []wgerMuscle `json:"muscles"`
	MusclesSecondary []wgerMuscle `json:"muscles_secondary"`
	Equipment        []struct {
		Name string `json:"name"`
	} `json:"equipment"`
	Translations []struct {
		Language    int    `json:"language"`
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"translations"`
}

type wgerPage struct {
	Count   int            `json:"count"`
	Results []wgerExercise `json:"results"`
}

// Run imports all wger exercises that are not yet present in the catalog.
// Pages after the first are fetched concurrently with a bounded errgroup.
func (imp *Importer) Run(ctx context.Context) (ImportReport, error) {
	first, err := imp.fetchPage(ctx, 0)
	if err != nil {
		return ImportReport{}, errors.Wrap(err, "fetch first page")
	}

	pageCount := (first.Count + importPageSize - 1) / importPageSize
	pages := make([]wgerPage, pageCount)
	if pageCount > 0 {
		pages[0] = first
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(importConcurrency)
	for page := 1; page < pageCount; page++ {
		g.Go(func() error {
			fetched, fetchErr := imp.fetchPage(groupCtx, page*importPageSize)
			if fetchErr != nil {
				return errors.Wrap(fetchErr, "fetch page", slog.Int("page", page))
			}
			pages[page] = fetched
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return ImportReport{}, err
	}

	var report ImportReport
	for _, page := range pages {
		for _, raw := range page.Results {
			ex, ok := transformWgerExercise(raw)
			if !ok {
				report.Skipped++
				continue
			}

			var taken bool
			if taken, err = imp.svc.repo.exists(ctx, ex.Name); err != nil {
				return report, errors.Wrap(err, "check exercise name", slog.String("name", ex.Name))
			}
			if taken {
				report.Skipped++
				continue
			}

			if err = imp.svc.insertTemplate(ctx, ex); err != nil {
				return report, err
			}
			report.Imported++
		}
	}

	imp.logger.LogAttrs(ctx, slog.LevelInfo, "imported wger exercises",
		slog.Int("imported", report.Imported), slog.Int("skipped", report.Skipped))
	return report, nil
}

func (imp *Importer) fetchPage(ctx context.Context, offset int) (wgerPage, error) {
	endpoint := fmt.Sprintf("%s/exerciseinfo/?%s", imp.baseURL, url.Values{
		"language": {fmt.Sprint(englishLanguageID)},
		"limit":    {fmt.Sprint(importPageSize)},
		"offset":   {fmt.Sprint(offset)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return wgerPage{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := imp.client.Do(req)
	if err != nil {
		return wgerPage{}, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return wgerPage{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}

	var page wgerPage
	if err = json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return wgerPage{}, fmt.Errorf("decode page: %w", err)
	}
	return page, nil
}

// transformWgerExercise converts a wger payload into a catalog exercise.
// Returns false when the entry has no usable English name.
func transformWgerExercise(raw wgerExercise) (Exercise, bool) {
	if len(raw.Translations) == 0 {
		return Exercise{}, false
	}
	translation := raw.Translations[0]
	for _, t := range raw.Translations {
		if t.Language == englishLanguageID {
			translation = t
			break
		}
	}

	name := strings.TrimSpace(translation.Name)
	if name == "" {
		return Exercise{}, false
	}

	category, ok := categoryMapping[raw.Category.Name]
	if !ok {
		category = CategoryStrength
	}

	var muscles []string
	seen := make(map[string]struct{})
	for _, muscle := range append(raw.Muscles, raw.MusclesSecondary...) {
		mapped := strings.ToLower(strings.TrimSpace(muscle.NameEn))
		if mapped == "" {
			if m, known := muscleMapping[strings.TrimSpace(muscle.Name)]; known {
				mapped = m
			} else {
				mapped = strings.ToLower(strings.TrimSpace(muscle.Name))
			}
		}
		if mapped == "" {
			continue
		}
		if _, dup := seen[mapped]; dup {
			continue
		}
		seen[mapped] = struct{}{}
		muscles = append(muscles, mapped)
	}

	var equipment []string
	seenEquipment := make(map[string]struct{})
	for _, equip := range raw.Equipment {
		mapped, known := equipmentMapping[equip.Name]
		if !known {
			mapped = strings.ToLower(equip.Name)
		}
		if mapped == "" {
			continue
		}
		if _, dup := seenEquipment[mapped]; dup {
			continue
		}
		seenEquipment[mapped] = struct{}{}
		equipment = append(equipment, mapped)
	}

	description := truncateDescription(stripHTML(translation.Description))

	return Exercise{
		Name:         name,
		Description:  description,
		Category:     category,
		MuscleGroups: muscles,
		Equipment:    equipment,
		Difficulty:   estimateDifficulty(muscles, equipment),
		Instructions: description,
		IsTemplate:   true,
		CreatedBy:    nil,
	}, true
}

// truncateDescription caps the description at maxDescriptionLen bytes,
// backing up to the previous rune boundary so a multi-byte character is
// never cut in half.
func truncateDescription(description string) string {
	if len(description) <= maxDescriptionLen {
		return description
	}
	cut := maxDescriptionLen
	for cut > 0 && !utf8.RuneStart(description[cut]) {
		cut--
	}
	return description[:cut]
}

// estimateDifficulty applies a heuristic since wger has no difficulty field.
func estimateDifficulty(muscles, equipment []string) Difficulty {
	difficulty := DifficultyBeginner
	heavyEquipment := false
	for _, equip := range equipment {
		if equip == "barbell" || equip == "cable machine" {
			heavyEquipment = true
		}
	}
	if len(muscles) > 3 || heavyEquipment {
		difficulty = DifficultyIntermediate
	}
	if len(equipment) == 0 && len(muscles) > 2 {
		difficulty = DifficultyIntermediate
	}
	return difficulty
}

// stripHTML extracts the text content of wger descriptions which arrive as
// HTML fragments.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	text := doc.Text()
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return strings.TrimSpace(text)
}
