package exercise

// Category represents the type of exercise.
type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryFlexibility Category = "flexibility"
	CategoryBalance     Category = "balance"
)

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryStrength, CategoryCardio, CategoryFlexibility, CategoryBalance:
		return true
	}
	return false
}

// Difficulty is the tier an exercise is suitable for. It shares its
// vocabulary with user fitness levels.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether the difficulty is one of the known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Exercise is a catalog entry, either a shared template or a user-created
// exercise. An empty Equipment list means the exercise needs no equipment.
type Exercise struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	MuscleGroups []string   `json:"muscle_groups"`
	Equipment    []string   `json:"equipment"`
	Difficulty   Difficulty `json:"difficulty"`
	Instructions string     `json:"instructions"`
	IsTemplate   bool       `json:"is_template"`
	CreatedBy    *int64     `json:"created_by,omitempty"`
}

// Filter narrows down catalog listings. Zero values match everything.
type Filter struct {
	Category    Category
	Difficulty  Difficulty
	MuscleGroup string
}
