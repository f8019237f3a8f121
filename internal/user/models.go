package user

import "time"

// FitnessLevel describes how experienced a user is. It shares its vocabulary
// with exercise difficulty tiers so the two can be matched directly.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// Valid reports whether the fitness level is one of the known tiers.
func (l FitnessLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Profile holds the training preferences attached to a user account.
type Profile struct {
	FitnessLevel             FitnessLevel `json:"fitness_level"`
	Goals                    []string     `json:"goals"`
	AvailableEquipment       []string     `json:"available_equipment"`
	PreferredDurationMinutes int          `json:"preferred_duration_minutes"`
}

// User is a registered account.
type User struct {
	ID      int64     `json:"id"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Profile Profile   `json:"profile"`
	Created time.Time `json:"created_at"`
}

// GymProfile is a named equipment set. At most one profile per user is the
// default used for workout generation.
type GymProfile struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Equipment []string `json:"equipment"`
	IsDefault bool     `json:"is_default"`
}
