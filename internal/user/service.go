// Package user manages accounts, fitness profiles, and gym profiles.
package user

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
)

var (
	ErrNotFound           = errors.NewSentinel("user: not found")
	ErrEmailTaken         = errors.NewSentinel("user: email already registered")
	ErrInvalidCredentials = errors.NewSentinel("user: invalid credentials")
	ErrWeakPassword       = errors.NewSentinel("user: password must be at least 8 characters")
	ErrInvalidEmail       = errors.NewSentinel("user: invalid email address")
	ErrInvalidLevel       = errors.NewSentinel("user: invalid fitness level")
	ErrInvalidInput       = errors.NewSentinel("user: invalid input")
)

const minPasswordLength = 8

// Service provides account and profile operations.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.Wrap(err, "hash password")
	}

	id, err := s.repo.insertUser(ctx, email, hash, name)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return User{}, ErrEmailTaken
		}
		return User{}, errors.Wrap(err, "insert user", slog.String("email", email))
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "registered user", slog.Int64("user_id", id))
	return s.repo.getUser(ctx, id)
}

// Authenticate verifies an email/password pair and returns the matching user.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	id, hash, err := s.repo.getCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "lookup credentials")
	}

	if err = bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return s.repo.getUser(ctx, id)
}

// Get returns the user with the given ID.
func (s *Service) Get(ctx context.Context, userID int64) (User, error) {
	u, err := s.repo.getUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, errors.Wrap(err, "get user", slog.Int64("user_id", userID))
	}
	return u, nil
}

// UpdateProfile overwrites the fitness profile of a user.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, profile Profile) error {
	if profile.FitnessLevel == "" {
		profile.FitnessLevel = LevelBeginner
	}
	if !profile.FitnessLevel.Valid() {
		return ErrInvalidLevel
	}
	if err := s.repo.saveProfile(ctx, userID, profile); err != nil {
		return errors.Wrap(err, "save profile", slog.Int64("user_id", userID))
	}
	return nil
}

// GymProfiles lists the gym profiles owned by the user.
func (s *Service) GymProfiles(ctx context.Context, userID int64) ([]GymProfile, error) {
	profiles, err := s.repo.listGymProfiles(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list gym profiles", slog.Int64("user_id", userID))
	}
	return profiles, nil
}

// GymProfile returns a single gym profile owned by the user.
func (s *Service) GymProfile(ctx context.Context, userID, profileID int64) (GymProfile, error) {
	return s.repo.getGymProfile(ctx, userID, profileID)
}

// SaveGymProfile creates or updates a gym profile and returns it. Setting a
// profile as default clears the previous default atomically.
func (s *Service) SaveGymProfile(ctx context.Context, userID int64, profile GymProfile) (GymProfile, error) {
	if strings.TrimSpace(profile.Name) == "" {
		return GymProfile{}, errors.Wrap(ErrInvalidInput, "gym profile name must not be empty")
	}
	id, err := s.repo.saveGymProfile(ctx, userID, profile)
	if err != nil {
		return GymProfile{}, err
	}
	return s.repo.getGymProfile(ctx, userID, id)
}

// DeleteGymProfile removes a gym profile owned by the user.
func (s *Service) DeleteGymProfile(ctx context.Context, userID, profileID int64) error {
	return s.repo.deleteGymProfile(ctx, userID, profileID)
}

// DefaultEquipment returns the equipment of the default gym profile merged
// with the equipment listed on the user's fitness profile.
func (s *Service) DefaultEquipment(ctx context.Context, userID int64) ([]string, error) {
	u, err := s.repo.getUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get user", slog.Int64("user_id", userID))
	}
	gymEquipment, err := s.repo.defaultGymEquipment(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "get default gym equipment")
	}

	seen := make(map[string]struct{})
	var merged []string
	for _, equipment := range append(u.Profile.AvailableEquipment, gymEquipment...) {
		if _, ok := seen[equipment]; ok {
			continue
		}
		seen[equipment] = struct{}{}
		merged = append(merged, equipment)
	}
	return merged, nil
}
