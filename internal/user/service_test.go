package user_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ironlog/internal/errors"
	"ironlog/internal/sqlite"
	"ironlog/internal/testhelpers"
	"ironlog/internal/user"
)

func newTestService(t *testing.T) *user.Service {
	t.Helper()
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return user.NewService(db, logger)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)

	registered, err := svc.Register(ctx, "Lifter@Example.com", "supersecret", "Lifter")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registered.Email != "lifter@example.com" {
		t.Errorf("Register() email = %q, want lowercased", registered.Email)
	}
	if registered.Profile.FitnessLevel != user.LevelBeginner {
		t.Errorf("Register() fitness level = %q, want beginner", registered.Profile.FitnessLevel)
	}

	if _, err = svc.Register(ctx, "lifter@example.com", "othersecret", "Dup"); !errors.Is(err, user.ErrEmailTaken) {
		t.Errorf("Register() duplicate email error = %v, want ErrEmailTaken", err)
	}

	authenticated, err := svc.Authenticate(ctx, "lifter@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if authenticated.ID != registered.ID {
		t.Errorf("Authenticate() ID = %d, want %d", authenticated.ID, registered.ID)
	}

	if _, err = svc.Authenticate(ctx, "lifter@example.com", "wrongpassword"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("Authenticate() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err = svc.Authenticate(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("Authenticate() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)

	if _, err := svc.Register(ctx, "not-an-email", "supersecret", ""); !errors.Is(err, user.ErrInvalidEmail) {
		t.Errorf("Register() error = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Register(ctx, "short@example.com", "short", ""); !errors.Is(err, user.ErrWeakPassword) {
		t.Errorf("Register() error = %v, want ErrWeakPassword", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)

	registered, err := svc.Register(ctx, "lifter@example.com", "supersecret", "Lifter")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	want := user.Profile{
		FitnessLevel:             user.LevelIntermediate,
		Goals:                    []string{"strength", "hypertrophy"},
		AvailableEquipment:       []string{"barbell", "bench"},
		PreferredDurationMinutes: 45,
	}
	if err = svc.UpdateProfile(ctx, registered.ID, want); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := svc.Get(ctx, registered.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(want, got.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	bogus := want
	bogus.FitnessLevel = "superhuman"
	if err = svc.UpdateProfile(ctx, registered.ID, bogus); !errors.Is(err, user.ErrInvalidLevel) {
		t.Errorf("UpdateProfile() error = %v, want ErrInvalidLevel", err)
	}
}

func TestGymProfileDefaultSwitch(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)

	registered, err := svc.Register(ctx, "lifter@example.com", "supersecret", "Lifter")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	home, err := svc.SaveGymProfile(ctx, registered.ID, user.GymProfile{
		Name:      "Home",
		Equipment: []string{"dumbbells"},
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("SaveGymProfile() error = %v", err)
	}
	if !home.IsDefault {
		t.Error("expected first gym profile to be default")
	}

	gym, err := svc.SaveGymProfile(ctx, registered.ID, user.GymProfile{
		Name:      "Commercial Gym",
		Equipment: []string{"barbell", "cable machine"},
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("SaveGymProfile() error = %v", err)
	}
	if !gym.IsDefault {
		t.Error("expected second gym profile to be default")
	}

	// The previous default should have been cleared.
	home, err = svc.GymProfile(ctx, registered.ID, home.ID)
	if err != nil {
		t.Fatalf("GymProfile() error = %v", err)
	}
	if home.IsDefault {
		t.Error("expected previous default to be cleared")
	}

	profiles, err := svc.GymProfiles(ctx, registered.ID)
	if err != nil {
		t.Fatalf("GymProfiles() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("GymProfiles() count = %d, want 2", len(profiles))
	}

	if err = svc.DeleteGymProfile(ctx, registered.ID, home.ID); err != nil {
		t.Fatalf("DeleteGymProfile() error = %v", err)
	}
	if err = svc.DeleteGymProfile(ctx, registered.ID, home.ID); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("DeleteGymProfile() repeated delete error = %v, want ErrNotFound", err)
	}
}

func TestDefaultEquipmentMergesProfileAndGym(t *testing.T) {
	ctx := t.Context()
	svc := newTestService(t)

	registered, err := svc.Register(ctx, "lifter@example.com", "supersecret", "Lifter")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err = svc.UpdateProfile(ctx, registered.ID, user.Profile{
		FitnessLevel:       user.LevelBeginner,
		AvailableEquipment: []string{"dumbbells", "bench"},
	}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if _, err = svc.SaveGymProfile(ctx, registered.ID, user.GymProfile{
		Name:      "Gym",
		Equipment: []string{"bench", "barbell"},
		IsDefault: true,
	}); err != nil {
		t.Fatalf("SaveGymProfile() error = %v", err)
	}

	got, err := svc.DefaultEquipment(ctx, registered.ID)
	if err != nil {
		t.Fatalf("DefaultEquipment() error = %v", err)
	}
	want := []string{"dumbbells", "bench", "barbell"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultEquipment() mismatch (-want +got):\n%s", diff)
	}
}
