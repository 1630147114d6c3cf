package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/models"
	"eventplanner/internal/pocketbase"
)

var errBoom = errors.New("boom")

func validRegistration() Registration {
	return Registration{
		Username: "jan",
		Email:    "jan@example.com",
		Password: "Secret1!",
		Name:     "Jan",
		Surname:  "Novak",
	}
}

// ============================================================================
// Validation Tests
// ============================================================================

func TestRegistration_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(r *Registration)
		want   error
	}{
		{"valid", func(*Registration) {}, nil},
		{"missing surname", func(r *Registration) { r.Surname = "" }, ErrMissingFields},
		{"missing fields win over bad email", func(r *Registration) {
			r.Name = ""
			r.Email = "nope"
		}, ErrMissingFields},
		{"bad email", func(r *Registration) { r.Email = "jan.example.com" }, ErrInvalidEmail},
		{"bad email wins over weak password", func(r *Registration) {
			r.Email = "jan@"
			r.Password = "weak"
		}, ErrInvalidEmail},
		{"no digit", func(r *Registration) { r.Password = "Secret!!" }, ErrWeakPassword},
		{"no special character", func(r *Registration) { r.Password = "Secret11" }, ErrWeakPassword},
		{"no uppercase", func(r *Registration) { r.Password = "secret1!" }, ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := validRegistration()
			tt.mutate(&r)
			err := r.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnmetRequirements(t *testing.T) {
	t.Parallel()
	assert.Empty(t, UnmetRequirements("Secret1!"))
	assert.Equal(t, []string{"a digit", "an uppercase letter", "a special character"}, UnmetRequirements("secret"))
}

// ============================================================================
// Register Tests
// ============================================================================

type fakeRegistrar struct {
	calls     []string
	created   pocketbase.NewUser
	createErr error
	authErr   error
}

func (f *fakeRegistrar) CreateUser(_ context.Context, u pocketbase.NewUser) (*models.User, error) {
	f.calls = append(f.calls, "create")
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.User{ID: "u5", Username: u.Username}, nil
}

func (f *fakeRegistrar) AuthWithPassword(_ context.Context, identity, _ string) (*pocketbase.AuthResponse, error) {
	f.calls = append(f.calls, "auth:"+identity)
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &pocketbase.AuthResponse{Token: "tok", Record: &models.User{ID: "u5"}}, nil
}

func TestRegister_CreatesThenLogsIn(t *testing.T) {
	t.Parallel()
	store := &fakeRegistrar{}

	sess, err := Register(context.Background(), store, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "auth:jan@example.com"}, store.calls)
	assert.Equal(t, "Secret1!", store.created.PasswordConfirm)
	assert.True(t, store.created.EmailVisibility)
	assert.Equal(t, "tok", sess.AuthToken())
	assert.Equal(t, "u5", sess.User.ID)
}

func TestRegister_InvalidSendsNothing(t *testing.T) {
	t.Parallel()
	store := &fakeRegistrar{}
	r := validRegistration()
	r.Password = "weak"

	_, err := Register(context.Background(), store, r)
	require.ErrorIs(t, err, ErrWeakPassword)
	assert.Empty(t, store.calls)
}

func TestRegister_Failures(t *testing.T) {
	t.Parallel()
	store := &fakeRegistrar{createErr: errBoom}
	_, err := Register(context.Background(), store, validRegistration())
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"create"}, store.calls)

	store = &fakeRegistrar{authErr: errBoom}
	_, err = Register(context.Background(), store, validRegistration())
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "account created")
}
