package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certiva/internal/jwttoken"
	"certiva/pkg/apperrors"
)

func newTestService() *Service {
	return NewService(
		NewInMemoryUserStore(),
		jwttoken.New("test-key", "certiva", time.Hour),
		slog.New(slog.DiscardHandler),
	)
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:    "hr@example.com",
		Password: "s3cret-pass",
		Name:     "HR Reviewer",
		Role:     RoleVerifier,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	profile, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "hr@example.com", profile.Email)
	assert.Equal(t, RoleVerifier, profile.Role)
	assert.NotEqual(t, uuid.Nil, profile.ID)

	result, err := svc.Login(ctx, LoginInput{Email: "hr@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, profile.ID, result.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short password", func(in *RegisterInput) { in.Password = "abc" }, "password"},
		{"missing name", func(in *RegisterInput) { in.Name = "  " }, "name"},
		{"unknown role", func(in *RegisterInput) { in.Role = "superuser" }, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(ctx, in)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

			var appErr *apperrors.Error
			require.ErrorAs(t, err, &appErr)
			require.Len(t, appErr.Fields, 1)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever"})
	_, wrongErr := svc.Login(ctx, LoginInput{Email: "hr@example.com", Password: "wrong-pass"})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.True(t, apperrors.HasCode(unknownErr, apperrors.CodeUnauthorized))
	assert.True(t, apperrors.HasCode(wrongErr, apperrors.CodeUnauthorized))
}

func TestGetMe(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	profile, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	got, err := svc.GetMe(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.Email, got.Email)

	_, err = svc.GetMe(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
