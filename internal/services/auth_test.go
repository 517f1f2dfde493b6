package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasbeha/deaconschool-backend/internal/data/repos"
	"github.com/tasbeha/deaconschool-backend/internal/data/repos/testutil"
	"github.com/tasbeha/deaconschool-backend/internal/domain"
	"github.com/tasbeha/deaconschool-backend/internal/pkg/ctxutil"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)
	return NewAuthService(repos.NewUserRepo(tx, log), log)
}

func TestSignupLoginRoundTrip(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	signedUp, err := auth.Signup(ctx, SignupInput{
		Email:     "Mina@Example.org",
		Password:  "longenough",
		FirstName: "Mina",
		LastName:  "Gerges",
	})
	require.NoError(t, err)
	require.Equal(t, "mina@example.org", signedUp.User.Email)
	require.Equal(t, domain.RoleDeacon, signedUp.User.Role)
	require.NotEmpty(t, signedUp.AccessToken)

	loggedIn, err := auth.Login(ctx, LoginInput{Email: "mina@example.org", Password: "longenough"})
	require.NoError(t, err)
	require.Equal(t, signedUp.User.ID, loggedIn.User.ID)

	authed, err := auth.SetContextFromToken(ctx, "Bearer "+loggedIn.AccessToken)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	require.Equal(t, signedUp.User.ID, rd.UserID)
	require.Equal(t, domain.RoleDeacon, rd.Role)
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupInput{Email: "kyrillos@example.org", Password: "longenough"})
	require.NoError(t, err)
	_, err = auth.Signup(ctx, SignupInput{Email: "kyrillos@example.org", Password: "longenough"})
	require.True(t, domain.IsCode(err, domain.CodeConflict))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, SignupInput{Email: "verena@example.org", Password: "longenough"})
	require.NoError(t, err)
	_, err = auth.Login(ctx, LoginInput{Email: "verena@example.org", Password: "wrongpass"})
	require.True(t, domain.IsCode(err, domain.CodeValidation))
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	auth := newAuthService(t)
	_, err := auth.SetContextFromToken(context.Background(), "not-a-token")
	require.True(t, domain.IsCode(err, domain.CodeValidation))
}
