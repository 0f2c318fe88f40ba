package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loankeeper/internal/common"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.auth.Register(ctx, RegisterInput{
		Email:       "Anna@Example.Com",
		Password:    "secret-pin",
		DisplayName: "Anna",
	})
	require.NoError(t, err)
	assert.Equal(t, "anna@example.com", sess.Email, "email normalized at registration")
	assert.NotEmpty(t, sess.UserID)
	require.NotNil(t, f.sessions.CurrentUser())

	require.NoError(t, f.auth.Logout(ctx))
	assert.Nil(t, f.sessions.CurrentUser())

	got, err := f.auth.Login(ctx, "ANNA@example.com", "secret-pin")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID, "lookup is case-insensitive")
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, RegisterInput{Email: "", Password: "secret-pin"})
	assert.ErrorIs(t, err, common.ErrEmailRequired)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "noatsign", Password: "secret-pin"})
	assert.ErrorIs(t, err, common.ErrEmailRequired)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)
}

func TestRegister_DuplicateEmailAndPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.auth.Register(ctx, RegisterInput{Email: "a@b.c", Password: "secret-pin", Phone: "+91555"})
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "A@B.C", Password: "secret-pin"})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "x@y.z", Password: "secret-pin", Phone: "+91555"})
	assert.ErrorIs(t, err, common.ErrPhoneTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@b.c")

	_, err := f.auth.Login(ctx, "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, "nobody@b.c", "secret-pin")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@b.c")
	require.NoError(t, f.auth.Logout(ctx))

	_, err := f.auth.RequestPasswordReset(ctx, "nobody@b.c")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	code, err := f.auth.RequestPasswordReset(ctx, "a@b.c")
	require.NoError(t, err)
	require.Len(t, code, 6)

	// wrong code is rejected and changes nothing
	err = f.auth.ConfirmPasswordReset(ctx, "a@b.c", "000000", "new-secret")
	if code == "000000" {
		t.Skip("collided with the generated code")
	}
	assert.ErrorIs(t, err, common.ErrInvalidResetCode)

	require.NoError(t, f.auth.ConfirmPasswordReset(ctx, "a@b.c", code, "new-secret"))

	// the code is single-use
	err = f.auth.ConfirmPasswordReset(ctx, "a@b.c", code, "another-secret")
	assert.ErrorIs(t, err, common.ErrInvalidResetCode)

	_, err = f.auth.Login(ctx, "a@b.c", "secret-pin")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "a@b.c", "new-secret")
	assert.NoError(t, err)
}

func TestConfirmPasswordReset_TooShort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@b.c")

	err := f.auth.ConfirmPasswordReset(ctx, "a@b.c", "123456", "abc")
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@b.c")

	err := f.auth.ChangePassword(ctx, "wrong", "new-secret")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	require.NoError(t, f.auth.ChangePassword(ctx, "secret-pin", "new-secret"))
	require.NoError(t, f.auth.Logout(ctx))

	_, err = f.auth.Login(ctx, "a@b.c", "new-secret")
	assert.NoError(t, err)
}

func TestChangePassword_RequiresSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	err := f.auth.ChangePassword(ctx, "a", "new-secret")
	assert.ErrorIs(t, err, common.ErrNotSignedIn)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.registerUser(t, "a@b.c")

	sess, err := f.auth.UpdateProfile(ctx, ProfileInput{DisplayName: "Anna", Phone: "+91777"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", sess.DisplayName)
	assert.Equal(t, "Anna", f.sessions.CurrentUser().DisplayName)

	// keeping one's own phone is not a conflict
	_, err = f.auth.UpdateProfile(ctx, ProfileInput{DisplayName: "Anna", Phone: "+91777"})
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx))
	f.registerUser(t, "b@c.d")
	_, err = f.auth.UpdateProfile(ctx, ProfileInput{Phone: "+91777"})
	assert.ErrorIs(t, err, common.ErrPhoneTaken)
}
