package service

import (
	"errors"
	"testing"
	"time"

	"feeportal/internal/domain"
	"feeportal/internal/storetest"
	"feeportal/pkg/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func otpFor(t *testing.T, m *storetest.Mailer) string {
	t.Helper()
	sent, ok := m.Last(mail.TemplateEmailOTP)
	require.True(t, ok, "otp mail not sent")
	return sent.Data.(string)
}

func TestRegisterVerifyLoginMe(t *testing.T) {
	e := newEnv()
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)

	u, err := svc.Register("Asha", " Asha@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.False(t, u.IsVerified)

	_, _, err = svc.Login("asha@example.com", "secret1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.VerifyOTP("asha@example.com", "000000")
	assert.ErrorIs(t, err, ErrValidation)

	verified, err := svc.VerifyOTP("asha@example.com", otpFor(t, e.mailer))
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Empty(t, verified.VerifyOTP)

	user, pair, err := svc.Login("asha@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, u.ID, user.ID)

	me, err := svc.Me(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", me.Name)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	e := newEnv()
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)
	_, err := svc.Register("Asha", "asha@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login("asha@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Login("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterOverwritesUnverifiedAndRejectsVerified(t *testing.T) {
	e := newEnv()
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)

	first, err := svc.Register("First", "dup@example.com", "secret1")
	require.NoError(t, err)
	second, err := svc.Register("Second", "dup@example.com", "secret2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Second", second.Name)

	_, err = svc.VerifyOTP("dup@example.com", otpFor(t, e.mailer))
	require.NoError(t, err)

	_, err = svc.Register("Third", "dup@example.com", "secret3")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegisterFailsWhenOTPMailFails(t *testing.T) {
	e := newEnv()
	e.mailer.Err = errors.New("smtp down")
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)

	_, err := svc.Register("Asha", "asha@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRefreshToken(t *testing.T) {
	e := newEnv()
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)
	_, err := svc.Register("Asha", "asha@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.VerifyOTP("asha@example.com", otpFor(t, e.mailer))
	require.NoError(t, err)
	user, pair, err := svc.Login("asha@example.com", "secret1")
	require.NoError(t, err)

	next, err := svc.RefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	tampered, err := svc.RefreshToken(pair.RefreshToken + "x")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Nil(t, tampered)

	// an access token is signed with a different secret
	_, err = svc.RefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, e.users.Delete(user.ID))
	_, err = svc.RefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshTokenExpired(t *testing.T) {
	e := newEnv()
	e.cfg.JWT.RefreshExpiry = -time.Minute
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)
	u := e.seedUser(domain.RoleAdmin, "old@example.com", 1)

	pair, err := svc.issue(u)
	require.NoError(t, err)
	_, err = svc.RefreshToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestForgetAndResetPassword(t *testing.T) {
	e := newEnv()
	svc := NewAuthService(e.cfg, e.users, e.mailer, e.log)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	u := e.seedUser(domain.RoleAdmin, "reset@example.com", 1)

	assert.ErrorIs(t, svc.ForgetPassword("missing@example.com"), ErrNotFound)
	require.NoError(t, svc.ForgetPassword("reset@example.com"))

	stored, err := e.users.GetByID(u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	token := *stored.ResetPasswordToken
	assert.Len(t, token, 64)

	sent, ok := e.mailer.Last(mail.TemplateForgotPassword)
	require.True(t, ok)
	assert.Equal(t, "http://front.test/resetpassword/"+token, sent.Data)

	_, err = svc.ResetPassword("bogus", "newpass1")
	assert.ErrorIs(t, err, ErrValidation)

	now = now.Add(11 * time.Minute)
	_, err = svc.ResetPassword(token, "newpass1")
	assert.ErrorIs(t, err, ErrValidation)

	now = now.Add(-5 * time.Minute)
	_, err = svc.ResetPassword(token, "newpass1")
	require.NoError(t, err)
	assert.Equal(t, 1, e.mailer.Count(mail.TemplatePasswordUpdate))

	_, _, err = svc.Login("reset@example.com", "newpass1")
	assert.NoError(t, err)
	_, err = e.users.GetByResetToken(token)
	assert.Error(t, err)
}
