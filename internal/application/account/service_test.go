package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/course-agent-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

type mockVerificationStore struct {
	mock.Mock
}

func (m *mockVerificationStore) Put(ctx context.Context, v *domain.Verification) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *mockVerificationStore) Get(ctx context.Context, userID, verType string) (*domain.Verification, error) {
	args := m.Called(ctx, userID, verType)
	if v := args.Get(0); v != nil {
		return v.(*domain.Verification), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVerificationStore) Delete(ctx context.Context, userID, verType string) error {
	args := m.Called(ctx, userID, verType)
	return args.Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func newTestService() (Service, *mockUserStore, *mockVerificationStore, *mockMailer) {
	users := new(mockUserStore)
	vers := new(mockVerificationStore)
	mail := new(mockMailer)
	svc := NewService(ServiceDeps{UserRepo: users, VerificationRepo: vers, Mailer: mail})
	return svc, users, vers, mail
}

func hashOf(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func notFoundErr() error {
	return domain.E(domain.ErrNotFound, "no such record")
}

func connErr() error {
	return errors.New("dial tcp: connection refused")
}

func TestSignupPasswordMismatch(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}

	err := svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "pw1", ConfirmPassword: "pw2",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)

	err := svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSignupStoreUnreachable(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, connErr())

	err := svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConnection))
}

func TestSignupHappyPath(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}

	var stored *domain.User
	var issued *domain.Verification
	users.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, notFoundErr())
	users.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.User)
	}).Return(nil)
	vers.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		issued = args.Get(1).(*domain.Verification)
	}).Return(nil)
	mail.On("SendEmail", mock.Anything, "john@example.com", mock.Anything, mock.Anything).Return(nil)

	err := svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.StatusNotVerified, stored.Status)
	assert.NotEmpty(t, stored.UserID)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))

	require.NotNil(t, issued)
	assert.Equal(t, stored.UserID, issued.UserID)
	assert.Equal(t, domain.VerificationSignup, issued.Type)
	assert.Len(t, issued.Code, 6)
	assert.Greater(t, issued.ExpiresAt, time.Now().Unix())
	assert.LessOrEqual(t, issued.ExpiresAt, time.Now().Add(codeTTL).Unix())

	assert.Equal(t, "john@example.com", sess.Email)
	assert.Contains(t, sess.Info, "john@example.com")
	mail.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestSignupEmailDeliveryFails(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, notFoundErr())
	users.On("Put", mock.Anything, mock.Anything).Return(nil)
	vers.On("Put", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("brevo: status 500"))

	err := svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "pw1", ConfirmPassword: "pw1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDelivery))
	// The account stays persisted so verification can be retried later.
	users.AssertCalled(t, "Put", mock.Anything, mock.Anything)
	assert.Equal(t, "john@example.com", sess.Email)
}

func TestVerifyOTPHappyPath(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	u := &domain.User{UserID: "u1", Name: "John", Email: "john@example.com", Status: domain.StatusNotVerified}
	users.On("GetByEmail", mock.Anything, "john@example.com").Return(u, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationSignup).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationSignup,
			Code: "654321", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}, nil)
	users.On("Update", mock.Anything, "u1", map[string]interface{}{fieldStatus: domain.StatusVerified}).Return(nil)
	vers.On("Delete", mock.Anything, "u1", domain.VerificationSignup).Return(nil)

	err := svc.VerifyOTP(context.Background(), sess, "654321")

	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, "John", sess.Name)
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationSignup).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationSignup,
			Code: "654321", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}, nil)

	err := svc.VerifyOTP(context.Background(), sess, "111111")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	assert.False(t, sess.Authenticated())
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationSignup).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationSignup,
			Code: "654321", ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		}, nil)

	err := svc.VerifyOTP(context.Background(), sess, "654321")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
	assert.Contains(t, err.Error(), "expired")
}

func TestVerifyOTPWithoutPendingEmail(t *testing.T) {
	svc, _, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}

	err := svc.VerifyOTP(context.Background(), sess, "654321")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestVerifyOTPReplayFails(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Name: "John", Email: "john@example.com"}, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationSignup).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationSignup,
			Code: "654321", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}, nil).Once()
	users.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)
	vers.On("Delete", mock.Anything, "u1", domain.VerificationSignup).Return(nil)
	// After the first success the record is gone.
	vers.On("Get", mock.Anything, "u1", domain.VerificationSignup).Return(nil, notFoundErr())

	require.NoError(t, svc.VerifyOTP(context.Background(), sess, "654321"))

	replay := &domain.Session{SessionID: "s2", Email: "john@example.com"}
	err := svc.VerifyOTP(context.Background(), replay, "654321")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestLoginVerifiedUser(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{
			UserID: "u1", Name: "John", Email: "john@example.com",
			PasswordHash: hashOf(t, "pw1"), Status: domain.StatusVerified,
		}, nil)

	err := svc.Login(context.Background(), sess, domain.LoginRequest{Email: "john@example.com", Password: "pw1"})

	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.Equal(t, "u1", sess.UserID)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, notFoundErr())

	err := svc.Login(context.Background(), sess, domain.LoginRequest{Email: "nobody@example.com", Password: "pw1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, sess.Authenticated())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{
			UserID: "u1", Email: "john@example.com",
			PasswordHash: hashOf(t, "pw1"), Status: domain.StatusVerified,
		}, nil)

	err := svc.Login(context.Background(), sess, domain.LoginRequest{Email: "john@example.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
	assert.False(t, sess.Authenticated())
}

func TestLoginNotVerifiedReissuesCode(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{
			UserID: "u1", Name: "John", Email: "john@example.com",
			PasswordHash: hashOf(t, "pw1"), Status: domain.StatusNotVerified,
		}, nil)
	vers.On("Put", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendEmail", mock.Anything, "john@example.com", mock.Anything, mock.Anything).Return(nil)

	err := svc.Login(context.Background(), sess, domain.LoginRequest{Email: "john@example.com", Password: "pw1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotVerified))
	// The session keeps the pending email so the OTP page can resume,
	// but the user is not authenticated yet.
	assert.False(t, sess.Authenticated())
	assert.Equal(t, "john@example.com", sess.Email)
	vers.AssertCalled(t, "Put", mock.Anything, mock.Anything)
	mail.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestForgotPasswordHappyPath(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)

	var issued *domain.Verification
	vers.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		issued = args.Get(1).(*domain.Verification)
	}).Return(nil)
	mail.On("SendEmail", mock.Anything, "john@example.com", mock.Anything, mock.Anything).Return(nil)

	err := svc.ForgotPassword(context.Background(), sess, "john@example.com")

	require.NoError(t, err)
	require.NotNil(t, issued)
	assert.Equal(t, domain.VerificationReset, issued.Type)
	assert.Equal(t, "john@example.com", sess.Email)
	assert.Contains(t, sess.Info, "password reset code")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, notFoundErr())

	err := svc.ForgotPassword(context.Background(), sess, "nobody@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	vers.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestForgotPasswordEmailDeliveryFails(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)
	vers.On("Put", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("brevo: status 503"))

	err := svc.ForgotPassword(context.Background(), sess, "john@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailDelivery))
}

func TestVerifyResetCodeDoesNotConsumeCode(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationReset).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationReset,
			Code: "222333", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}, nil)

	err := svc.VerifyResetCode(context.Background(), sess, "222333")

	require.NoError(t, err)
	assert.Contains(t, sess.Info, "new password")
	// The code survives until the password change completes.
	vers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyResetCodeWithoutSession(t *testing.T) {
	svc, _, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}

	err := svc.VerifyResetCode(context.Background(), sess, "222333")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestVerifyResetCodeWrongCode(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)
	vers.On("Get", mock.Anything, "u1", domain.VerificationReset).
		Return(&domain.Verification{
			UserID: "u1", Type: domain.VerificationReset,
			Code: "222333", ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		}, nil)

	err := svc.VerifyResetCode(context.Background(), sess, "999999")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCode))
}

func TestChangePasswordHappyPath(t *testing.T) {
	svc, users, vers, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}
	users.On("GetByEmail", mock.Anything, "john@example.com").
		Return(&domain.User{UserID: "u1", Email: "john@example.com"}, nil)

	var updates map[string]interface{}
	users.On("Update", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		updates = args.Get(2).(map[string]interface{})
	}).Return(nil)
	vers.On("Delete", mock.Anything, "u1", domain.VerificationReset).Return(nil)

	err := svc.ChangePassword(context.Background(), sess, domain.ChangePasswordRequest{
		Password: "newpw", ConfirmPassword: "newpw",
	})

	require.NoError(t, err)
	require.Contains(t, updates, fieldPasswordHash)
	hash := updates[fieldPasswordHash].(string)
	assert.NotEqual(t, "newpw", hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpw")))
	vers.AssertCalled(t, "Delete", mock.Anything, "u1", domain.VerificationReset)
	assert.Contains(t, sess.Info, "successfully updated")
}

func TestChangePasswordMismatch(t *testing.T) {
	svc, users, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1", Email: "john@example.com"}

	err := svc.ChangePassword(context.Background(), sess, domain.ChangePasswordRequest{
		Password: "newpw", ConfirmPassword: "other",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangePasswordWithoutSession(t *testing.T) {
	svc, _, _, _ := newTestService()
	sess := &domain.Session{SessionID: "s1"}

	err := svc.ChangePassword(context.Background(), sess, domain.ChangePasswordRequest{
		Password: "newpw", ConfirmPassword: "newpw",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSessionExpired))
}

func TestSessionNeverHoldsPassword(t *testing.T) {
	svc, users, vers, mail := newTestService()
	sess := &domain.Session{SessionID: "s1"}
	users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, notFoundErr())
	users.On("Put", mock.Anything, mock.Anything).Return(nil)
	vers.On("Put", mock.Anything, mock.Anything).Return(nil)
	mail.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Signup(context.Background(), sess, domain.SignupRequest{
		Name: "John", Email: "john@example.com",
		Password: "supersecret", ConfirmPassword: "supersecret",
	}))

	assert.NotContains(t, sess.Info, "supersecret")
	assert.NotEqual(t, "supersecret", sess.Name)
	assert.NotEqual(t, "supersecret", sess.Email)
}

func TestCodeGeneratorRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := newCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "111111")
		assert.LessOrEqual(t, code, "999999")
	}
}
