package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/go-accounts-api/internal/domain"
	"github.com/go-accounts-api/internal/infrastructure/google"
	jwtinfra "github.com/go-accounts-api/internal/infrastructure/jwt"
	"github.com/go-accounts-api/internal/infrastructure/smtp"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByVerificationCode(ctx context.Context, code string) (*domain.User, error) {
	args := m.Called(ctx, code)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) ConsumeVerificationCode(ctx context.Context, userID, code string) error {
	return m.Called(ctx, userID, code).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, html string) error {
	return m.Called(to, subject, html).Error(0)
}

type mockTemplates struct{ mock.Mock }

func (m *mockTemplates) ResetPassword(data smtp.ResetPasswordData) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) SignSession(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) SignReset(userID, email string) (string, error) {
	args := m.Called(userID, email)
	return args.String(0), args.Error(1)
}
func (m *mockTokens) VerifyReset(token string) (*jwtinfra.ResetClaims, error) {
	args := m.Called(token)
	if c, _ := args.Get(0).(*jwtinfra.ResetClaims); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockGoogle struct{ mock.Mock }

func (m *mockGoogle) AuthURL() string {
	return m.Called().String(0)
}
func (m *mockGoogle) ExchangeCode(ctx context.Context, code string) (*google.Payload, error) {
	args := m.Called(ctx, code)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAvatars struct{ mock.Mock }

func (m *mockAvatars) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, filename, r)
	return args.String(0), args.Error(1)
}

// --- builder ---

const baseURL = "http://localhost:3000"

func newService(us *mockUserStore, ml *mockMailer, tpl *mockTemplates, tk *mockTokens, gg *mockGoogle, av *mockAvatars) Service {
	return NewService(ServiceDeps{
		UserRepo:  us,
		Mailer:    ml,
		Templates: tpl,
		Tokens:    tk,
		Google:    gg,
		Avatars:   av,
		BaseURL:   baseURL,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "alice@x.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.com", Password: "password1",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	ml.On("SendEmail", "alice@x.com", "Please verify your email", mock.Anything).Return(nil)

	svc := newService(us, ml, nil, nil, nil, nil)
	u, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.com", Password: "password1",
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@x.com", u.Email)
	assert.False(t, u.Verified)
	assert.NotEmpty(t, u.VerificationCode)
	assert.NotEmpty(t, u.UserID)
	assert.Contains(t, u.AvatarURL, "gravatar.com/avatar/")
	assert.NotEqual(t, "password1", u.PasswordHash)

	// The verification link must embed the generated code.
	sentHTML := ml.Calls[0].Arguments.String(2)
	assert.Contains(t, sentHTML, baseURL+"/api/auth/verify/"+u.VerificationCode)
}

func TestRegister_EmailSendFails_UserStillPersisted(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "alice@x.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(us, ml, nil, nil, nil, nil)
	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Name: "Alice", Email: "alice@x.com", Password: "password1",
	})

	require.Error(t, err)
	us.AssertCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- VerifyEmail ---

func TestVerifyEmail_UnknownCode(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByVerificationCode", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.VerifyEmail(context.Background(), "nope")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyEmail_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByVerificationCode", mock.Anything, "code1").Return(&domain.User{UserID: "u1", VerificationCode: "code1"}, nil)
	us.On("ConsumeVerificationCode", mock.Anything, "u1", "code1").Return(nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	require.NoError(t, svc.VerifyEmail(context.Background(), "code1"))
	us.AssertExpectations(t)
}

func TestVerifyEmail_SecondAttemptFails(t *testing.T) {
	// After consumption the code no longer matches any user.
	us := &mockUserStore{}
	us.On("GetByVerificationCode", mock.Anything, "code1").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.VerifyEmail(context.Background(), "code1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestVerifyEmail_ConsumeRaceLoser(t *testing.T) {
	// Lookup still sees the code but the conditional update loses the race.
	us := &mockUserStore{}
	us.On("GetByVerificationCode", mock.Anything, "code1").Return(&domain.User{UserID: "u1", VerificationCode: "code1"}, nil)
	us.On("ConsumeVerificationCode", mock.Anything, "u1", "code1").Return(domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.VerifyEmail(context.Background(), "code1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- ResendVerifyEmail ---

func TestResendVerifyEmail_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResendVerifyEmail(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResendVerifyEmail_AlreadyVerified(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.ResendVerifyEmail(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyVerified))
}

func TestResendVerifyEmail_ReusesStoredCode(t *testing.T) {
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", VerificationCode: "code1"}, nil)
	ml.On("SendEmail", "a@b.com", "Please verify your email", mock.MatchedBy(func(html string) bool {
		return strings.Contains(html, "/api/auth/verify/code1")
	})).Return(nil)

	svc := newService(us, ml, nil, nil, nil, nil)
	require.NoError(t, svc.ResendVerifyEmail(context.Background(), "a@b.com"))
	ml.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), "x@x.com", "whatever")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))
}

func TestLogin_NotVerified_EvenWithCorrectPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Verified: false, PasswordHash: hashOf(t, "pw1"),
	}, nil)

	svc := newService(us, nil, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), "a@b.com", "pw1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmailNotVerified))
}

func TestLogin_WrongPassword_SameKindAsUnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Verified: true, PasswordHash: hashOf(t, "pw1"),
	}, nil)
	us.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)

	_, errWrongPw := svc.Login(context.Background(), "a@b.com", "pw2")
	_, errNoUser := svc.Login(context.Background(), "ghost@b.com", "pw1")

	assert.True(t, errors.Is(errWrongPw, domain.ErrInvalidCredentials))
	assert.True(t, errors.Is(errNoUser, domain.ErrInvalidCredentials))
	assert.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestLogin_HappyPath_PersistsSessionToken(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Verified: true, PasswordHash: hashOf(t, "pw1"),
	}, nil)
	tk.On("SignSession", "u1").Return("session-token", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"session_token": "session-token"}).Return(nil)

	svc := newService(us, nil, nil, tk, nil, nil)
	token, err := svc.Login(context.Background(), "a@b.com", "pw1")

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	us.AssertExpectations(t)
}

// --- Logout ---

func TestLogout_Idempotent(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"session_token": ""}).Return(nil).Twice()

	svc := newService(us, nil, nil, nil, nil, nil)
	require.NoError(t, svc.Logout(context.Background(), "u1"))
	require.NoError(t, svc.Logout(context.Background(), "u1"))
	us.AssertExpectations(t)
}

// --- Current ---

func TestCurrent_ProjectsNameAndEmail(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil, nil)
	p := svc.Current(&domain.User{Name: "Alice", Email: "a@b.com", PasswordHash: "secret"})
	assert.Equal(t, Profile{Name: "Alice", Email: "a@b.com"}, p)
}

// --- RequestPasswordReset ---

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil, nil)
	err := svc.RequestPasswordReset(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRequestPasswordReset_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	tpl := &mockTemplates{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Name: "Alice"}, nil)
	tk.On("SignReset", "u1", "a@b.com").Return("reset-token", nil)
	tpl.On("ResetPassword", smtp.ResetPasswordData{
		Name: "Alice",
		Link: baseURL + "/api/auth/reset-password/reset-token",
	}).Return("<html>reset</html>", nil)
	ml.On("SendEmail", "a@b.com", "Password Reset Request", "<html>reset</html>").Return(nil)

	svc := newService(us, ml, tpl, tk, nil, nil)
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "a@b.com"))
	tpl.AssertExpectations(t)
	ml.AssertExpectations(t)
}

// --- ResetPassword ---

func TestResetPassword_InvalidToken(t *testing.T) {
	tk := &mockTokens{}
	tk.On("VerifyReset", "bad").Return(nil, domain.ErrInvalidToken)

	svc := newService(nil, nil, nil, tk, nil, nil)
	err := svc.ResetPassword(context.Background(), "bad", "newpassword")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestResetPassword_SubjectGone(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}

	tk.On("VerifyReset", "tok").Return(&jwtinfra.ResetClaims{
		Email:            "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, tk, nil, nil)
	err := svc.ResetPassword(context.Background(), "tok", "newpassword")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestResetPassword_HappyPath_OnlyTouchesPasswordHash(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}

	tk.On("VerifyReset", "tok").Return(&jwtinfra.ResetClaims{
		Email:            "a@b.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", SessionToken: "live"}, nil)
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		if !ok || len(updates) != 1 {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword")) == nil
	})).Return(nil)

	svc := newService(us, nil, nil, tk, nil, nil)
	require.NoError(t, svc.ResetPassword(context.Background(), "tok", "newpassword"))
	us.AssertExpectations(t)
}

// --- UpdateAvatar ---

func TestUpdateAvatar_SavesAndPersistsURL(t *testing.T) {
	us := &mockUserStore{}
	av := &mockAvatars{}

	av.On("Save", mock.Anything, "u1_photo.png", mock.Anything).Return("avatars/u1_photo.png", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"avatar_url": "avatars/u1_photo.png"}).Return(nil)

	svc := newService(us, nil, nil, nil, nil, av)
	url, err := svc.UpdateAvatar(context.Background(), "u1", "photo.png", strings.NewReader("img"))

	require.NoError(t, err)
	assert.Equal(t, "avatars/u1_photo.png", url)
	us.AssertExpectations(t)
}

// --- Google login ---

func TestLoginWithGoogle_ExchangeFails(t *testing.T) {
	gg := &mockGoogle{}
	gg.On("ExchangeCode", mock.Anything, "badcode").Return(nil, domain.ErrUnauthorized)

	svc := newService(nil, nil, nil, nil, gg, nil)
	_, err := svc.LoginWithGoogle(context.Background(), "badcode")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithGoogle_ExistingUser(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	gg := &mockGoogle{}

	gg.On("ExchangeCode", mock.Anything, "code").Return(&google.Payload{Email: "a@b.com"}, nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)
	tk.On("SignSession", "u1").Return("session-token", nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"session_token": "session-token"}).Return(nil)

	svc := newService(us, nil, nil, tk, gg, nil)
	token, err := svc.LoginWithGoogle(context.Background(), "code")

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestLoginWithGoogle_ProvisionsNewVerifiedUser(t *testing.T) {
	us := &mockUserStore{}
	tk := &mockTokens{}
	gg := &mockGoogle{}

	gg.On("ExchangeCode", mock.Anything, "code").Return(&google.Payload{
		Email: "new@b.com", GivenName: "Ada", FamilyName: "Lovelace",
	}, nil)
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	tk.On("SignSession", mock.Anything).Return("session-token", nil)
	us.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(us, nil, nil, tk, gg, nil)
	token, err := svc.LoginWithGoogle(context.Background(), "code")

	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
	require.NotNil(t, created)
	assert.True(t, created.Verified)
	assert.Empty(t, created.VerificationCode)
	assert.Equal(t, "Ada Lovelace", created.Name)
	assert.Equal(t, domain.ProviderGoogle, created.AuthProvider)
	assert.NotEmpty(t, created.PasswordHash)
}

func TestGoogleAuthURL_Delegates(t *testing.T) {
	gg := &mockGoogle{}
	gg.On("AuthURL").Return("https://accounts.google.com/o/oauth2/auth?x=y")

	svc := newService(nil, nil, nil, nil, gg, nil)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?x=y", svc.GoogleAuthURL())
}
