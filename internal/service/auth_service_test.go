package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"fidesia-be/internal/config"
	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/repository/specification"
)

type fakeUserRepo struct {
	users  []*entity.User
	tokens []*entity.PasswordResetToken

	lastLogin  map[uuid.UUID]time.Time
	passwords  map[uuid.UUID]string
	usedTokens map[uuid.UUID]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		lastLogin:  map[uuid.UUID]time.Time{},
		passwords:  map[uuid.UUID]string{},
		usedTokens: map[uuid.UUID]bool{},
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error      { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, u := range r.users {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByEmail:
				if u.Email != s.Email {
					match = false
				}
			case specification.ByID:
				if u.Id != s.ID {
					match = false
				}
			}
		}
		if match {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return r.users, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.passwords[userId] = hash
	return nil
}

func (r *fakeUserRepo) TouchLastLogin(ctx context.Context, userId uuid.UUID, at time.Time) error {
	r.lastLogin[userId] = at
	return nil
}

func (r *fakeUserRepo) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeUserRepo) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	for _, t := range r.tokens {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByTokenHash:
				if t.TokenHash != s.Hash {
					match = false
				}
			case specification.UsableToken:
				if t.Used || !t.ExpiresAt.After(s.Now) {
					match = false
				}
			}
		}
		if match {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) MarkTokenUsed(ctx context.Context, id uuid.UUID) error {
	r.usedTokens[id] = true
	for _, t := range r.tokens {
		if t.Id == id {
			t.Used = true
		}
	}
	return nil
}

type fakeMailer struct {
	sent chan string
}

func (m *fakeMailer) SendResetToken(toEmail, token string) error {
	if m.sent != nil {
		m.sent <- token
	}
	return nil
}

func newAuthService(repo *fakeUserRepo, mail *fakeMailer) IAuthService {
	factory := &fakeFactory{uow: &fakeUnitOfWork{users: repo}}
	return NewAuthService(factory, mail, nil, nil, config.AuthConfig{
		JwtSecret:        "test-secret",
		AccessTokenHours: 24,
		ResetTokenHours:  1,
	}, logger.NewNopLogger())
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	assert.NoError(t, err)
	assert.True(t, parsed.Valid)
	return parsed.Claims.(jwt.MapClaims)
}

func TestRegisterIssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	res, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "  Jean.Dupont@Example.COM ",
		Password:  "motdepasse",
		FirstName: "Jean",
		LastName:  "Dupont",
	}, "127.0.0.1")

	assert.NoError(t, err)
	assert.Len(t, repo.users, 1)
	assert.Equal(t, "jean.dupont@example.com", repo.users[0].Email)
	assert.NotEqual(t, "motdepasse", repo.users[0].PasswordHash)

	claims := parseClaims(t, res.Token)
	assert.Equal(t, repo.users[0].Id.String(), claims["user_id"])
	assert.Equal(t, "user", claims["role"])
	assert.NotEmpty(t, claims["jti"])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	req := &dto.RegisterRequest{Email: "jean@example.com", Password: "motdepasse"}
	_, err := svc.Register(context.Background(), req, "")
	assert.NoError(t, err)

	_, err = svc.Register(context.Background(), req, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Len(t, repo.users, 1)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("motdepasse"), bcrypt.DefaultCost)
	userId := uuid.New()
	repo.users = append(repo.users, &entity.User{
		Id:           userId,
		Email:        "jean@example.com",
		PasswordHash: string(hash),
		Role:         entity.UserRoleUser,
	})
	svc := newAuthService(repo, &fakeMailer{})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "inconnu@example.com", Password: "motdepasse",
		}, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "jean@example.com", Password: "mauvais",
		}, "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(context.Background(), &dto.LoginRequest{
			Email: "JEAN@example.com", Password: "motdepasse",
		}, "127.0.0.1")
		assert.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Contains(t, repo.lastLogin, userId)
	})
}

func TestForgotPasswordNeverRevealsAccounts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	err := svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "inconnu@example.com"})
	assert.NoError(t, err)
	assert.Empty(t, repo.tokens)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	userId := uuid.New()
	repo.users = append(repo.users, &entity.User{Id: userId, Email: "jean@example.com"})

	mail := &fakeMailer{sent: make(chan string, 1)}
	svc := newAuthService(repo, mail)

	err := svc.ForgotPassword(context.Background(), &dto.ForgotPasswordRequest{Email: "jean@example.com"})
	assert.NoError(t, err)
	assert.Len(t, repo.tokens, 1)

	var rawToken string
	select {
	case rawToken = <-mail.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was never sent")
	}

	// The raw token only travels by email, the database holds its hash.
	assert.NotEqual(t, rawToken, repo.tokens[0].TokenHash)

	t.Run("bad token", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
			Token: "pas-le-bon", NewPassword: "nouveaumdp",
		})
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("valid token", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
			Token: rawToken, NewPassword: "nouveaumdp",
		})
		assert.NoError(t, err)
		assert.Contains(t, repo.passwords, userId)
		assert.True(t, repo.tokens[0].Used)
	})

	t.Run("token is single use", func(t *testing.T) {
		err := svc.ResetPassword(context.Background(), &dto.ResetPasswordRequest{
			Token: rawToken, NewPassword: "encoreun",
		})
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "je***@example.com", maskEmail("jean@example.com"))
	assert.Equal(t, "***", maskEmail("pas-un-email"))
}
