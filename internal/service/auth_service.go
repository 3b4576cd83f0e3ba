package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fidesia-be/internal/config"
	"fidesia-be/internal/dto"
	"fidesia-be/internal/entity"
	"fidesia-be/internal/pkg/logger"
	"fidesia-be/internal/pkg/mailer"
	redisrepo "fidesia-be/internal/repository/redis"
	"fidesia-be/internal/repository/specification"
	"fidesia-be/internal/repository/unitofwork"
)

var (
	ErrInvalidCredentials = errors.New("identifiants invalides")
	ErrEmailTaken         = errors.New("cette adresse email est déjà utilisée")
	ErrInvalidResetToken  = errors.New("lien de réinitialisation invalide ou expiré")
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ipAddress string) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error)
}

// dummyHash is compared against when the account does not exist, so a
// missing email costs the same time as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.DefaultCost)

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	blacklist    *redisrepo.TokenBlacklist
	publisher    IActivityPublisher
	authCfg      config.AuthConfig
	log          logger.ILogger
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	blacklist *redisrepo.TokenBlacklist,
	publisher IActivityPublisher,
	authCfg config.AuthConfig,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
		blacklist:    blacklist,
		publisher:    publisher,
		authCfg:      authCfg,
		log:          log,
	}
}

// maskEmail keeps the first two characters and the domain so logs stay
// useful without exposing addresses.
func maskEmail(email string) string {
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local := email[:at]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = local[:1] + "***"
	}
	return local + email[at:]
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, ipAddress string) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         entity.UserRoleUser,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("auth", "user registered", map[string]interface{}{
		"user_id": user.Id,
		"email":   maskEmail(user.Email),
	})
	if s.publisher != nil {
		s.publisher.Publish(entity.ActivityUserRegistered, "", &user.Id, ipAddress, nil)
	}

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress string) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.log.Warn("auth", "failed login attempt", map[string]interface{}{
			"email": maskEmail(email),
			"ip":    ipAddress,
		})
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := uow.UserRepository().TouchLastLogin(ctx, user.Id, now); err != nil {
		s.log.Warn("auth", "could not update last login", map[string]interface{}{
			"user_id": user.Id,
			"error":   err.Error(),
		})
	}
	user.LastLoginAt = &now

	if s.publisher != nil {
		s.publisher.Publish(entity.ActivityUserLoggedIn, "", &user.Id, ipAddress, nil)
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	expiry := time.Duration(s.authCfg.AccessTokenHours) * time.Hour

	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"role":    string(user.Role),
		"jti":     uuid.NewString(),
		"exp":     time.Now().Add(expiry).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.authCfg.JwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token: signed,
		User: dto.UserDTO{
			Id:        user.Id,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      string(user.Role),
			CreatedAt: user.CreatedAt,
			LastLogin: user.LastLoginAt,
		},
	}, nil
}

// Logout revokes the current token until its natural expiry.
func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" || s.blacklist == nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, jti, time.Until(expiresAt))
}

// ForgotPassword always reports success so the endpoint cannot be used
// to probe which addresses exist.
func (s *authService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Info("auth", "reset requested for unknown email", map[string]interface{}{
			"email": maskEmail(email),
		})
		return nil
	}

	rawToken := uuid.NewString()
	hash := sha256.Sum256([]byte(rawToken))

	resetToken := &entity.PasswordResetToken{
		Id:        uuid.New(),
		UserId:    user.Id,
		TokenHash: hex.EncodeToString(hash[:]),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.ResetTokenHours) * time.Hour),
		CreatedAt: time.Now(),
	}
	if err := uow.UserRepository().CreatePasswordResetToken(ctx, resetToken); err != nil {
		return err
	}

	go func() {
		if err := s.emailService.SendResetToken(user.Email, rawToken); err != nil {
			s.log.Error("auth", "reset email failed", map[string]interface{}{
				"email": maskEmail(user.Email),
				"error": err.Error(),
			})
		}
	}()

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	hash := sha256.Sum256([]byte(req.Token))
	token, err := uow.UserRepository().FindPasswordResetToken(ctx,
		specification.ByTokenHash{Hash: hex.EncodeToString(hash[:])},
		specification.UsableToken{Now: time.Now()},
	)
	if err != nil {
		return err
	}
	if token == nil {
		return ErrInvalidResetToken
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdatePassword(ctx, token.UserId, string(newHash)); err != nil {
		return err
	}
	if err := uow.UserRepository().MarkTokenUsed(ctx, token.Id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Info("auth", "password reset", map[string]interface{}{"user_id": token.UserId})
	return nil
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserDTO, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("utilisateur introuvable")
	}

	return &dto.UserDTO{
		Id:        user.Id,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		LastLogin: user.LastLoginAt,
	}, nil
}
