package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/apperror"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, caller entity.Caller) error
	Me(ctx context.Context, caller entity.Caller) (*response.UserResponse, error)
}

type authService struct {
	repo   *repository.Repository // users & sessions
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	existingUser, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to check email", err)
	}
	if existingUser != nil {
		return nil, apperror.Validation("validation failed", map[string]string{"email": "Already registered"})
	}

	existingUser, err = s.repo.User.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to check username", err)
	}
	if existingUser != nil {
		return nil, apperror.Validation("validation failed", map[string]string{"username": "Already taken"})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, apperror.Wrap(apperror.KindInternal, "failed to process password", err)
	}

	now := time.Now().UTC()
	user := &entity.User{
		SoftDeleteModel: entity.SoftDeleteModel{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         entity.RoleCustomer,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.New(apperror.KindConflict, "email or username already registered")
		}
		return nil, apperror.Wrap(apperror.KindInternal, "failed to create account", err)
	}

	// auto login after register
	session, err := s.createSession(ctx, user.ID, req.ClientInfo)
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("validation failed", errs)
	}

	// identifier may be an email or a username
	user, err := s.repo.User.FindByEmail(ctx, req.Username)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to find user", err)
	}
	if user == nil {
		user, err = s.repo.User.FindByUsername(ctx, req.Username)
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInternal, "failed to find user", err)
		}
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("identifier", req.Username))
		return nil, apperror.Unauthenticated("invalid credentials")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthenticated("invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, apperror.Unauthenticated("account is deactivated")
	}

	session, err := s.createSession(ctx, user.ID, req.ClientInfo)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, apperror.Wrap(apperror.KindInternal, "failed to create session", err)
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		return apperror.Unauthenticated("invalid token")
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.Unauthenticated("session already ended")
		}
		s.log.Error("Failed to revoke session", zap.Error(err))
		return apperror.Wrap(apperror.KindInternal, "failed to logout", err)
	}

	s.log.Info("User logged out")
	return nil
}

// LogoutAll ends every session of the caller, including the one making the request.
func (s *authService) LogoutAll(ctx context.Context, caller entity.Caller) error {
	if !caller.IsAuthenticated() {
		return apperror.Unauthenticated("authentication required")
	}

	if err := s.repo.Session.RevokeAllUserSessions(ctx, caller.UserID); err != nil {
		return apperror.Wrap(apperror.KindInternal, "failed to logout", err)
	}

	s.log.Info("User logged out everywhere", zap.String("user_id", caller.UserID.String()))
	return nil
}

func (s *authService) Me(ctx context.Context, caller entity.Caller) (*response.UserResponse, error) {
	if !caller.IsAuthenticated() {
		return nil, apperror.Unauthenticated("authentication required")
	}

	user, err := s.repo.User.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "failed to load profile", err)
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, client request.ClientInfo) (*entity.Session, error) {
	now := time.Now().UTC()
	session := &entity.Session{
		CreatedModel: entity.CreatedModel{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		UserAgent: optionalString(truncate(client.UserAgent, maxUserAgentLen)),
		IPAddress: optionalString(client.IPAddress),
		ExpiresAt: now.Add(s.sessionTTL()),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

const maxUserAgentLen = 255

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}

func (s *authService) sessionTTL() time.Duration {
	if s.config == nil || s.config.Session.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(s.config.Session.ExpiryHours) * time.Hour
}
