package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserNotFound       = errors.New("user not found")
)

// TokenBlacklist revoked token IDs; backed by Redis in production.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService login for dispatchers and workers
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the access token and, when given, the refresh token.
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, userID, role string) (*dto.UserResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, blacklist: blacklist, logger: logger}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, hash, err := s.findByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user", zap.Error(err))
		return nil, err
	}

	if hash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user, req.RememberMe)
}

// findByPhone checks dispatchers first, then workers.
func (s *authService) findByPhone(ctx context.Context, phone string) (*dto.UserResponse, string, error) {
	d, err := s.repo.Dispatcher.FindByPhone(ctx, phone)
	if err == nil {
		pub := d.Public()
		return &dto.UserResponse{ID: d.ID, Name: d.Name, Phone: d.Phone, Role: pub.Role}, d.PasswordHash, nil
	}
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return nil, "", err
	}

	e, err := s.repo.Employee.FindByPhone(ctx, phone)
	if err != nil {
		return nil, "", err
	}
	return &dto.UserResponse{ID: e.ID, Name: e.FullName, Phone: e.Phone, Role: model.RoleWorker}, e.PasswordHash, nil
}

func (s *authService) issue(user *dto.UserResponse, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("failed to sign access token", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.ID, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("failed to sign refresh token", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *user,
	}, nil
}

// ────────────────────── RefreshToken ──────────────────────

// RefreshToken rotates the pair; the presented refresh token is revoked.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, jwt.ErrTokenInvalid
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("failed to check token blacklist", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.Me(ctx, claims.UserID, claims.Role)
	if err != nil {
		return nil, err
	}

	s.revoke(ctx, claims)
	return s.issue(user, claims.RememberMe)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access != nil {
		s.revoke(ctx, access)
	}
	if refreshToken != "" {
		claims, err := s.jwtMgr.ParseToken(refreshToken)
		if err != nil {
			// an expired refresh token is already unusable
			if errors.Is(err, jwt.ErrTokenExpired) {
				return nil
			}
			return err
		}
		s.revoke(ctx, claims)
	}
	return nil
}

func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
	}
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID, role string) (*dto.UserResponse, error) {
	if role == model.RoleWorker {
		e, err := s.repo.Employee.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		return &dto.UserResponse{ID: e.ID, Name: e.FullName, Phone: e.Phone, Role: model.RoleWorker}, nil
	}

	d, err := s.repo.Dispatcher.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	pub := d.Public()
	return &dto.UserResponse{ID: d.ID, Name: d.Name, Phone: d.Phone, Role: pub.Role}, nil
}

// ── in-process blacklist ──

type memoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     Clock
}

// NewMemoryBlacklist is used when Redis is not configured. Revocations do not
// survive a restart and are not shared between instances.
func NewMemoryBlacklist(now Clock) TokenBlacklist {
	return &memoryBlacklist{entries: make(map[string]time.Time), now: now}
}

func (b *memoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, exp := range b.entries {
		if !exp.After(now) {
			delete(b.entries, k)
		}
	}
	b.entries[jti] = now.Add(ttl)
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.entries[jti]
	return ok && exp.After(b.now()), nil
}
