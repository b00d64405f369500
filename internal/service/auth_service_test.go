package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"dispetcher/backend/config"
	"dispetcher/backend/internal/dto"
	"dispetcher/backend/internal/model"
	"dispetcher/backend/internal/repository"
	"dispetcher/backend/pkg/jwt"
)

func hash(t *testing.T, pw string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func newAuthFixture(t *testing.T) (AuthService, *repository.Repository, *jwt.Manager, TokenBlacklist) {
	t.Helper()
	repo := newTestRepo()
	ctx := context.Background()

	disps := model.SeedDispatchers()
	disps[0].PasswordHash = hash(t, "admin-pass")
	if err := repo.Dispatcher.SaveAll(ctx, disps); err != nil {
		t.Fatal(err)
	}
	seedEmployee(t, repo, model.Employee{ID: "w1", FullName: "Иван", Phone: "+79990000001", PasswordHash: hash(t, "worker-pass")})
	seedEmployee(t, repo, model.Employee{ID: "w2", FullName: "Пётр", Phone: "+79990000002"})

	mgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-0123456789",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  time.Hour,
		RefreshTokenTTLRemember: 24 * time.Hour,
	})
	bl := NewMemoryBlacklist(time.Now)
	return NewAuthService(repo, mgr, bl, nopLogger()), repo, mgr, bl
}

func TestAuth_LoginDispatcher(t *testing.T) {
	svc, _, mgr, _ := newAuthFixture(t)

	tok, err := svc.Login(context.Background(), &dto.LoginRequest{Phone: "+79001112233", Password: "admin-pass"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.User.ID != "d1" || tok.User.Role != model.RoleAdmin || tok.ExpiresIn != 900 {
		t.Errorf("token response = %+v", tok)
	}
	claims, err := mgr.ParseToken(tok.AccessToken)
	if err != nil || claims.UserID != "d1" || claims.TokenType != "access" {
		t.Errorf("access claims = %+v, %v", claims, err)
	}
}

func TestAuth_LoginWorker(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	tok, err := svc.Login(context.Background(), &dto.LoginRequest{Phone: "+79990000001", Password: "worker-pass"})
	if err != nil {
		t.Fatal(err)
	}
	if tok.User.ID != "w1" || tok.User.Role != model.RoleWorker {
		t.Errorf("user = %+v", tok.User)
	}
}

func TestAuth_LoginRejected(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)

	tests := []struct {
		name  string
		phone string
		pw    string
	}{
		{"wrong password", "+79001112233", "nope"},
		{"unknown phone", "+70000000000", "admin-pass"},
		{"no password set", "+79990000002", ""},
		{"seed dispatcher without hash", "+79004445566", "anything"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &dto.LoginRequest{Phone: tt.phone, Password: tt.pw})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuth_RefreshRotates(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tok, err := svc.Login(ctx, &dto.LoginRequest{Phone: "+79990000001", Password: "worker-pass", RememberMe: true})
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.RefreshToken(ctx, tok.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if next.User.ID != "w1" || next.RefreshToken == tok.RefreshToken {
		t.Errorf("refreshed = %+v", next)
	}

	if _, err := svc.RefreshToken(ctx, tok.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reused refresh token: expected ErrTokenRevoked, got %v", err)
	}
	if _, err := svc.RefreshToken(ctx, tok.AccessToken); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("access token as refresh: expected ErrTokenInvalid, got %v", err)
	}
}

func TestAuth_LogoutRevokesBoth(t *testing.T) {
	svc, _, mgr, bl := newAuthFixture(t)
	ctx := context.Background()

	tok, _ := svc.Login(ctx, &dto.LoginRequest{Phone: "+79001112233", Password: "admin-pass"})
	access, _ := mgr.ParseToken(tok.AccessToken)
	refresh, _ := mgr.ParseToken(tok.RefreshToken)

	if err := svc.Logout(ctx, access, tok.RefreshToken); err != nil {
		t.Fatal(err)
	}
	for _, jti := range []string{access.ID, refresh.ID} {
		if ok, _ := bl.IsBlacklisted(ctx, jti); !ok {
			t.Errorf("jti %s not revoked", jti)
		}
	}
}

func TestAuth_Me(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.Me(ctx, "d3", model.RoleDispatcher)
	if err != nil || u.Role != model.RoleDispatcher {
		t.Errorf("Me(d3) = %+v, %v", u, err)
	}
	if _, err := svc.Me(ctx, "w9", model.RoleWorker); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMemoryBlacklist_Expires(t *testing.T) {
	clk := newFakeClock()
	bl := NewMemoryBlacklist(clk.Now)
	ctx := context.Background()

	_ = bl.BlacklistToken(ctx, "jti", time.Minute)
	if ok, _ := bl.IsBlacklisted(ctx, "jti"); !ok {
		t.Fatal("expected blacklisted")
	}
	clk.Advance(2 * time.Minute)
	if ok, _ := bl.IsBlacklisted(ctx, "jti"); ok {
		t.Error("entry must expire")
	}
}
