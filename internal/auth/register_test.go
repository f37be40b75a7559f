package auth

import (
	"context"
	"testing"

	"github.com/angelmondragon/luxehome-backend/internal/users"
	pkgAuth "github.com/angelmondragon/luxehome-backend/pkg/auth"
	"github.com/angelmondragon/luxehome-backend/pkg/db/dbtest"
	"github.com/angelmondragon/luxehome-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/luxehome-backend/pkg/errors"
	"github.com/angelmondragon/luxehome-backend/pkg/security"
)

func TestRegisterCreatesCustomerAndSignsIn(t *testing.T) {
	client, conn := dbtest.Client(t, "auth_register")
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: fastPassword, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Email: " Mia@Example.com ", Password: "long-enough", FirstName: "Mia"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "mia@example.com" || resp.User.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	if _, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken); err != nil {
		t.Fatalf("parse token: %v", err)
	}

	stored, err := users.NewRepository(conn).FindByEmail(ctx, "mia@example.com")
	if err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	ok, err := security.VerifyPassword("long-enough", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}

	_, err = svc.Register(ctx, RegisterRequest{Email: "mia@example.com", Password: "another-pass"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestRegisterValidatesPassword(t *testing.T) {
	client, _ := dbtest.Client(t, "auth_register")
	svc, err := NewRegisterService(RegisterServiceParams{DB: client, PasswordConfig: fastPassword, JWTConfig: testJWTConfig()})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	_, err = svc.Register(context.Background(), RegisterRequest{Email: "short@example.com", Password: "short"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminRegisterRole(t *testing.T) {
	client, _ := dbtest.Client(t, "auth_register")
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: fastPassword,
		JWTConfig:      testJWTConfig(),
		Role:           enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	resp, err := svc.Register(context.Background(), RegisterRequest{Email: "staff@example.com", Password: "staff-password"})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin claim, got %s", claims.Role)
	}

	if _, err := NewRegisterService(RegisterServiceParams{DB: client, Role: "owner"}); err == nil {
		t.Fatal("expected unknown role to be rejected")
	}
}
