package app

import (
	"errors"
	"testing"
	"time"

	"bookshare/pkg/domain"
	"bookshare/pkg/store"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	sessions, err := store.NewJWTSessionStore("test-secret", time.Hour, store.NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	return New(s, sessions, nil, nil, nil), s
}

func mustRegister(t *testing.T, a *App, name, email string, role domain.UserRole) domain.User {
	t.Helper()
	user, _, err := a.Register(RegisterInput{
		Name:     name,
		Email:    email,
		Password: "hunter22",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return user
}

func TestRegisterAndLogin(t *testing.T) {
	a, _ := newTestApp(t)

	user, token, err := a.Register(RegisterInput{
		Name:     "Asha",
		Email:    "Asha@Campus.Edu",
		Password: "hunter22",
		Role:     domain.RoleStudent,
		Year:     "3",
		Branch:   "CSE",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "asha@campus.edu" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatalf("register must open a session")
	}
	if user.PasswordHash == "hunter22" {
		t.Fatalf("password stored in clear")
	}

	got, err := a.UserFromToken(token)
	if err != nil {
		t.Fatalf("user from token: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("token resolved wrong user")
	}

	if _, _, err := a.Login("asha@campus.edu", "hunter22", domain.RoleStudent); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := a.Login("asha@campus.edu", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password: got %v", err)
	}
	if _, _, err := a.Login("asha@campus.edu", "hunter22", domain.RoleAdmin); !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("role mismatch: got %v", err)
	}
	if _, _, err := a.Login("nobody@campus.edu", "hunter22", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	a, _ := newTestApp(t)
	mustRegister(t, a, "Asha", "asha@campus.edu", domain.RoleStudent)

	if _, _, err := a.Register(RegisterInput{Name: "B", Email: "asha@campus.edu", Password: "hunter22", Role: domain.RoleStudent}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: got %v", err)
	}
	if _, _, err := a.Register(RegisterInput{Name: "B", Email: "b@campus.edu", Password: "hunter22", Role: "wizard"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("invalid role: got %v", err)
	}
	if _, _, err := a.Register(RegisterInput{Email: "b@campus.edu", Password: "hunter22", Role: domain.RoleStudent}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("missing name: got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	a, _ := newTestApp(t)
	_, token, err := a.Register(RegisterInput{Name: "Asha", Email: "asha@campus.edu", Password: "hunter22", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.Logout(token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := a.UserFromToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token accepted: got %v", err)
	}
}

func TestDeleteUserRules(t *testing.T) {
	a, _ := newTestApp(t)
	admin := mustRegister(t, a, "Root", "root@campus.edu", domain.RoleAdmin)
	admin2 := mustRegister(t, a, "Root2", "root2@campus.edu", domain.RoleAdmin)
	student := mustRegister(t, a, "Asha", "asha@campus.edu", domain.RoleStudent)

	if err := a.DeleteUser(student, admin.ID); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("student deleting user: got %v", err)
	}
	if err := a.DeleteUser(admin, admin2.ID); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("admin deleting admin must fail: got %v", err)
	}
	if err := a.DeleteUser(admin, student.ID); err != nil {
		t.Fatalf("admin deleting student: %v", err)
	}
	if err := a.DeleteUser(admin, student.ID); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("deleting twice: got %v", err)
	}

	if _, err := a.ListUsers(admin); err != nil {
		t.Fatalf("admin list users: %v", err)
	}
	faculty := mustRegister(t, a, "Prof", "prof@campus.edu", domain.RoleFaculty)
	if _, err := a.ListUsers(faculty); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("faculty list users: got %v", err)
	}
}
