// Package app holds the marketplace rules: accounts, the listing ledger,
// notifications and the content side (blogs, interview posts, materials,
// reports). Handlers in internal/server stay thin and call into here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookshare/internal/util"
	"bookshare/pkg/auth"
	"bookshare/pkg/authz"
	"bookshare/pkg/domain"
	"bookshare/pkg/storage"
	"bookshare/pkg/store"
)

// NotifyPublisher pushes a stored notification onto the delivery stream.
type NotifyPublisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// App wires the stores together behind the marketplace operations.
// Queue and Objects are optional; without them notifications are only
// persisted and material uploads are rejected.
type App struct {
	store    store.Store
	sessions store.SessionStore
	queue    NotifyPublisher
	objects  storage.ObjectStore
	logger   *slog.Logger
}

func New(s store.Store, sessions store.SessionStore, queue NotifyPublisher, objects storage.ObjectStore, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{store: s, sessions: sessions, queue: queue, objects: objects, logger: logger}
}

// RegisterInput carries the signup form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
	Year     string
	Branch   string
}

// Register creates an account and opens a session for it.
func (a *App) Register(in RegisterInput) (domain.User, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, "", ErrMissingFields
	}
	if !domain.ValidRole(in.Role) {
		return domain.User{}, "", ErrInvalidRole
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return domain.User{}, "", err
	}
	taken, err := a.store.HasUserEmail(in.Email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Year:         strings.TrimSpace(in.Year),
		Branch:       strings.TrimSpace(in.Branch),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// Login checks credentials and opens a session. When role is non-empty the
// account must carry that role; a student cannot log into the admin surface.
func (a *App) Login(email, password string, role domain.UserRole) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrMissingFields
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("load user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if role != "" && role != user.Role {
		return domain.User{}, "", ErrRoleMismatch
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a session token to its account.
func (a *App) UserFromToken(token string) (domain.User, error) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		// fail closed: a revoker outage also reads as an invalid session
		return domain.User{}, ErrInvalidToken
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	if !ok {
		// account deleted after the token was issued
		return domain.User{}, ErrInvalidToken
	}
	return user, nil
}

// Logout revokes the session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// ListUsers returns every account; admins only.
func (a *App) ListUsers(actor domain.User) ([]domain.User, error) {
	if !authz.CanListUsers(actor) {
		return nil, ErrNotAllowed
	}
	return a.store.ListUsers()
}

// DeleteUser removes a non-admin account; admins only, and an admin can
// never delete another admin.
func (a *App) DeleteUser(actor domain.User, targetID string) error {
	target, ok, err := a.store.GetUserByID(targetID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !ok {
		return ErrUserNotFound
	}
	if !authz.CanDeleteUser(actor, target) {
		return ErrNotAllowed
	}
	return a.store.DeleteUser(target.ID)
}

// notify persists a notification and fans it out best-effort. The stored row
// is authoritative; a publish failure is logged and swallowed.
func (a *App) notify(ctx context.Context, userID, content string, meta domain.NotificationMeta) {
	n := domain.Notification{
		ID:        util.NewID(),
		UserID:    userID,
		Content:   content,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveNotification(n); err != nil {
		a.logger.Error("save notification", "user_id", userID, "error", err)
		return
	}
	if a.queue == nil {
		return
	}
	if err := a.queue.Publish(ctx, n); err != nil {
		a.logger.Warn("publish notification", "notification_id", n.ID, "error", err)
	}
}

// Notifications returns the user's notifications, newest first.
func (a *App) Notifications(user domain.User) ([]domain.Notification, error) {
	return a.store.ListNotificationsByUser(user.ID)
}

// MarkNotificationRead marks one of the user's notifications as read.
func (a *App) MarkNotificationRead(user domain.User, id string) error {
	ok, err := a.store.MarkNotificationRead(id, user.ID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}
