package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core"
)

var (
	// errors
	ErrNotFound             = core.NewNotFoundError("user not found")
	ErrSessionNotFound      = core.NewNotFoundError("session not found")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrAuthenticationFailed = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		QueryUsersByRole(ctx context.Context, role string) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		SetUserPassword(ctx context.Context, id int, hash []byte) error
	}

	SessionRepository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSession(ctx context.Context, token string) (Session, error)
		DeleteSession(ctx context.Context, token string) error
	}

	Service struct {
		repo       Repository
		sessions   SessionRepository
		sessionTTL time.Duration
	}
)

func NewService(repo Repository, sessions SessionRepository, conf *core.Config) *Service {
	return &Service{
		repo:       repo,
		sessions:   sessions,
		sessionTTL: conf.Server.SessionTTL,
	}
}

func (svc *Service) checkEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) create(ctx context.Context, nu NewUser, role string) (User, error) {
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if nu.Phone != "" {
		usr.Phone.SetValid(nu.Phone)
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Register self-signs-up a parent account. Admin accounts are only ever
// created by an operator (see CreateAdmin).
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	return svc.create(ctx, nu, RoleParent)
}

func (svc *Service) CreateAdmin(ctx context.Context, nu NewUser) (User, error) {
	return svc.create(ctx, nu, RoleAdmin)
}

// Authenticate verifies the credentials and returns the matching user.
// Unknown emails and bad passwords both come back as ErrAuthenticationFailed.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if core.IsNotFound(err) {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return usr, nil
}

// OpenSession issues a fresh opaque session token for usr.
func (svc *Service) OpenSession(ctx context.Context, usr User) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(svc.sessionTTL),
	}
	return svc.sessions.CreateSession(ctx, sess)
}

func (svc *Service) CloseSession(ctx context.Context, token string) error {
	return svc.sessions.DeleteSession(ctx, token)
}

// GetBySession resolves a session token to its user; expired sessions are
// deleted on sight and reported as not found.
func (svc *Service) GetBySession(ctx context.Context, token string) (User, error) {
	sess, err := svc.sessions.GetSession(ctx, token)
	if err != nil {
		return User{}, err
	}
	if sess.Expired(time.Now().UTC()) {
		_ = svc.sessions.DeleteSession(ctx, token)
		return User{}, ErrSessionNotFound
	}
	return svc.repo.GetUserByID(ctx, sess.UserID)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) QueryParents(ctx context.Context) ([]User, error) {
	return svc.repo.QueryUsersByRole(ctx, RoleParent)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// ResetPassword sets a new password for the account with the given email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.SetUserPassword(ctx, usr.ID, usr.PasswordHash)
}
