package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/user"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) user.Repository {
	return &userRepository{store: store}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	query := `SELECT count(*) FROM users WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT count(*) FROM users WHERE email = ? AND id NOT IN (?)`, email, ids)
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		query = sqlx.Rebind(sqlx.DOLLAR, q)
		args = inArgs
	}

	var count int
	if err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &usr.ID,
		`INSERT INTO users (name, email, phone, role, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		usr.Name, usr.Email, usr.Phone, usr.Role, usr.PasswordHash, usr.CreatedAt,
	)
	return usr, errors.Wrap(err, "creating user")
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	users := make([]user.User, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &users,
		`SELECT * FROM users ORDER BY id`,
	)
	return users, errors.Wrap(err, "querying users")
}

func (repo *userRepository) QueryUsersByRole(ctx context.Context, role string) ([]user.User, error) {
	users := make([]user.User, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &users,
		`SELECT * FROM users WHERE role = $1 ORDER BY id`, role,
	)
	return users, errors.Wrap(err, "querying users by role")
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &usr,
		`SELECT * FROM users WHERE id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user")
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &usr,
		`SELECT * FROM users WHERE email = $1`, email,
	)
	if err == sql.ErrNoRows {
		return user.User{}, user.ErrNotFound
	}
	return usr, errors.Wrap(err, "getting user by email")
}

func (repo *userRepository) SetUserPassword(ctx context.Context, id int, hash []byte) error {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id,
	)
	if err != nil {
		return errors.Wrap(err, "setting password")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

type sessionRepository struct {
	store *Store
}

func NewSessionRepository(store *Store) user.SessionRepository {
	return &sessionRepository{store: store}
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess user.Session) (user.Session, error) {
	_, err := repo.store.ext(ctx).ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	return sess, errors.Wrap(err, "creating session")
}

func (repo *sessionRepository) GetSession(ctx context.Context, token string) (user.Session, error) {
	var sess user.Session
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &sess,
		`SELECT * FROM sessions WHERE token = $1`, token,
	)
	if err == sql.ErrNoRows {
		return user.Session{}, user.ErrSessionNotFound
	}
	return sess, errors.Wrap(err, "getting session")
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := repo.store.ext(ctx).ExecContext(ctx,
		`DELETE FROM sessions WHERE token = $1`, token,
	)
	return errors.Wrap(err, "deleting session")
}
