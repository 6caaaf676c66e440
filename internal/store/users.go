package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// normEmail trims and lowercases the email (needed if DB col isnt citext)
func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// CreateUser inserts a new user with a hashed password
func (p *Postgres) CreateUser(ctx context.Context, email, password, name string) (User, error) {
	email = normEmail(email)
	if email == "" || password == "" {
		return User{}, errors.New("missing email or password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, created_at
	`, email, string(hash), name)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByEmail returns the user + hashed password for login verification
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (User, string, error) {
	email = normEmail(email)

	row := p.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, created_at
		FROM users
		WHERE email = $1
	`, email)

	var u User
	var hash string
	if err := row.Scan(&u.ID, &u.Email, &hash, &u.Name, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	return u, hash, nil
}

// VerifyUser checks email + password match. Unknown email and wrong password
// fail identically.
func (p *Postgres) VerifyUser(ctx context.Context, email, password string) (User, error) {
	u, hash, err := p.GetUserByEmail(ctx, email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

// isUniqueViolation reports a postgres 23505 error
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
