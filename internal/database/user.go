package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/partylabs/ideasthesia/internal/auth"
	"github.com/partylabs/ideasthesia/internal/models"
)

// CreateUser hashes the password and inserts the account. The caller's
// user.Password field is replaced with the encoded hash.
func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.CreateHash(user.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, email, password, username, is_admin)
	      VALUES ($1, $2, $3, $4, $5)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Email, user.Password, user.Username, user.IsAdmin,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	q := `
	SELECT id, email, password, username, is_admin
	FROM users
	WHERE email=$1
	`
	err := DB.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.Password, &u.Username, &u.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AuthenticateUser checks the credentials and returns a signed session token
// carrying the user's id and nickname.
func AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.ComparePasswordAndHash(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.ID.String(), user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}

	return token, nil
}
