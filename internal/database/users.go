package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// User represents an API user, keyed by the auth provider's subject claim.
type User struct {
	ID               uuid.UUID
	AuthSubject      string
	Email            string
	Tier             string
	StripeCustomerID *string
	CreatedAt        time.Time
}

const userColumns = `id, auth_subject, email, tier, stripe_customer_id, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.AuthSubject, &u.Email, &u.Tier, &u.StripeCustomerID, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user on the free tier.
func (db *DB) CreateUser(ctx context.Context, authSubject, email string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO users (auth_subject, email)
		 VALUES ($1, $2)
		 RETURNING `+userColumns,
		authSubject, email,
	)
	return scanUser(row)
}

// GetUserBySubject retrieves a user by their auth subject.
func (db *DB) GetUserBySubject(ctx context.Context, authSubject string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_subject = $1`,
		authSubject,
	)
	return scanUser(row)
}

// GetUserByID retrieves a user by their ID.
func (db *DB) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// GetUserByStripeCustomer retrieves a user by their Stripe customer ID.
func (db *DB) GetUserByStripeCustomer(ctx context.Context, customerID string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE stripe_customer_id = $1`,
		customerID,
	)
	return scanUser(row)
}

// GetOrCreateUser returns the user with the given auth subject, creating one
// if necessary.
func (db *DB) GetOrCreateUser(ctx context.Context, authSubject, email string) (*User, error) {
	user, err := db.GetUserBySubject(ctx, authSubject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return db.CreateUser(ctx, authSubject, email)
}

// UpdateUserTier updates a user's subscription tier.
func (db *DB) UpdateUserTier(ctx context.Context, id uuid.UUID, tier string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET tier = $1 WHERE id = $2`,
		tier, id,
	)
	return err
}

// UpdateUserStripeCustomer records the user's Stripe customer ID.
func (db *DB) UpdateUserStripeCustomer(ctx context.Context, id uuid.UUID, customerID string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $1 WHERE id = $2`,
		customerID, id,
	)
	return err
}

// DeleteUser deletes a user by ID.
func (db *DB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	return err
}
