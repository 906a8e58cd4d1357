package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

const userColumns = `u.id::text, u.username, u.email, u.phone, u.password_hash, u.created_at,
	(SELECT COALESCE(array_agg(ur.role ORDER BY ur.role), '{}') FROM user_roles ur WHERE ur.user_id = u.id)`

// CreateUser inserts a new user row, its base role, and the optional profile
// in one transaction.
func (s *Store) CreateUser(ctx context.Context, user models.User, profile *models.Profile) (models.User, error) {
	var created models.User
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		const insertUser = `
			INSERT INTO users (id, username, email, phone, password_hash)
			VALUES ($1, $2, $3, $4, $5);`
		if _, err := tx.Exec(ctx, insertUser, user.ID, user.Username, user.Email, user.Phone, user.PasswordHash); err != nil {
			return err
		}
		for _, role := range user.Roles {
			if _, err := tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, user.ID, role); err != nil {
				return err
			}
		}
		if profile != nil {
			const insertProfile = `
				INSERT INTO profiles (user_id, provider_id, onboarding_complete)
				VALUES ($1, NULLIF($2, ''), $3);`
			if _, err := tx.Exec(ctx, insertProfile, user.ID, profile.ProviderID, profile.OnboardingComplete); err != nil {
				return err
			}
		}
		row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1;`, user.ID)
		var err error
		created, err = scanUser(row)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id string) (models.User, error) {
	if !validID(id) {
		return models.User{}, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1::uuid;`, id)
	return scanUser(row)
}

// FindByUsernameOrEmail fetches the first user matching the identifier as username or email.
func (s *Store) FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error) {
	const query = `SELECT ` + userColumns + `
	FROM users u
	WHERE u.username = $1 OR u.email = $1
	LIMIT 1;`
	row := s.pool.QueryRow(ctx, query, identifier)
	return scanUser(row)
}

// HasRole reports whether the user holds role.
func (s *Store) HasRole(ctx context.Context, userID, role string) (bool, error) {
	if !validID(userID) {
		return false, nil
	}
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1::uuid AND role = $2);`,
		userID, role,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("has role: %w", err)
	}
	return ok, nil
}

// GrantRole adds role to the user; granting an existing role is a no-op.
func (s *Store) GrantRole(ctx context.Context, userID, role string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES ($1::uuid, $2) ON CONFLICT DO NOTHING;`,
		userID, role,
	)
	if err != nil {
		if isMissingReference(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

// FindProfile fetches the profile row for a user.
func (s *Store) FindProfile(ctx context.Context, userID string) (models.Profile, error) {
	if !validID(userID) {
		return models.Profile{}, storage.ErrNotFound
	}
	const query = `
	SELECT user_id::text, COALESCE(provider_id, ''), onboarding_complete, updated_at
	FROM profiles
	WHERE user_id = $1::uuid;`
	return scanProfile(s.pool.QueryRow(ctx, query, userID))
}

// CompleteOnboarding flags the provider profile as onboarded.
func (s *Store) CompleteOnboarding(ctx context.Context, userID string) (models.Profile, error) {
	if !validID(userID) {
		return models.Profile{}, storage.ErrNotFound
	}
	const query = `
	UPDATE profiles
	SET onboarding_complete = TRUE, updated_at = NOW()
	WHERE user_id = $1::uuid AND provider_id IS NOT NULL
	RETURNING user_id::text, COALESCE(provider_id, ''), onboarding_complete, updated_at;`
	return scanProfile(s.pool.QueryRow(ctx, query, userID))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Phone, &user.PasswordHash, &user.CreatedAt, &user.Roles); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.ProviderID, &p.OnboardingComplete, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, storage.ErrNotFound
		}
		return models.Profile{}, err
	}
	return p, nil
}
