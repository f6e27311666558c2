package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"modesta-resort-api/logger"
	"modesta-resort-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

// ErrDuplicateEmail is returned when the users.email unique constraint rejects an insert.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUnknownRole is returned when a stored role is not one the API grants.
var ErrUnknownRole = errors.New("unknown user role")

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateWithProfile(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetActiveByID(ctx context.Context, id int) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int) error
	UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id int, passwordHash string) error
	SetActiveTx(ctx context.Context, tx *sql.Tx, id int, active bool) error
	GetProfile(ctx context.Context, id int) (*model.UserProfile, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, uuid, email, password_hash, first_name, last_name, phone, role, is_active, is_verified, last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.UUID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.Role, &u.IsActive, &u.IsVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: %q for user %d", ErrUnknownRole, u.Role, u.ID)
	}
	return u, nil
}

// CreateWithProfile inserts the user together with its guest profile and a
// Bronze loyalty account. Either all three rows are written or none.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"uuid": user.UUID,
		"role": user.Role,
	})
	log.Info("Executing query to create a new user")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.WithError(err).Error("Failed to begin create user transaction")
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO users (uuid, email, password_hash, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, is_verified, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, user.UUID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.Role).
		Scan(&user.ID, &user.IsActive, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO guest_profiles (user_id) VALUES ($1)`, user.ID); err != nil {
		log.WithError(err).Error("Failed to create guest profile")
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO loyalty_accounts (user_id, tier_id) VALUES ($1, 1)`, user.ID); err != nil {
		log.WithError(err).Error("Failed to create loyalty account")
		return err
	}

	if err := tx.Commit(); err != nil {
		log.WithError(err).Error("Failed to commit create user transaction")
		return err
	}
	return nil
}

// GetByEmail returns sql.ErrNoRows when no user has the address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	log := logger.Log
	log.Info("Executing query to get user by email")

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.WithError(err).Error("Failed to execute get user by email query")
	}
	return user, err
}

// GetActiveByID only finds users whose account is still active.
func (r *UserRepository) GetActiveByID(ctx context.Context, id int) (*model.User, error) {
	log := logger.Log.WithField("user_id", id)
	log.Debug("Executing query to get active user by ID")

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_active = TRUE`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.WithError(err).Error("Failed to execute get active user query")
	}
	return user, err
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute email exists query")
		return false, err
	}
	return exists, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int) error {
	log := logger.Log.WithField("user_id", id)
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		log.WithError(err).Error("Failed to update last login")
	}
	return err
}

func (r *UserRepository) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id int, passwordHash string) error {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to update user password")

	res, err := tx.ExecContext(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute update password query")
		return err
	}
	return requireRow(res)
}

func (r *UserRepository) SetActiveTx(ctx context.Context, tx *sql.Tx, id int, active bool) error {
	log := logger.Log.WithFields(logrus.Fields{"user_id": id, "active": active})
	log.Info("Executing query to change user active flag")

	res, err := tx.ExecContext(ctx, `UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute set active query")
		return err
	}
	return requireRow(res)
}

// GetProfile joins the user with its loyalty account and guest profile.
func (r *UserRepository) GetProfile(ctx context.Context, id int) (*model.UserProfile, error) {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to get user profile")

	query := `
		SELECT u.uuid, u.email, u.first_name, u.last_name, u.phone, u.role, u.is_verified,
			COALESCE(la.total_points, 0), COALESCE(la.lifetime_points, 0), lt.tier_name, lt.tier_level,
			gp.city, gp.country, COALESCE(gp.vip_status, FALSE), COALESCE(la.member_since, u.created_at::date)
		FROM users u
		LEFT JOIN loyalty_accounts la ON la.user_id = u.id
		LEFT JOIN loyalty_tiers lt ON lt.id = la.tier_id
		LEFT JOIN guest_profiles gp ON gp.user_id = u.id
		WHERE u.id = $1 AND u.is_active = TRUE`

	p := &model.UserProfile{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.Phone, &p.Role,
		&p.IsVerified, &p.LoyaltyPoints, &p.LifetimePoints, &p.TierName, &p.TierLevel,
		&p.City, &p.Country, &p.VIPStatus, &p.MemberSince)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.WithError(err).Error("Failed to execute get user profile query")
		}
		return nil, err
	}
	if !p.Role.Valid() {
		return nil, fmt.Errorf("%w: %q for user %d", ErrUnknownRole, p.Role, id)
	}
	return p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
