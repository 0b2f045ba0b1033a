package data

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// StaffRepository handles database operations for back-office staff users.
// Staff are platform-level records (super admins have no tenant), so these
// lookups are not tenant-scoped; role checks happen in the auth layer.
type StaffRepository struct {
	db *pg.DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *pg.DB) *StaffRepository {
	return &StaffRepository{
		db: db,
	}
}

// GetByID retrieves a staff user by id
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffUser, error) {
	user := new(models.StaffUser)
	err := r.db.ModelContext(ctx, user).
		Where("staff_user.id = ?", id).
		Relation("Tenant").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByEmail retrieves a staff user by email
func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*models.StaffUser, error) {
	user := new(models.StaffUser)
	err := r.db.ModelContext(ctx, user).
		Where("staff_user.email = ?", email).
		Relation("Tenant").
		Select()

	if err != nil {
		if err == pg.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user, nil
}

// Create inserts a new staff user
func (r *StaffRepository) Create(ctx context.Context, user *models.StaffUser) error {
	_, err := r.db.ModelContext(ctx, user).Insert()
	if err != nil {
		if isDuplicateError(err, "staff_users_email_key") {
			return ErrDuplicateRecord
		}
		return err
	}

	return nil
}

// RecordLoginAttempt persists the lockout counters after a login attempt
func (r *StaffRepository) RecordLoginAttempt(ctx context.Context, user *models.StaffUser) error {
	_, err := r.db.ModelContext(ctx, user).
		Set("failed_attempts = ?", user.FailedAttempts).
		Set("locked_until = ?", user.LockedUntil).
		Set("last_login = ?", user.LastLogin).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", user.ID).
		Update()

	return err
}
