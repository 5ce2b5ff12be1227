package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"uniride/internal/domain"
	"uniride/internal/repository"
)

const userColumns = `uid, user_id, first_name, last_name, email, phone, photo,
	city, address, nearby_landmark, is_driver, password_hash, created_at`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		user.UID,
		user.UserID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.Photo,
		user.City,
		user.Address,
		user.NearbyLandmark,
		user.IsDriver,
		user.PasswordHash,
		user.CreatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return repository.ErrDuplicate
	}

	return err
}

// GetByUID retrieves a user by account UID.
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	return r.getOne(ctx, query, uid)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// Update persists profile changes.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, photo = $4,
			city = $5, address = $6, nearby_landmark = $7, is_driver = $8, password_hash = $9
		WHERE uid = $10`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.Photo,
		user.City,
		user.Address,
		user.NearbyLandmark,
		user.IsDriver,
		user.PasswordHash,
		user.UID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MyTrips returns the normalized trip references for a user: trips they drive
// unioned with trips they applied to, newest first.
func (r *UserRepository) MyTrips(ctx context.Context, uid string) ([]domain.TripRef, error) {
	query := `
		SELECT id AS trip_id, 'driver' AS role, status, created_at AS at
		FROM trips WHERE driver_uid = $1
		UNION ALL
		SELECT trip_id, 'passenger' AS role, status, applied_at AS at
		FROM applications WHERE user_id = $1
		ORDER BY at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []domain.TripRef
	for rows.Next() {
		var ref domain.TripRef
		var status string
		var at sql.NullTime
		if err := rows.Scan(&ref.TripID, &ref.Role, &status, &at); err != nil {
			return nil, err
		}
		if ref.Role == domain.TripRoleDriver {
			// Driver rows carry the trip status; expose the lifecycle phase
			// in application-status vocabulary for a uniform shape.
			ref.Status = driverRefStatus(domain.TripStatus(status))
		} else {
			ref.Status = domain.ApplicationStatus(status)
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

func driverRefStatus(status domain.TripStatus) domain.ApplicationStatus {
	switch status {
	case domain.TripStatusInProgress:
		return domain.ApplicationStatusInProgress
	case domain.TripStatusFinished:
		return domain.ApplicationStatusFinished
	case domain.TripStatusCancelled:
		return domain.ApplicationStatusCancelled
	default:
		return domain.ApplicationStatusAccepted
	}
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.UID,
		&user.UserID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Photo,
		&user.City,
		&user.Address,
		&user.NearbyLandmark,
		&user.IsDriver,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
