package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/evanvp/SoMapBack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, name, job, interests, avatar,
	online, latitude, longitude, last_seen_at, created_at, updated_at
`

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// ListAll returns every user record, ordered by id so repeated snapshots
// keep a stable relative order.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

type UpdateProfileInput struct {
	Name      *string
	Job       *string
	Interests *string
	Avatar    *string
}

func (r *UserRepository) UpdateProfile(
	ctx context.Context,
	userID int64,
	input UpdateProfileInput,
) (*models.User, error) {
	query := `
		UPDATE users
		SET
			name = COALESCE($2, name),
			job = COALESCE($3, job),
			interests = COALESCE($4, interests),
			avatar = COALESCE($5, avatar),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return r.scanUser(r.db.QueryRow(
		ctx, query, userID, input.Name, input.Job, input.Interests, input.Avatar,
	))
}

// SetOnline flips the presence flag. Going online also refreshes
// last_seen_at so the stale sweeper does not immediately undo it.
func (r *UserRepository) SetOnline(ctx context.Context, userID int64, online bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET online = $2,
		    last_seen_at = CASE WHEN $2 THEN NOW() ELSE last_seen_at END,
		    updated_at = NOW()
		WHERE id = $1
	`, userID, online)
	return err
}

func (r *UserRepository) UpdateLocation(
	ctx context.Context,
	userID int64,
	location models.Location,
) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET latitude = $2, longitude = $3, last_seen_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`, userID, location.Latitude, location.Longitude)
	return err
}

// MarkStaleOffline flips users offline whose last heartbeat predates the
// cutoff. Returns the number of rows changed.
func (r *UserRepository) MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET online = FALSE, updated_at = NOW()
		WHERE online = TRUE
		  AND (last_seen_at IS NULL OR last_seen_at < $1)
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var latitude sql.NullFloat64
	var longitude sql.NullFloat64
	var lastSeenAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Job,
		&user.Interests,
		&user.Avatar,
		&user.Online,
		&latitude,
		&longitude,
		&lastSeenAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if latitude.Valid && longitude.Valid {
		user.Location = &models.Location{
			Latitude:  latitude.Float64,
			Longitude: longitude.Float64,
		}
	}
	if lastSeenAt.Valid {
		user.LastSeenAt = &lastSeenAt.Time
	}

	return &user, nil
}
