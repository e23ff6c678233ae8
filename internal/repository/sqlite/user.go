package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/ganeswar07/WatchWonders-Backend/internal/apperror"
	"github.com/ganeswar07/WatchWonders-Backend/internal/model"
	"github.com/ganeswar07/WatchWonders-Backend/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores users. Password and refresh token hashes are only read by
// the *WithSecrets / GetByLogin queries.
type UserDB struct {
	conn *sql.DB
}

const (
	userPublicCols = `id, user_name, email, full_name, avatar, cover_image, github_id, created_at, updated_at`
	userSecretCols = userPublicCols + `, password_hash, refresh_token_hash`
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner, withSecrets bool) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
		refresh  sql.NullString
	)
	dest := []any{&u.ID, &u.UserName, &u.Email, &u.FullName, &u.Avatar, &u.CoverImage, &githubID, &u.CreatedAt, &u.UpdatedAt}
	if withSecrets {
		dest = append(dest, &u.PasswordHash, &refresh)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	u.GitHubID = githubID.Int64
	u.RefreshTokenHash = refresh.String
	return &u, nil
}

// nullableGitHubID maps the zero id to NULL so the UNIQUE index ignores
// accounts without a GitHub link.
func nullableGitHubID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// Create inserts a new user. Email and user name are unique; a clash is
// reported as a conflict on whichever value was submitted.
func (d *UserDB) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.ID = xid.New().String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO users (id, user_name, email, full_name, avatar, cover_image,
		                    password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.UserName, u.Email, u.FullName, u.Avatar, u.CoverImage,
		u.PasswordHash, nullableGitHubID(u.GitHubID), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "User with email or username already exists",
			}
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", u.UserName, err)
	}
	return nil
}

func (d *UserDB) getOne(ctx context.Context, withSecrets bool, where string, arg any, notFound error) (*model.User, error) {
	cols := userPublicCols
	if withSecrets {
		cols = userSecretCols
	}
	u, err := scanUser(d.conn.QueryRowContext(ctx, `SELECT `+cols+` FROM users WHERE `+where, arg), withSecrets)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return u, nil
}

// GetByID returns the public projection of a user.
func (d *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return d.getOne(ctx, false, `id = ?`, id, apperror.NotFound("user", id))
}

func (d *UserDB) GetByIDWithSecrets(ctx context.Context, id string) (*model.User, error) {
	return d.getOne(ctx, true, `id = ?`, id, apperror.NotFound("user", id))
}

// GetByLogin accepts either a user name or an email. Both are stored
// lower-cased, so the input is lower-cased too.
func (d *UserDB) GetByLogin(ctx context.Context, userNameOrEmail string) (*model.User, error) {
	login := strings.ToLower(strings.TrimSpace(userNameOrEmail))
	u, err := scanUser(d.conn.QueryRowContext(ctx,
		`SELECT `+userSecretCols+` FROM users WHERE user_name = ? OR email = ? LIMIT 1`,
		login, login,
	), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "User does not exist"}
		}
		return nil, fmt.Errorf("sqlite: getting user by login: %w", err)
	}
	return u, nil
}

func (d *UserDB) GetByUserName(ctx context.Context, userName string) (*model.User, error) {
	name := strings.ToLower(strings.TrimSpace(userName))
	return d.getOne(ctx, false, `user_name = ?`, name,
		&apperror.AppError{Err: apperror.ErrNotFound, Message: "channel does not exist"})
}

func (d *UserDB) ExistsByEmailOrUserName(ctx context.Context, email, userName string) (bool, error) {
	var exists bool
	err := d.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? OR user_name = ?)`,
		email, userName,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking user existence: %w", err)
	}
	return exists, nil
}

func (d *UserDB) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := d.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("sqlite: checking user %s: %w", id, err)
	}
	return exists, nil
}

// SetRefreshTokenHash overwrites the stored hash. An empty hash stores NULL.
func (d *UserDB) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`,
		sql.NullString{String: hash, Valid: hash != ""}, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting refresh token for user %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("user", id))
}

// RotateRefreshTokenHash is a compare-and-swap on the stored hash. Of two
// concurrent refreshes presenting the same token, only one can win.
func (d *UserDB) RotateRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE users SET refresh_token_hash = ?, updated_at = ?
		 WHERE id = ? AND refresh_token_hash = ?`,
		newHash, time.Now().UTC(), id, oldHash,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: rotating refresh token for user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n == 1, nil
}

func (d *UserDB) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}
	return rowsAffected(res, apperror.NotFound("user", id))
}

// UpdateAccount changes the full name and email and returns the updated
// public projection.
func (d *UserDB) UpdateAccount(ctx context.Context, id, fullName, email string) (*model.User, error) {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`,
		fullName, email, time.Now().UTC(), id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "email is already in use", Field: "email"}
		}
		return nil, fmt.Errorf("sqlite: updating account %s: %w", id, err)
	}
	if err := rowsAffected(res, apperror.NotFound("user", id)); err != nil {
		return nil, err
	}
	return d.GetByID(ctx, id)
}

func (d *UserDB) UpdateAvatar(ctx context.Context, id, url string) error {
	return d.setColumn(ctx, "avatar", id, url)
}

func (d *UserDB) UpdateCoverImage(ctx context.Context, id, url string) error {
	return d.setColumn(ctx, "cover_image", id, url)
}

// setColumn is only called with the constant column names above.
func (d *UserDB) setColumn(ctx context.Context, column, id, value string) error {
	res, err := d.conn.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating %s for user %s: %w", column, id, err)
	}
	return rowsAffected(res, apperror.NotFound("user", id))
}

// UpsertGitHub links or creates the account for a GitHub identity:
//  1. an account already linked to u.GitHubID is refreshed and returned
//  2. else an account with the same email gets the link
//  3. else a new account is inserted
//
// Steps run in one transaction so two parallel callbacks cannot both insert.
func (d *UserDB) UpsertGitHub(ctx context.Context, u *model.User) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning github upsert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var existingID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE github_id = ?`, u.GitHubID).Scan(&existingID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", u.GitHubID, err)
	}

	if existingID == "" && u.Email != "" {
		err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, u.Email).Scan(&existingID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("sqlite: looking up user by email: %w", err)
		}
	}

	if existingID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET github_id = ?, updated_at = ? WHERE id = ?`,
			u.GitHubID, now, existingID,
		); err != nil {
			return fmt.Errorf("sqlite: linking github account to %s: %w", existingID, err)
		}
	} else {
		existingID = xid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, user_name, email, full_name, avatar, cover_image, github_id, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, '', ?, ?, ?)`,
			existingID, u.UserName, u.Email, u.FullName, u.Avatar, u.GitHubID, now, now,
		); err != nil {
			if isUniqueViolation(err) {
				return &apperror.AppError{Err: apperror.ErrConflict, Message: "User with email or username already exists"}
			}
			return fmt.Errorf("sqlite: inserting github user %d: %w", u.GitHubID, err)
		}
	}

	stored, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userPublicCols+` FROM users WHERE id = ?`, existingID), false)
	if err != nil {
		return fmt.Errorf("sqlite: reloading user %s: %w", existingID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing github upsert: %w", err)
	}

	*u = *stored
	return nil
}

// ChannelProfile loads a channel by user name with its subscription counts
// and whether viewerID is subscribed to it.
func (d *UserDB) ChannelProfile(ctx context.Context, userName, viewerID string) (*model.ChannelProfile, error) {
	name := strings.ToLower(strings.TrimSpace(userName))

	var p model.ChannelProfile
	err := d.conn.QueryRowContext(ctx,
		`SELECT u.id, u.user_name, u.full_name, u.email, u.avatar, u.cover_image,
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id),
		        (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id),
		        EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = ?)
		 FROM users u
		 WHERE u.user_name = ?`,
		viewerID, name,
	).Scan(&p.ID, &p.UserName, &p.FullName, &p.Email, &p.Avatar, &p.CoverImage,
		&p.SubscribersCount, &p.ChannelsSubscribedToCount, &p.IsSubscribed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "channel does not exist"}
		}
		return nil, fmt.Errorf("sqlite: loading channel %s: %w", name, err)
	}

	switch {
	case p.ID == viewerID:
		p.SubscriptionStatus = model.StatusSameUser
	case p.IsSubscribed:
		p.SubscriptionStatus = model.StatusSubscribed
	default:
		p.SubscriptionStatus = model.StatusNotSubscribed
	}
	return &p, nil
}
