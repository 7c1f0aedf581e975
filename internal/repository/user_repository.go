package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/vicare/internal/model"
	"github.com/iliyamo/vicare/internal/utils"
)

// UserRepo is the credential store: the persistent mapping from email to
// password hash and profile fields.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,name,avatar_url,emergency_contact,primary_doctor_contact,created_at"

// Create hashes the password and inserts the user, returning its ID.
// Email is normalized to lowercase before the insert so the unique index
// makes uniqueness case-insensitive. A duplicate-key violation (MySQL
// error 1062) maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, password, name string, cost int) (uint64, error) {
	email = utils.NormalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, name) VALUES (?,?,?)",
		email, hash, name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = utils.NormalizeEmail(email)
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL,
		&u.EmergencyContact, &u.PrimaryDoctorContact, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.AvatarURL,
		&u.EmergencyContact, &u.PrimaryDoctorContact, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Exists reports whether a user row with the given id is still present.
// The identity verifier calls this after resolving an assertion so that a
// deleted account invalidates every outstanding assertion for its id.
func (r *UserRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE id=? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProfile stores the avatar URL and contact fields. An empty
// avatarURL clears the reference; contacts are always overwritten, which
// matches the settings form sending the full set each time.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, avatarURL, emergencyContact, primaryDoctorContact string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar_url=?, emergency_contact=?, primary_doctor_contact=? WHERE id=?",
		avatarURL, emergencyContact, primaryDoctorContact, id)
	return err
}

// DeleteCascade removes the user and every record owned by it inside one
// transaction. Either the whole account disappears or nothing does; a
// failure mid-way rolls back so no orphaned rows survive a partial delete.
func (r *UserRepo) DeleteCascade(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		"DELETE FROM medicines WHERE user_id=?",
		"DELETE FROM vaccines WHERE user_id=?",
		"DELETE FROM appointments WHERE user_id=?",
		"DELETE FROM support_messages WHERE user_id=?",
		"DELETE FROM users WHERE id=?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}
