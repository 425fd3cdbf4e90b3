package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/codr1/courtbook/internal/models"
)

const userColumns = "id, name, email, phone, password_hash, role, created_at"

type CreateUserParams struct {
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         models.Role
	CreatedAt    time.Time
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u     models.User
		phone sql.NullString
		role  string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &phone, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.Phone = phone.String
	u.Role = models.Role(role)
	return u, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateUser fails with ErrUniqueViolation when the email is taken.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	row := q.queryRow(ctx, `
		INSERT INTO users (name, email, phone, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Name, arg.Email, nullString(arg.Phone), arg.PasswordHash, string(arg.Role), arg.CreatedAt.UTC(),
	)
	u, err := scanUser(row)
	return u, classify(err)
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(q.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (q *Queries) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := q.query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserRole returns sql.ErrNoRows when the user does not exist.
func (q *Queries) UpdateUserRole(ctx context.Context, id int64, role models.Role) (models.User, error) {
	row := q.queryRow(ctx, `
		UPDATE users SET role = ?
		WHERE id = ?
		RETURNING `+userColumns,
		string(role), id,
	)
	return scanUser(row)
}

// DeleteUser removes the user and, through the foreign key, their
// reservations.
func (q *Queries) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
