package db

import (
	"context"
	"time"

	"github.com/codr1/courtbook/internal/models"
)

const courtColumns = "id, name, type, created_at"

type CreateCourtParams struct {
	Name      string
	Type      string
	CreatedAt time.Time
}

type UpdateCourtParams struct {
	ID   int64
	Name string
	Type string
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourt(row rowScanner) (models.Court, error) {
	var c models.Court
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt)
	return c, err
}

func (q *Queries) CreateCourt(ctx context.Context, arg CreateCourtParams) (models.Court, error) {
	row := q.queryRow(ctx, `
		INSERT INTO courts (name, type, created_at)
		VALUES (?, ?, ?)
		RETURNING `+courtColumns,
		arg.Name, arg.Type, arg.CreatedAt.UTC(),
	)
	c, err := scanCourt(row)
	return c, classify(err)
}

// GetCourt returns sql.ErrNoRows when the court does not exist.
func (q *Queries) GetCourt(ctx context.Context, id int64) (models.Court, error) {
	return scanCourt(q.queryRow(ctx, `SELECT `+courtColumns+` FROM courts WHERE id = ?`, id))
}

// ListCourts returns courts in creation order.
func (q *Queries) ListCourts(ctx context.Context) ([]models.Court, error) {
	rows, err := q.query(ctx, `SELECT `+courtColumns+` FROM courts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courts := []models.Court{}
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

func (q *Queries) CountCourts(ctx context.Context) (int64, error) {
	var n int64
	err := q.queryRow(ctx, `SELECT COUNT(*) FROM courts`).Scan(&n)
	return n, err
}

// UpdateCourt returns sql.ErrNoRows when the court does not exist.
func (q *Queries) UpdateCourt(ctx context.Context, arg UpdateCourtParams) (models.Court, error) {
	row := q.queryRow(ctx, `
		UPDATE courts SET name = ?, type = ?
		WHERE id = ?
		RETURNING `+courtColumns,
		arg.Name, arg.Type, arg.ID,
	)
	c, err := scanCourt(row)
	return c, classify(err)
}

// DeleteCourt reports the number of rows removed. Courts with reservations
// fail with ErrForeignKeyViolation.
func (q *Queries) DeleteCourt(ctx context.Context, id int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM courts WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
