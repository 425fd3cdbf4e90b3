package db

import (
	"context"
	"time"

	"github.com/codr1/courtbook/internal/models"
)

const (
	reservationColumns   = "r.id, r.user_id, r.court_id, r.start_time, r.end_time, r.created_at"
	reservationReturning = "id, user_id, court_id, start_time, end_time, created_at"
)

type InsertReservationParams struct {
	UserID    int64
	CourtID   int64
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

func scanReservation(row rowScanner) (models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.CourtID, &r.StartTime, &r.EndTime, &r.CreatedAt)
	return r, err
}

func scanReservationWithNames(row rowScanner) (models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.CourtID, &r.StartTime, &r.EndTime, &r.CreatedAt, &r.CourtName, &r.UserName)
	return r, err
}

// InsertReservation claims a slot. A second claim on the same court and
// start fails with ErrUniqueViolation.
func (q *Queries) InsertReservation(ctx context.Context, arg InsertReservationParams) (models.Reservation, error) {
	row := q.queryRow(ctx, `
		INSERT INTO reservations (user_id, court_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+reservationReturning,
		arg.UserID, arg.CourtID, arg.StartTime.UTC(), arg.EndTime.UTC(), arg.CreatedAt.UTC(),
	)
	r, err := scanReservation(row)
	return r, classify(err)
}

// GetReservation returns sql.ErrNoRows when the reservation does not exist.
func (q *Queries) GetReservation(ctx context.Context, id int64) (models.Reservation, error) {
	return scanReservation(q.queryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE r.id = ?`, id))
}

// ListReservationsForCourtInRange returns the reservations of one court whose
// start falls in [from, to), ordered by start.
func (q *Queries) ListReservationsForCourtInRange(ctx context.Context, courtID int64, from, to time.Time) ([]models.Reservation, error) {
	rows, err := q.query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE r.court_id = ? AND r.start_time >= ? AND r.start_time < ?
		ORDER BY r.start_time`,
		courtID, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListReservationsByUser returns the user's reservations, latest start first.
func (q *Queries) ListReservationsByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	return q.listWithNames(ctx, `
		SELECT `+reservationColumns+`, c.name, u.name
		FROM reservations r
		JOIN courts c ON c.id = r.court_id
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = ?
		ORDER BY r.start_time DESC, r.id DESC`, userID)
}

// ListAllReservations returns every reservation, latest start first.
func (q *Queries) ListAllReservations(ctx context.Context) ([]models.Reservation, error) {
	return q.listWithNames(ctx, `
		SELECT `+reservationColumns+`, c.name, u.name
		FROM reservations r
		JOIN courts c ON c.id = r.court_id
		JOIN users u ON u.id = r.user_id
		ORDER BY r.start_time DESC, r.id DESC`)
}

func (q *Queries) listWithNames(ctx context.Context, query string, args ...interface{}) ([]models.Reservation, error) {
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Reservation{}
	for rows.Next() {
		r, err := scanReservationWithNames(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReservation hard-deletes a reservation and reports rows removed.
func (q *Queries) DeleteReservation(ctx context.Context, id int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
