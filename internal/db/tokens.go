package db

import (
	"context"
	"time"
)

// RevokeToken records a token id as unusable until it would have expired.
// Revoking the same id twice is a no-op.
func (q *Queries) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := q.exec(ctx, `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES (?, ?)
		ON CONFLICT (jti) DO NOTHING`,
		jti, expiresAt.UTC(),
	)
	return err
}

func (q *Queries) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int64
	if err := q.queryRow(ctx, `SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// PurgeRevokedTokens drops revocations for tokens that have expired anyway.
func (q *Queries) PurgeRevokedTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
