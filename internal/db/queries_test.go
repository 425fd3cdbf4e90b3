package db

import "testing"

func TestRebind(t *testing.T) {
	query := "SELECT * FROM reservations WHERE court_id = ? AND start_time >= ? AND start_time < ?"

	sqlite := NewQueries(nil, DialectSQLite)
	if got := sqlite.rebind(query); got != query {
		t.Fatalf("sqlite rebind changed query: %q", got)
	}

	pg := NewQueries(nil, DialectPostgres)
	want := "SELECT * FROM reservations WHERE court_id = $1 AND start_time >= $2 AND start_time < $3"
	if got := pg.rebind(query); got != want {
		t.Fatalf("postgres rebind = %q, want %q", got, want)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"test.db", "test.db?_fk=1&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{"file:test.db?cache=shared", "file:test.db?cache=shared&_fk=1&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{"test.db?_fk=0", "test.db?_fk=0&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
	}

	for _, tt := range tests {
		if got := sqliteDSN(tt.in); got != tt.want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
