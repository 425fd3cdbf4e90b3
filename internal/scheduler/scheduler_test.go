package scheduler

import (
	"context"
	"errors"
	"testing"
)

type stubPurger struct {
	calls  int
	purged int64
	err    error
}

func (p *stubPurger) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	p.calls++
	return p.purged, p.err
}

func newTestScheduler(t *testing.T) *Service {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.Start()
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestAddJobValidation(t *testing.T) {
	s := newTestScheduler(t)
	noop := func(context.Context) error { return nil }

	tests := []struct {
		name     string
		jobName  string
		cronExpr string
		wantErr  error
	}{
		{"empty name", " ", "0 * * * *", ErrEmptyJobName},
		{"empty cron", "job", "", ErrEmptyCronExpr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddJob(tt.jobName, tt.cronExpr, noop); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := s.AddJob("bad", "not a cron", noop); err == nil {
		t.Fatal("expected invalid cron expression to fail")
	}
}

func TestNilService(t *testing.T) {
	var s *Service
	if err := s.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := s.AddJob("job", "0 * * * *", nil); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRegisterTokenPurge(t *testing.T) {
	s := newTestScheduler(t)

	if err := RegisterTokenPurge(s, "0 * * * *", nil); err == nil {
		t.Fatal("expected error for nil purger")
	}
	if err := RegisterTokenPurge(s, "0 * * * *", &stubPurger{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0] != TokenPurgeJobName {
		t.Fatalf("unexpected jobs %v", jobs)
	}
}

func TestTokenPurgeTask(t *testing.T) {
	purger := &stubPurger{purged: 3}
	if err := tokenPurgeTask(purger)(context.Background()); err != nil {
		t.Fatalf("task: %v", err)
	}
	if purger.calls != 1 {
		t.Fatalf("expected one purge call, got %d", purger.calls)
	}

	failing := &stubPurger{err: errors.New("db down")}
	if err := tokenPurgeTask(failing)(context.Background()); err == nil {
		t.Fatal("expected purge failure to be reported")
	}
}
