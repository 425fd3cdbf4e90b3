package reservations

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

type handlerFixture struct {
	db    *db.DB
	mux   *http.ServeMux
	court models.Court
	ana   models.Identity
	luis  models.Identity
	admin models.Identity
}

func setupHandlerTest(t *testing.T) handlerFixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	prev := service
	t.Cleanup(func() { service = prev })
	service = testutil.NewBookingService(t, database, fixedNow)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reservations", HandleReservationCreate)
	mux.HandleFunc("GET /api/reservations/mine", HandleReservationsMine)
	mux.HandleFunc("GET /api/reservations", HandleReservationsList)
	mux.HandleFunc("DELETE /api/reservations/{id}", HandleReservationCancel)

	return handlerFixture{
		db:    database,
		mux:   mux,
		court: testutil.CreateCourt(t, database, "Pista 1"),
		ana:   testutil.CreateUser(t, database, "Ana", "ana@example.com", models.RoleUser).Identity(),
		luis:  testutil.CreateUser(t, database, "Luis", "luis@example.com", models.RoleUser).Identity(),
		admin: testutil.CreateUser(t, database, "Admin", "admin@example.com", models.RoleAdmin).Identity(),
	}
}

func (f handlerFixture) do(t *testing.T, who *models.Identity, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != nil {
		req = testutil.AsUser(req, *who)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f handlerFixture) bookBody(date, slot string) string {
	return `{"court_id":` + strconv.FormatInt(f.court.ID, 10) + `,"date":"` + date + `","slot":"` + slot + `"}`
}

func TestCreateReservation(t *testing.T) {
	f := setupHandlerTest(t)

	rec := f.do(t, &f.ana, http.MethodPost, "/api/reservations", f.bookBody("2024-06-03", "10:30"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)
	if resp.Reservation.ID == 0 || !resp.Reservation.StartTime.Equal(want) || !resp.Reservation.EndTime.Equal(want.Add(90*time.Minute)) {
		t.Fatalf("unexpected reservation %+v", resp.Reservation)
	}
	if resp.Reservation.CourtName != "Pista 1" || resp.Reservation.UserID != f.ana.ID {
		t.Fatalf("unexpected reservation %+v", resp.Reservation)
	}

	rec = f.do(t, &f.luis, http.MethodPost, "/api/reservations", f.bookBody("2024-06-03", "10:30"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second claim status %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"slot_taken"`) {
		t.Fatalf("unexpected conflict body %s", rec.Body.String())
	}
}

func TestCreateReservationErrors(t *testing.T) {
	f := setupHandlerTest(t)

	tests := []struct {
		name   string
		who    *models.Identity
		body   string
		status int
		field  string
	}{
		{"anonymous", nil, f.bookBody("2024-06-03", "10:30"), http.StatusUnauthorized, ""},
		{"malformed json", &f.ana, `{"court_id":`, http.StatusBadRequest, ""},
		{"unknown field", &f.ana, `{"court_id":1,"date":"2024-06-03","slot":"10:30","extra":1}`, http.StatusBadRequest, ""},
		{"off grid", &f.ana, f.bookBody("2024-06-03", "10:00"), http.StatusBadRequest, "slot"},
		{"bad date", &f.ana, f.bookBody("03/06/2024", "10:30"), http.StatusBadRequest, "date"},
		{"unknown court", &f.ana, `{"court_id":999,"date":"2024-06-03","slot":"10:30"}`, http.StatusBadRequest, "court_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.who, http.MethodPost, "/api/reservations", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.field != "" && !strings.Contains(rec.Body.String(), `"field":"`+tt.field+`"`) {
				t.Fatalf("expected field %q in %s", tt.field, rec.Body.String())
			}
		})
	}

	rec := f.do(t, &f.admin, http.MethodGet, "/api/reservations", "")
	if !strings.Contains(rec.Body.String(), `"reservations":[]`) {
		t.Fatalf("expected no reservations after failed creates, got %s", rec.Body.String())
	}
}

func TestListReservations(t *testing.T) {
	f := setupHandlerTest(t)

	for _, slot := range []string{"09:00", "12:00"} {
		if rec := f.do(t, &f.ana, http.MethodPost, "/api/reservations", f.bookBody("2024-06-03", slot)); rec.Code != http.StatusCreated {
			t.Fatalf("book %s: %d %s", slot, rec.Code, rec.Body.String())
		}
	}
	if rec := f.do(t, &f.luis, http.MethodPost, "/api/reservations", f.bookBody("2024-06-04", "09:00")); rec.Code != http.StatusCreated {
		t.Fatalf("book luis: %d", rec.Code)
	}

	rec := f.do(t, &f.ana, http.MethodGet, "/api/reservations/mine", "")
	var mine reservationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mine.Reservations) != 2 || mine.Reservations[0].StartTime.Hour() != 12 {
		t.Fatalf("expected ana's two reservations newest first, got %+v", mine.Reservations)
	}

	if rec := f.do(t, nil, http.MethodGet, "/api/reservations/mine", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous mine status %d, want 401", rec.Code)
	}
	if rec := f.do(t, &f.ana, http.MethodGet, "/api/reservations", ""); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin list status %d, want 403", rec.Code)
	}

	rec = f.do(t, &f.admin, http.MethodGet, "/api/reservations", "")
	var all reservationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all.Reservations) != 3 || all.Reservations[0].UserName != "Luis" {
		t.Fatalf("unexpected admin list %+v", all.Reservations)
	}
}

func TestCancelReservation(t *testing.T) {
	f := setupHandlerTest(t)

	rec := f.do(t, &f.ana, http.MethodPost, "/api/reservations", f.bookBody("2024-06-03", "10:30"))
	var created reservationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := "/api/reservations/" + strconv.FormatInt(created.Reservation.ID, 10)

	if rec := f.do(t, &f.luis, http.MethodDelete, path, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("other user cancel status %d, want 403", rec.Code)
	}
	if rec := f.do(t, &f.ana, http.MethodDelete, "/api/reservations/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status %d, want 400", rec.Code)
	}
	if rec := f.do(t, &f.ana, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("owner cancel status %d: %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(t, &f.ana, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("repeat cancel status %d, want 404", rec.Code)
	}

	// The freed slot can be booked again.
	if rec := f.do(t, &f.luis, http.MethodPost, "/api/reservations", f.bookBody("2024-06-03", "10:30")); rec.Code != http.StatusCreated {
		t.Fatalf("rebook status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlersNotInitialized(t *testing.T) {
	prev := service
	t.Cleanup(func() { service = prev })
	service = nil

	rec := httptest.NewRecorder()
	HandleReservationsMine(rec, httptest.NewRequest(http.MethodGet, "/api/reservations/mine", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}
