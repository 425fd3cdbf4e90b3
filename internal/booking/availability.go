package booking

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/slots"
)

// SlotStatus is one grid slot of a court on a day.
type SlotStatus struct {
	Start    slots.TimeOfDay `json:"start"`
	StartsAt time.Time       `json:"starts_at"`
	EndsAt   time.Time       `json:"ends_at"`
	Booked   bool            `json:"booked"`
	// Mine is set when the viewer holds the reservation for the slot.
	Mine bool `json:"mine,omitempty"`
}

// Availability is a snapshot of one court on one day, ordered by slot
// start. It is not a lock; a free slot may be taken before it is claimed.
type Availability struct {
	Court models.Court `json:"court"`
	Date  slots.Day    `json:"date"`
	Slots []SlotStatus `json:"slots"`
}

func (a Availability) FreeCount() int {
	n := 0
	for _, slot := range a.Slots {
		if !slot.Booked {
			n++
		}
	}
	return n
}

type Week struct {
	Court models.Court   `json:"court"`
	Start slots.Day      `json:"start"`
	Days  []Availability `json:"days"`
}

// ResolveAvailability reports which grid slots of the court are booked on
// the day. A slot is booked only when a reservation starts exactly at the
// slot start. viewerID marks the viewer's own reservations and may be zero.
func (s *Service) ResolveAvailability(ctx context.Context, day slots.Day, courtID, viewerID int64) (Availability, error) {
	court, err := s.lookupCourt(ctx, courtID)
	if err != nil {
		return Availability{}, err
	}
	return s.resolveDay(ctx, court, day, viewerID)
}

// ResolveWeek resolves the Monday-based week containing day. The seven days
// are fetched concurrently; any failure fails the whole week.
func (s *Service) ResolveWeek(ctx context.Context, day slots.Day, courtID, viewerID int64) (Week, error) {
	court, err := s.lookupCourt(ctx, courtID)
	if err != nil {
		return Week{}, err
	}

	start := day.StartOfWeek()
	days := make([]Availability, 7)
	g, gctx := errgroup.WithContext(ctx)
	for i := range days {
		g.Go(func() error {
			availability, err := s.resolveDay(gctx, court, start.AddDays(i), viewerID)
			if err != nil {
				return err
			}
			days[i] = availability
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Week{}, err
	}

	return Week{Court: court, Start: start, Days: days}, nil
}

// ResolveAllCourts resolves the day for every court, in court order.
func (s *Service) ResolveAllCourts(ctx context.Context, day slots.Day, viewerID int64) ([]Availability, error) {
	courts, err := s.store.ListCourts(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list courts", err)
	}

	out := make([]Availability, len(courts))
	g, gctx := errgroup.WithContext(ctx)
	for i, court := range courts {
		g.Go(func() error {
			availability, err := s.resolveDay(gctx, court, day, viewerID)
			if err != nil {
				return err
			}
			out[i] = availability
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) resolveDay(ctx context.Context, court models.Court, day slots.Day, viewerID int64) (Availability, error) {
	from, to := day.Bounds(s.loc)
	reservations, err := s.store.ListReservationsForCourtInRange(ctx, court.ID, from, to)
	if err != nil {
		return Availability{}, storeFailure(ctx, "list reservations", err)
	}

	holders := make(map[int64]int64, len(reservations))
	for _, r := range reservations {
		holders[r.StartTime.Unix()] = r.UserID
	}

	statuses := make([]SlotStatus, 0, len(s.grid))
	for _, tod := range s.grid {
		startsAt := day.At(tod, s.loc)
		holder, booked := holders[startsAt.Unix()]
		statuses = append(statuses, SlotStatus{
			Start:    tod,
			StartsAt: startsAt,
			EndsAt:   startsAt.Add(s.window.Duration),
			Booked:   booked,
			Mine:     booked && viewerID > 0 && holder == viewerID,
		})
	}

	return Availability{Court: court, Date: day, Slots: statuses}, nil
}
