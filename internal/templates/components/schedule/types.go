package schedule

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/models"
)

type CellState string

const (
	CellFree   CellState = "free"
	CellBooked CellState = "booked"
	CellMine   CellState = "mine"
	CellPast   CellState = "past"
)

type CourtOption struct {
	ID       int64
	Label    string
	Selected bool
}

func (o CourtOption) Value() string {
	return strconv.FormatInt(o.ID, 10)
}

type DayColumn struct {
	Date  string
	Label string
}

type Cell struct {
	Date  string
	Slot  string
	State CellState
}

type SlotRow struct {
	Label string
	Cells []Cell
}

type WeekData struct {
	CourtID   int64
	CourtName string
	Courts    []CourtOption
	WeekStart string
	PrevWeek  string
	NextWeek  string
	Days      []DayColumn
	Rows      []SlotRow
}

// WeekHref links to the schedule of the same court for the week holding date.
func (d WeekData) WeekHref(date string) string {
	query := url.Values{}
	query.Set("court_id", strconv.FormatInt(d.CourtID, 10))
	query.Set("date", date)
	return "/schedule?" + query.Encode()
}

func NewCourtOptions(courts []models.Court, selected int64) []CourtOption {
	options := make([]CourtOption, 0, len(courts))
	for _, court := range courts {
		label := strings.TrimSpace(court.Name)
		if label == "" {
			label = fmt.Sprintf("Court %d", court.ID)
		}
		options = append(options, CourtOption{ID: court.ID, Label: label, Selected: court.ID == selected})
	}
	return options
}

// NewWeekData pivots a resolved week into slot rows by day columns.
// Slots that started before now render as past unless they are booked.
func NewWeekData(week booking.Week, courts []models.Court, now time.Time) WeekData {
	data := WeekData{
		CourtID:   week.Court.ID,
		CourtName: week.Court.Name,
		Courts:    NewCourtOptions(courts, week.Court.ID),
		WeekStart: week.Start.String(),
		PrevWeek:  week.Start.AddDays(-7).String(),
		NextWeek:  week.Start.AddDays(7).String(),
	}
	if len(week.Days) == 0 {
		return data
	}

	for _, day := range week.Days {
		data.Days = append(data.Days, DayColumn{
			Date:  day.Date.String(),
			Label: day.Date.Start(time.UTC).Format("Mon 02 Jan"),
		})
	}

	for i, slot := range week.Days[0].Slots {
		row := SlotRow{Label: slot.Start.String(), Cells: make([]Cell, 0, len(week.Days))}
		for _, day := range week.Days {
			if i >= len(day.Slots) {
				continue
			}
			status := day.Slots[i]
			row.Cells = append(row.Cells, Cell{
				Date:  day.Date.String(),
				Slot:  status.Start.String(),
				State: cellState(status, now),
			})
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func cellState(status booking.SlotStatus, now time.Time) CellState {
	switch {
	case status.Mine:
		return CellMine
	case status.Booked:
		return CellBooked
	case status.StartsAt.Before(now):
		return CellPast
	default:
		return CellFree
	}
}
