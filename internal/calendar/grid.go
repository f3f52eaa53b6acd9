package calendar

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCalendarParameters = errors.New("invalid calendar parameters")

var monthNames = [...]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Grid is the Monday-first week layout of one month. Dates are UTC midnights.
type Grid struct {
	YearMonth
	MonthName string
	Weeks     [][7]time.Time
	First     time.Time
	Last      time.Time
	Prev      YearMonth
	Next      YearMonth
}

func NewGrid(year, month int) (Grid, error) {
	if year <= 0 || month < 1 || month > 12 {
		return Grid{}, fmt.Errorf("%w: year=%d month=%d", ErrInvalidCalendarParameters, year, month)
	}

	ym := YearMonth{Year: year, Month: time.Month(month)}
	first := time.Date(year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -mondayOffset(first))
	end := last.AddDate(0, 0, 6-mondayOffset(last))

	var weeks [][7]time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 7) {
		var week [7]time.Time
		for i := range week {
			week[i] = day.AddDate(0, 0, i)
		}
		weeks = append(weeks, week)
	}

	return Grid{
		YearMonth: ym,
		MonthName: monthNames[month-1],
		Weeks:     weeks,
		First:     first,
		Last:      last,
		Prev:      ym.Prev(),
		Next:      ym.Next(),
	}, nil
}

func (g Grid) Contains(day time.Time) bool {
	return day.Year() == g.Year && day.Month() == g.Month
}

func (g Grid) Title() string {
	return fmt.Sprintf("%s %d", g.MonthName, g.Year)
}

// mondayOffset is the number of days since the most recent Monday.
func mondayOffset(day time.Time) int {
	return (int(day.Weekday()) + 6) % 7
}
