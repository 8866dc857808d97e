package attendance

import (
	"time"

	"go-payroll/internal/shared/money"

	"github.com/shopspring/decimal"
)

// StandardWorkHours is the length of one working day.
const StandardWorkHours = 8

// Summary is the attendance of one employee over one pay period.
type Summary struct {
	TotalDays      int             `json:"total_days"`
	PresentDays    int             `json:"present_days"`
	AbsentDays     int             `json:"absent_days"`
	LateDays       int             `json:"late_days"`
	HalfDays       int             `json:"half_days"`
	TotalHours     decimal.Decimal `json:"total_hours"`
	ExpectedHours  decimal.Decimal `json:"expected_hours"`
	OvertimeHours  decimal.Decimal `json:"overtime_hours"`
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

// Rounded returns s with AttendanceRate rounded to 2 dp for display.
func (s Summary) Rounded() Summary {
	s.AttendanceRate = money.Round(s.AttendanceRate)
	return s
}

// Aggregate reduces the rows of one employee to a Summary. Rows outside
// [start, end] are ignored. With no rows every counter is zero, except
// ExpectedHours, which only depends on the range.
func Aggregate(rows []Attendance, start, end time.Time) Summary {
	s := Summary{
		TotalHours:     decimal.Zero,
		ExpectedHours:  decimal.NewFromInt(int64(WorkingDays(start, end) * StandardWorkHours)),
		OvertimeHours:  decimal.Zero,
		AttendanceRate: decimal.Zero,
	}

	first, last := dateOnly(start), dateOnly(end)
	recorded := decimal.Zero
	for _, row := range rows {
		d := dateOnly(row.AttendanceDate)
		if d.Before(first) || d.After(last) {
			continue
		}

		s.TotalDays++
		switch row.Status {
		case StatusPresent:
			s.PresentDays++
		case StatusAbsent:
			s.AbsentDays++
		case StatusLate:
			s.LateDays++
		case StatusHalfDay:
			s.HalfDays++
		}
		recorded = recorded.Add(row.HoursWorked)
	}

	if recorded.IsPositive() {
		s.TotalHours = recorded
	} else {
		s.TotalHours = decimal.NewFromInt(int64(s.PresentDays * StandardWorkHours))
	}

	s.OvertimeHours = money.NonNegative(s.TotalHours.Sub(s.ExpectedHours))

	// Kept unrounded: the salary proration divides it by 100.
	if s.TotalDays > 0 {
		s.AttendanceRate = decimal.NewFromInt(int64(s.PresentDays)).
			Mul(money.Hundred).
			Div(decimal.NewFromInt(int64(s.TotalDays)))
	}

	return s
}

// WorkingDays counts Monday to Friday in [start, end], both inclusive.
// Holidays are not considered.
func WorkingDays(start, end time.Time) int {
	first, last := dateOnly(start), dateOnly(end)
	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days++
		}
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
