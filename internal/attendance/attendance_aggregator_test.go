package attendance_test

import (
	"testing"
	"time"

	"go-payroll/internal/attendance"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func row(date, status string, hours int64) attendance.Attendance {
	return attendance.Attendance{AttendanceDate: day(date), Status: status, HoursWorked: decimal.NewFromInt(hours)}
}

func TestWorkingDays(t *testing.T) {
	assert.Equal(t, 20, attendance.WorkingDays(day("2026-02-01"), day("2026-02-28")))
	assert.Equal(t, 5, attendance.WorkingDays(day("2026-02-02"), day("2026-02-06")))
	assert.Equal(t, 0, attendance.WorkingDays(day("2026-02-07"), day("2026-02-08")))
	assert.Equal(t, 1, attendance.WorkingDays(day("2026-02-02"), day("2026-02-02")))
	assert.Equal(t, 0, attendance.WorkingDays(day("2026-02-06"), day("2026-02-02")))
}

func TestAggregate(t *testing.T) {
	start, end := day("2026-02-02"), day("2026-02-06")

	t.Run("no records", func(t *testing.T) {
		s := attendance.Aggregate(nil, start, end)

		assert.Equal(t, 0, s.TotalDays)
		assert.Equal(t, 0, s.PresentDays)
		assert.True(t, s.TotalHours.IsZero())
		assert.True(t, s.OvertimeHours.IsZero())
		assert.True(t, s.AttendanceRate.IsZero())
		assert.Equal(t, "40", s.ExpectedHours.String())
	})

	t.Run("mixed statuses", func(t *testing.T) {
		rows := []attendance.Attendance{
			row("2026-02-02", attendance.StatusPresent, 8),
			row("2026-02-03", attendance.StatusPresent, 8),
			row("2026-02-04", attendance.StatusPresent, 10),
			row("2026-02-05", attendance.StatusAbsent, 0),
			row("2026-02-06", attendance.StatusLate, 7),
		}

		s := attendance.Aggregate(rows, start, end)

		assert.Equal(t, 5, s.TotalDays)
		assert.Equal(t, 3, s.PresentDays)
		assert.Equal(t, 1, s.AbsentDays)
		assert.Equal(t, 1, s.LateDays)
		assert.Equal(t, 0, s.HalfDays)
		assert.Equal(t, "33", s.TotalHours.String())
		assert.True(t, s.OvertimeHours.IsZero())
		assert.Equal(t, "60", s.AttendanceRate.String())
	})

	t.Run("hours fallback to present days", func(t *testing.T) {
		rows := []attendance.Attendance{
			row("2026-02-02", attendance.StatusPresent, 0),
			row("2026-02-03", attendance.StatusPresent, 0),
			row("2026-02-04", attendance.StatusHalfDay, 0),
		}

		s := attendance.Aggregate(rows, start, end)

		assert.Equal(t, "16", s.TotalHours.String())
		assert.Equal(t, 1, s.HalfDays)
		assert.Equal(t, "66.67", s.AttendanceRate.StringFixed(2))
	})

	t.Run("overtime above expected hours", func(t *testing.T) {
		rows := []attendance.Attendance{
			row("2026-02-02", attendance.StatusPresent, 10),
			row("2026-02-03", attendance.StatusPresent, 10),
		}

		s := attendance.Aggregate(rows, day("2026-02-02"), day("2026-02-03"))

		assert.Equal(t, "16", s.ExpectedHours.String())
		assert.Equal(t, "4", s.OvertimeHours.String())
		assert.Equal(t, "100", s.AttendanceRate.String())
	})

	t.Run("rate keeps full precision", func(t *testing.T) {
		rows := []attendance.Attendance{
			row("2026-02-02", attendance.StatusPresent, 8),
			row("2026-02-03", attendance.StatusPresent, 8),
			row("2026-02-04", attendance.StatusAbsent, 0),
		}

		s := attendance.Aggregate(rows, start, end)

		assert.True(t, s.AttendanceRate.GreaterThan(decimal.RequireFromString("66.6666")))
		assert.True(t, s.AttendanceRate.LessThan(decimal.RequireFromString("66.6667")))
		assert.Equal(t, "66.67", s.Rounded().AttendanceRate.String())
	})

	t.Run("rows outside the window are ignored", func(t *testing.T) {
		rows := []attendance.Attendance{
			row("2026-01-30", attendance.StatusPresent, 8),
			row("2026-02-02", attendance.StatusPresent, 8),
			row("2026-02-09", attendance.StatusPresent, 8),
		}

		s := attendance.Aggregate(rows, start, end)

		assert.Equal(t, 1, s.TotalDays)
		assert.Equal(t, "8", s.TotalHours.String())
	})
}
