package attendance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusHalfDay = "half_day"
)

type Attendance struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID       `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID     uuid.UUID       `gorm:"column:employee_id;type:uuid;not null;index:idx_attendance_employee_date"`
	AttendanceDate time.Time       `gorm:"column:attendance_date;type:date;not null;index:idx_attendance_employee_date"`
	ClockIn        *time.Time      `gorm:"column:clock_in;type:timestamptz"`
	ClockOut       *time.Time      `gorm:"column:clock_out;type:timestamptz"`
	Status         string          `gorm:"column:status;type:varchar(20);not null;default:present"`
	HoursWorked    decimal.Decimal `gorm:"column:hours_worked;type:numeric(5,2);not null;default:0"`
	Notes          *string         `gorm:"column:notes;type:text"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}
