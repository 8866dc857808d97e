package attendance

import (
	"context"
	"time"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	FindByEmployeesAndRange(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) ([]Attendance, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByEmployeesAndRange loads the rows whose attendance_date falls in
// [start, end], both ends inclusive.
func (r *repository) FindByEmployeesAndRange(
	ctx context.Context,
	companyID string,
	employeeIDs []string,
	start, end time.Time,
) ([]Attendance, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}

	var rows []Attendance
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id IN ?", employeeIDs).
		Where("attendance_date BETWEEN ? AND ?", start.Format(time.DateOnly), end.Format(time.DateOnly)).
		Order("employee_id ASC, attendance_date ASC").
		Find(&rows).Error
	return rows, err
}
