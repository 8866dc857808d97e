package attendance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	// SummarizePeriod returns one Summary per requested employee ID.
	// Employees without rows get a zero Summary.
	SummarizePeriod(ctx context.Context, companyID string, employeeIDs []string, start, end time.Time) (map[string]Summary, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository) Service {
	return &service{repo: repo, logger: zap.L().Named("attendance.service")}
}

func (s *service) SummarizePeriod(
	ctx context.Context,
	companyID string,
	employeeIDs []string,
	start, end time.Time,
) (map[string]Summary, error) {
	rows, err := s.repo.FindByEmployeesAndRange(ctx, companyID, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	byEmployee := make(map[string][]Attendance, len(employeeIDs))
	for _, row := range rows {
		id := row.EmployeeID.String()
		byEmployee[id] = append(byEmployee[id], row)
	}

	out := make(map[string]Summary, len(employeeIDs))
	for _, id := range employeeIDs {
		out[id] = Aggregate(byEmployee[id], start, end)
	}

	s.logger.Debug("attendance summarized",
		zap.String("company_id", companyID),
		zap.Int("employees", len(employeeIDs)),
		zap.Int("rows", len(rows)),
	)

	return out, nil
}
