package employee

import (
	"context"
	"database/sql"

	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// FindActiveForPayroll returns active employees with department and
	// position preloaded. An empty ids slice means every active employee.
	FindActiveForPayroll(ctx context.Context, companyID string, ids []string) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return tenant.Conn(r.db, r.tx).WithContext(ctx)
}

func (r *repository) FindActiveForPayroll(ctx context.Context, companyID string, ids []string) ([]Employee, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Department").
		Preload("Position").
		Where("status = ?", StatusActive)

	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}

	var employees []Employee
	err := q.Order("employee_number ASC").Find(&employees).Error
	return employees, err
}
