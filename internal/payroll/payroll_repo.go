package payroll

import (
	"context"
	"database/sql"
	"errors"
	"time"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/tenant"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePeriod(ctx context.Context, period *PayrollPeriod) error
	FindPeriod(ctx context.Context, companyID, id string) (*PayrollPeriod, error)
	// FindPeriodForUpdate locks the period row until the surrounding
	// transaction ends.
	FindPeriodForUpdate(ctx context.Context, companyID, id string) (*PayrollPeriod, error)
	// ListPeriods returns one page of periods and the total matching count.
	ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PayrollPeriod, int64, error)
	// FindDuePeriods spans every company.
	FindDuePeriods(ctx context.Context, status string, payDate time.Time) ([]PayrollPeriod, error)
	// UpdatePeriod writes period only while its stored status still equals
	// expectedStatus.
	UpdatePeriod(ctx context.Context, period *PayrollPeriod, expectedStatus string) error
	DeletePeriod(ctx context.Context, companyID, id string) error

	PayslipExists(ctx context.Context, periodID, employeeID string) (bool, error)
	CreatePayslip(ctx context.Context, payslip *Payslip) error
	ListPayslips(ctx context.Context, companyID, periodID string, status *string) ([]Payslip, error)
	FindPayslip(ctx context.Context, companyID, id string) (*Payslip, error)
	ApprovePayslips(ctx context.Context, periodID string) (int64, error)
	// ReservePaymentReference stores payslip.PaymentReference on an
	// approved payslip that has none yet.
	ReservePaymentReference(ctx context.Context, payslip *Payslip) error
	MarkPayslipPaid(ctx context.Context, payslip *Payslip) error
	UpdatePayslipDocument(ctx context.Context, payslip *Payslip) error
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

func (r *repository) CreatePeriod(ctx context.Context, period *PayrollPeriod) error {
	return r.conn(ctx).Omit(clause.Associations).Create(period).Error
}

func (r *repository) FindPeriod(ctx context.Context, companyID, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payrollerrors.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) FindPeriodForUpdate(ctx context.Context, companyID, id string) (*PayrollPeriod, error) {
	var period PayrollPeriod
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(companyID)).
		First(&period, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payrollerrors.ErrPeriodNotFound
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *repository) ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PayrollPeriod, int64, error) {
	q := r.conn(ctx).Model(&PayrollPeriod{}).Scopes(tenant.Scope(companyID))
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Year > 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Month > 0 {
		q = q.Where("month = ?", filter.Month)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Pagination()
	var periods []PayrollPeriod
	err := q.Order("start_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&periods).Error
	return periods, total, err
}

func (r *repository) FindDuePeriods(ctx context.Context, status string, payDate time.Time) ([]PayrollPeriod, error) {
	var periods []PayrollPeriod
	err := r.conn(ctx).
		Where("status = ?", status).
		Where("pay_date <= ?", payDate).
		Order("pay_date ASC").
		Find(&periods).Error
	return periods, err
}

func (r *repository) UpdatePeriod(ctx context.Context, period *PayrollPeriod, expectedStatus string) error {
	res := r.conn(ctx).
		Model(period).
		Where("status = ?", expectedStatus).
		Select("*").
		Omit("id", "company_id", "created_at", clause.Associations).
		Updates(period)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrPeriodModified
	}
	return nil
}

func (r *repository) DeletePeriod(ctx context.Context, companyID, id string) error {
	res := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusDraft).
		Delete(&PayrollPeriod{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrPeriodModified
	}
	return nil
}

func (r *repository) PayslipExists(ctx context.Context, periodID, employeeID string) (bool, error) {
	var count int64
	err := r.conn(ctx).
		Model(&Payslip{}).
		Where("payroll_period_id = ? AND employee_id = ?", periodID, employeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreatePayslip(ctx context.Context, payslip *Payslip) error {
	err := r.conn(ctx).Create(payslip).Error
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return payrollerrors.ErrPayslipAlreadyGenerated
	}
	return err
}

func (r *repository) ListPayslips(ctx context.Context, companyID, periodID string, status *string) ([]Payslip, error) {
	q := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("payroll_period_id = ?", periodID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var payslips []Payslip
	err := q.Order("employee_number ASC").Find(&payslips).Error
	return payslips, err
}

func (r *repository) FindPayslip(ctx context.Context, companyID, id string) (*Payslip, error) {
	var payslip Payslip
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&payslip, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payrollerrors.ErrPayslipNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payslip, nil
}

func (r *repository) ApprovePayslips(ctx context.Context, periodID string) (int64, error) {
	res := r.conn(ctx).
		Model(&Payslip{}).
		Where("payroll_period_id = ? AND status = ?", periodID, PayslipStatusGenerated).
		Updates(map[string]any{
			"status":     PayslipStatusApproved,
			"updated_at": gorm.Expr("NOW()"),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) ReservePaymentReference(ctx context.Context, payslip *Payslip) error {
	res := r.conn(ctx).
		Model(&Payslip{}).
		Where("id = ? AND status = ? AND payment_reference IS NULL", payslip.ID, PayslipStatusApproved).
		Updates(map[string]any{
			"payment_reference": payslip.PaymentReference,
			"updated_at":        gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrPayslipPaymentStateChanged
	}
	return nil
}

func (r *repository) MarkPayslipPaid(ctx context.Context, payslip *Payslip) error {
	res := r.conn(ctx).
		Model(&Payslip{}).
		Where("id = ? AND status = ?", payslip.ID, PayslipStatusApproved).
		Updates(map[string]any{
			"status":            PayslipStatusPaid,
			"paid_at":           payslip.PaidAt,
			"payment_reference": payslip.PaymentReference,
			"updated_at":        gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payrollerrors.ErrPayslipPaymentStateChanged
	}
	return nil
}

func (r *repository) UpdatePayslipDocument(ctx context.Context, payslip *Payslip) error {
	return r.conn(ctx).
		Model(&Payslip{}).
		Where("id = ?", payslip.ID).
		Updates(map[string]any{
			"payslip_url":          payslip.PayslipURL,
			"payslip_generated_at": payslip.PayslipGeneratedAt,
			"updated_at":           gorm.Expr("NOW()"),
		}).Error
}
