package payroll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/clock"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/lock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	aggregatePayrollPeriod = "payroll_period"
	paymentLockTTL         = 15 * time.Minute
	defaultReportCacheTTL  = 10 * time.Minute
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error)
	ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PeriodResponse, int64, error)
	DeletePeriod(ctx context.Context, companyID, id string) error

	GeneratePayslips(ctx context.Context, companyID, actorID, periodID string, req GeneratePayslipsRequest) (GenerateResult, error)
	ApprovePeriod(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error)
	ProcessPayments(ctx context.Context, companyID, periodID string) (PaymentResult, error)
	DispatchDuePayments(ctx context.Context, asOf time.Time) (int, error)

	ListPayslips(ctx context.Context, companyID, periodID string) ([]PayslipResponse, error)
	GetPayslip(ctx context.Context, companyID, id string) (PayslipResponse, error)
	RenderPayslip(ctx context.Context, companyID, payslipID string) (PayslipResponse, error)
	RenderPeriodPayslips(ctx context.Context, companyID, periodID string) (int, error)

	GenerateReport(ctx context.Context, companyID, periodID string) (PeriodReport, error)
	ExportReport(ctx context.Context, companyID, periodID string) ([]byte, error)
}

type StorageConfig struct {
	Dir           string
	PublicBaseURL string
}

// Dependencies wires the service. Outbox and Redis are optional; a nil
// Locker falls back to an in-process lock.
type Dependencies struct {
	DB             *sql.DB
	Repo           Repository
	Employees      employee.Repository
	Attendance     attendance.Service
	Outbox         kafka.OutboxRepository
	Redis          *redis.Client
	Locker         lock.Locker
	Dispatcher     *PaymentDispatcher
	Clock          clock.Clock
	Storage        StorageConfig
	ReportCacheTTL time.Duration
	Logger         *zap.Logger
}

type service struct {
	db         *sql.DB
	repo       Repository
	employees  employee.Repository
	attendance attendance.Service
	outbox     kafka.OutboxRepository
	rdb        *redis.Client
	locker     lock.Locker
	dispatcher *PaymentDispatcher
	clock      clock.Clock
	generator  payslipGenerator
	storage    StorageConfig
	cacheTTL   time.Duration
	reports    singleflight.Group
	logger     *zap.Logger
}

func NewService(deps Dependencies) Service {
	c := deps.Clock
	if c == nil {
		c = clock.System()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.L()
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = NewPaymentDispatcher(NewLoggingGateway(logger), DefaultPaymentConfig(), c, logger)
	}
	ttl := deps.ReportCacheTTL
	if ttl <= 0 {
		ttl = defaultReportCacheTTL
	}

	return &service{
		db:         deps.DB,
		repo:       deps.Repo,
		employees:  deps.Employees,
		attendance: deps.Attendance,
		outbox:     deps.Outbox,
		rdb:        deps.Redis,
		locker:     locker,
		dispatcher: dispatcher,
		clock:      c,
		generator:  payslipGenerator{clock: c},
		storage:    deps.Storage,
		cacheTTL:   ttl,
		logger:     logger.Named("payroll.service"),
	}
}

func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidActorID
	}

	start, end, payDate, err := validatePeriodRequest(req)
	if err != nil {
		return PeriodResponse{}, err
	}

	_, week := start.ISOWeek()
	period := &PayrollPeriod{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		Name:       req.Name,
		StartDate:  start,
		EndDate:    end,
		PayDate:    payDate,
		Type:       req.Type,
		Year:       start.Year(),
		Month:      int(start.Month()),
		WeekNumber: week,
		Status:     StatusDraft,
		CreatedBy:  actorUUID,
	}
	period.ApplyTotals(nil)

	if err := s.repo.CreatePeriod(ctx, period); err != nil {
		return PeriodResponse{}, fmt.Errorf("create payroll period: %w", err)
	}

	s.log(ctx).Info("payroll period created",
		zap.String("period_id", period.ID.String()),
		zap.String("company_id", companyID),
		zap.String("type", period.Type),
	)

	return mapPeriodResponse(*period), nil
}

func (s *service) GetPeriod(ctx context.Context, companyID, id string) (PeriodResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidPeriodID
	}

	period, err := s.repo.FindPeriod(ctx, companyID, id)
	if err != nil {
		return PeriodResponse{}, err
	}
	return mapPeriodResponse(*period), nil
}

func (s *service) ListPeriods(ctx context.Context, companyID string, filter PeriodFilter) ([]PeriodResponse, int64, error) {
	switch filter.Status {
	case "", StatusDraft, StatusProcessed, StatusApproved, StatusPaid:
	default:
		return nil, 0, payrollerrors.ErrInvalidStatusFilter
	}
	if filter.Type != "" && !validPeriodType(filter.Type) {
		return nil, 0, payrollerrors.ErrInvalidPeriodType
	}
	filter.Page, filter.PageSize = filter.Pagination()

	periods, total, err := s.repo.ListPeriods(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	return mapPeriodListResponse(periods), total, nil
}

func (s *service) DeletePeriod(ctx context.Context, companyID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return payrollerrors.ErrInvalidPeriodID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindPeriodForUpdate(ctx, companyID, id)
	if err != nil {
		return err
	}
	if period.Status != StatusDraft {
		return payrollerrors.ErrDeleteOnlyDraft
	}

	if err := qtx.DeletePeriod(ctx, companyID, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateReport(ctx, companyID, id)
	return nil
}

// GeneratePayslips runs every targeted employee through the calculators and
// commits the payslips, period totals and status change together. Any
// failure rolls the whole run back.
func (s *service) GeneratePayslips(
	ctx context.Context,
	companyID, actorID, periodID string,
	req GeneratePayslipsRequest,
) (GenerateResult, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return GenerateResult{}, payrollerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(periodID); err != nil {
		return GenerateResult{}, payrollerrors.ErrInvalidPeriodID
	}
	requested, err := uniqueEmployeeIDs(req.EmployeeIDs)
	if err != nil {
		return GenerateResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return GenerateResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindPeriodForUpdate(ctx, companyID, periodID)
	if err != nil {
		return GenerateResult{}, err
	}
	if period.Status != StatusDraft {
		return GenerateResult{}, payrollerrors.ErrGenerateOnlyDraft
	}

	employees, err := s.employees.WithTx(tx).FindActiveForPayroll(ctx, companyID, requested)
	if err != nil {
		return GenerateResult{}, fmt.Errorf("load employees: %w", err)
	}
	if len(requested) > 0 && len(employees) != len(requested) {
		return GenerateResult{}, payrollerrors.ErrEmployeeNotFound
	}
	if len(employees) == 0 {
		return GenerateResult{}, payrollerrors.ErrNoEligibleEmployees
	}

	ids := make([]string, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID.String()
	}
	summaries, err := s.attendance.SummarizePeriod(ctx, companyID, ids, period.StartDate, period.EndDate)
	if err != nil {
		return GenerateResult{}, err
	}

	log := s.log(ctx).With(zap.String("period_id", periodID))

	payslips := make([]Payslip, 0, len(employees))
	warnings := []Warning{}
	for _, emp := range employees {
		slip, warns, err := s.generator.Generate(ctx, qtx, *period, emp, summaries[emp.ID.String()])
		if err != nil {
			return GenerateResult{}, fmt.Errorf("generate payslip for employee %s: %w", emp.ID, err)
		}
		for _, w := range warns {
			log.Warn("incomplete employee record",
				zap.String("employee_id", w.EmployeeID),
				zap.String("payslip_id", slip.ID.String()),
				zap.String("warning", w.Message),
			)
		}
		payslips = append(payslips, slip)
		warnings = append(warnings, warns...)
	}

	now := s.clock.Now()
	period.ApplyTotals(payslips)
	period.Status = StatusProcessed
	period.ProcessedBy = &actorUUID
	period.ProcessedAt = &now

	if err := qtx.UpdatePeriod(ctx, period, StatusDraft); err != nil {
		return GenerateResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return GenerateResult{}, err
	}

	s.invalidateReport(ctx, companyID, periodID)

	log.Info("payslips generated",
		zap.Int("generated", len(payslips)),
		zap.Int("warnings", len(warnings)),
		zap.String("total_net_pay", period.TotalNetPay.StringFixed(2)),
	)

	return GenerateResult{
		Period:    mapPeriodResponse(*period),
		Generated: len(payslips),
		Warnings:  warnings,
	}, nil
}

func (s *service) ApprovePeriod(ctx context.Context, companyID, actorID, periodID string) (PeriodResponse, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(periodID); err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidPeriodID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PeriodResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindPeriodForUpdate(ctx, companyID, periodID)
	if err != nil {
		return PeriodResponse{}, err
	}
	if !CanTransition(period.Status, StatusApproved) {
		return PeriodResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	period.Status = StatusApproved
	period.ApprovedBy = &actorUUID
	period.ApprovedAt = &now

	if err := qtx.UpdatePeriod(ctx, period, StatusProcessed); err != nil {
		return PeriodResponse{}, err
	}
	if _, err := qtx.ApprovePayslips(ctx, periodID); err != nil {
		return PeriodResponse{}, fmt.Errorf("approve payslips: %w", err)
	}

	if err := s.writeOutbox(ctx, tx, periodID, events.PayrollPeriodApprovedType, events.PayrollPeriodApprovedTopic, events.PayrollPeriodApprovedEvent{
		EventType:  events.PayrollPeriodApprovedType,
		PeriodID:   periodID,
		CompanyID:  companyID,
		ApprovedBy: actorID,
		OccurredAt: now,
	}); err != nil {
		return PeriodResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PeriodResponse{}, err
	}

	s.invalidateReport(ctx, companyID, periodID)

	s.log(ctx).Info("payroll period approved",
		zap.String("period_id", periodID),
		zap.String("approved_by", actorID),
	)

	return mapPeriodResponse(*period), nil
}

// ProcessPayments pays every approved payslip of an approved period. A
// failed payslip is reported and skipped; the period moves to paid only
// when nothing failed.
func (s *service) ProcessPayments(ctx context.Context, companyID, periodID string) (PaymentResult, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return PaymentResult{}, payrollerrors.ErrInvalidPeriodID
	}

	release, err := s.locker.Acquire(ctx, paymentLockKey(periodID), paymentLockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return PaymentResult{}, payrollerrors.ErrPaymentInProgress
	}
	if err != nil {
		return PaymentResult{}, fmt.Errorf("acquire payment lock: %w", err)
	}
	defer release()

	period, err := s.repo.FindPeriod(ctx, companyID, periodID)
	if err != nil {
		return PaymentResult{}, err
	}
	if period.Status != StatusApproved {
		return PaymentResult{}, payrollerrors.ErrPayOnlyApproved
	}

	status := PayslipStatusApproved
	payslips, err := s.repo.ListPayslips(ctx, companyID, periodID, &status)
	if err != nil {
		return PaymentResult{}, err
	}

	log := s.log(ctx).With(zap.String("period_id", periodID))

	result := PaymentResult{
		Attempted:    len(payslips),
		Errors:       []PaymentFailure{},
		PeriodStatus: period.Status,
	}
	fail := func(slip Payslip, kind PaymentErrorKind, err error) {
		failure := PaymentFailure{
			PayslipID:  slip.ID.String(),
			EmployeeID: slip.EmployeeID.String(),
			Employee:   slip.EmployeeName,
			Error:      err.Error(),
			Kind:       string(kind),
		}
		result.Errors = append(result.Errors, failure)
		result.Failed++

		fields := []zap.Field{
			zap.String("payslip_id", failure.PayslipID),
			zap.String("employee_id", failure.EmployeeID),
			zap.String("kind", failure.Kind),
			zap.Error(err),
		}
		if kind == PaymentErrorSettledUnrecorded {
			log.Error("payslip settled but not recorded as paid", append(fields, zap.String("reference", *slip.PaymentReference))...)
			return
		}
		log.Warn("payslip payment failed", fields...)
	}

	for i := range payslips {
		slip := payslips[i]

		// The reference is stored before funds move so a rerun sends the
		// same one.
		if slip.PaymentReference == nil || *slip.PaymentReference == "" {
			reference := Reference(slip, s.clock.Now())
			slip.PaymentReference = &reference
			if err := s.repo.ReservePaymentReference(ctx, &slip); err != nil {
				fail(slip, PaymentErrorPersistence, err)
				continue
			}
		}

		reference, err := s.dispatcher.Dispatch(ctx, slip)
		if err != nil {
			fail(slip, paymentErrorKind(err), err)
			continue
		}

		paidAt := s.clock.Now()
		slip.Status = PayslipStatusPaid
		slip.PaidAt = &paidAt
		slip.PaymentReference = &reference
		if err := s.repo.MarkPayslipPaid(ctx, &slip); err != nil {
			fail(slip, PaymentErrorSettledUnrecorded, err)
			continue
		}

		result.Successful++
	}

	if result.Failed == 0 {
		paid, err := s.markPeriodPaid(ctx, companyID, periodID)
		if err != nil {
			return result, err
		}
		result.PeriodStatus = paid.Status
	}

	s.invalidateReport(ctx, companyID, periodID)

	log.Info("payments processed",
		zap.Int("attempted", result.Attempted),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
		zap.String("period_status", result.PeriodStatus),
	)

	return result, nil
}

func (s *service) markPeriodPaid(ctx context.Context, companyID, periodID string) (*PayrollPeriod, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	period, err := qtx.FindPeriodForUpdate(ctx, companyID, periodID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(period.Status, StatusPaid) {
		return nil, payrollerrors.ErrInvalidStatusTransition
	}

	now := s.clock.Now()
	period.Status = StatusPaid
	period.PaidAt = &now

	if err := qtx.UpdatePeriod(ctx, period, StatusApproved); err != nil {
		return nil, err
	}

	if err := s.writeOutbox(ctx, tx, periodID, events.PayrollPeriodPaidType, events.PayrollPeriodPaidTopic, events.PayrollPeriodPaidEvent{
		EventType:   events.PayrollPeriodPaidType,
		PeriodID:    periodID,
		CompanyID:   companyID,
		TotalNetPay: period.TotalNetPay.StringFixed(2),
		OccurredAt:  now,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return period, nil
}

// DispatchDuePayments processes every approved period whose pay date is on
// or before asOf. It returns how many periods reached paid.
func (s *service) DispatchDuePayments(ctx context.Context, asOf time.Time) (int, error) {
	periods, err := s.repo.FindDuePeriods(ctx, StatusApproved, asOf)
	if err != nil {
		return 0, fmt.Errorf("find due periods: %w", err)
	}

	paid := 0
	var errs []error
	for _, p := range periods {
		result, err := s.ProcessPayments(ctx, p.CompanyID.String(), p.ID.String())
		if errors.Is(err, payrollerrors.ErrPaymentInProgress) {
			s.logger.Info("payments already running, skipping", zap.String("period_id", p.ID.String()))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("period %s: %w", p.ID, err))
			continue
		}
		if result.PeriodStatus == StatusPaid {
			paid++
		}
	}

	return paid, errors.Join(errs...)
}

func (s *service) ListPayslips(ctx context.Context, companyID, periodID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return nil, payrollerrors.ErrInvalidPeriodID
	}
	if _, err := s.repo.FindPeriod(ctx, companyID, periodID); err != nil {
		return nil, err
	}

	payslips, err := s.repo.ListPayslips(ctx, companyID, periodID, nil)
	if err != nil {
		return nil, err
	}
	return mapPayslipListResponse(payslips), nil
}

func (s *service) GetPayslip(ctx context.Context, companyID, id string) (PayslipResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PayslipResponse{}, payrollerrors.ErrPayslipNotFound
	}

	payslip, err := s.repo.FindPayslip(ctx, companyID, id)
	if err != nil {
		return PayslipResponse{}, err
	}
	return mapPayslipResponse(*payslip), nil
}

func (s *service) writeOutbox(ctx context.Context, tx *sql.Tx, periodID, eventType, topic string, payload any) error {
	if s.outbox == nil {
		return nil
	}

	meta := contextutil.ExtractMetadata(ctx)
	event, err := kafka.NewOutboxEvent(
		meta.RequestID,
		aggregatePayrollPeriod,
		periodID,
		eventType,
		topic,
		payload,
	)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return fmt.Errorf("write %s outbox event: %w", eventType, err)
	}

	s.log(ctx).Debug("outbox event queued",
		zap.String("event_type", eventType),
		zap.String("period_id", periodID),
		zap.String("request_id", meta.RequestID),
		zap.String("user_id", meta.UserID),
	)
	return nil
}

func paymentLockKey(periodID string) string {
	return "payroll:period:" + periodID + ":payments"
}

func paymentErrorKind(err error) PaymentErrorKind {
	var pe *PaymentError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return PaymentErrorPersistence
}

func validPeriodType(t string) bool {
	switch t {
	case PeriodTypeWeekly, PeriodTypeBiweekly, PeriodTypeMonthly:
		return true
	}
	return false
}

func validatePeriodRequest(req CreatePeriodRequest) (time.Time, time.Time, time.Time, error) {
	if !validPeriodType(req.Type) {
		return time.Time{}, time.Time{}, time.Time{}, payrollerrors.ErrInvalidPeriodType
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	payDate, err := parseDate(req.PayDate)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, time.Time{}, payrollerrors.ErrInvalidDateRange
	}
	if payDate.Before(start) {
		return time.Time{}, time.Time{}, time.Time{}, payrollerrors.ErrInvalidPayDate
	}

	return start, end, payDate, nil
}

func uniqueEmployeeIDs(ids []string) ([]string, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, payrollerrors.ErrInvalidEmployeeID
		}
		key := parsed.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	return t, nil
}
