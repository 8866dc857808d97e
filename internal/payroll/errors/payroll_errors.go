package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll period id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrInvalidPayDate = apperror.New(
		apperror.CodeInvalidInput,
		"pay_date must not be before start_date",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodType = apperror.New(
		apperror.CodeInvalidInput,
		"period type must be one of weekly, biweekly, monthly",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll period status filter",
		http.StatusBadRequest,
	)
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll period not found",
		http.StatusNotFound,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"one or more employees were not found or are not active",
		http.StatusNotFound,
	)
	ErrNoEligibleEmployees = apperror.New(
		apperror.CodeInvalidInput,
		"no active employees to generate payslips for",
		http.StatusBadRequest,
	)
	ErrPayslipAlreadyGenerated = apperror.New(
		apperror.CodeConflict,
		"payslip already generated for this employee and period",
		http.StatusConflict,
	)
	ErrPaymentInProgress = apperror.New(
		apperror.CodeConflict,
		"payments for this period are already being processed",
		http.StatusConflict,
	)

	// State errors. Raised before anything is written.
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll period status transition",
		http.StatusConflict,
	)
	ErrGenerateOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payslips can only be generated while the period is draft",
		http.StatusConflict,
	)
	ErrPayOnlyApproved = apperror.New(
		apperror.CodeInvalidState,
		"payments can only be processed for an approved period",
		http.StatusConflict,
	)
	ErrDeleteOnlyDraft = apperror.New(
		apperror.CodeInvalidState,
		"payroll period can only be deleted while status is draft",
		http.StatusConflict,
	)
	ErrPayslipNotApproved = apperror.New(
		apperror.CodeInvalidState,
		"payslip document is only available once the payslip is approved",
		http.StatusConflict,
	)
	ErrPayslipPaymentStateChanged = apperror.New(
		apperror.CodeInvalidState,
		"payslip is no longer awaiting payment",
		http.StatusConflict,
	)
	ErrPeriodModified = apperror.New(
		apperror.CodeInvalidState,
		"payroll period was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrPayslipNotGenerated = apperror.New(
		apperror.CodeNotFound,
		"payslip document is not generated yet",
		http.StatusNotFound,
	)

	// Per-payslip payment failures.
	ErrUnknownPaymentMethod = apperror.New(
		apperror.CodeInvalidInput,
		"unsupported payment method",
		http.StatusUnprocessableEntity,
	)
	ErrBankAccountMissing = apperror.New(
		apperror.CodeInvalidInput,
		"Bank account information missing",
		http.StatusUnprocessableEntity,
	)
	ErrPaymentGatewayUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"payment gateway unavailable",
		http.StatusServiceUnavailable,
	)
)
