package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/money"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const unassignedDepartment = "Unassigned"

func reportCacheKey(companyID, periodID string) string {
	return "payroll:report:" + companyID + ":" + periodID
}

// GenerateReport is read-through cached in Redis when configured.
// Concurrent misses for the same period share one computation.
func (s *service) GenerateReport(ctx context.Context, companyID, periodID string) (PeriodReport, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return PeriodReport{}, payrollerrors.ErrInvalidPeriodID
	}

	key := reportCacheKey(companyID, periodID)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var report PeriodReport
			if jsonErr := json.Unmarshal(cached, &report); jsonErr == nil {
				return report, nil
			}
		case !errors.Is(err, redis.Nil):
			s.log(ctx).Warn("read report cache failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := s.reports.Do(key, func() (any, error) {
		period, err := s.repo.FindPeriod(ctx, companyID, periodID)
		if err != nil {
			return PeriodReport{}, err
		}
		payslips, err := s.repo.ListPayslips(ctx, companyID, periodID, nil)
		if err != nil {
			return PeriodReport{}, err
		}

		report := BuildReport(*period, payslips)
		s.cacheReport(ctx, key, report)
		return report, nil
	})
	if err != nil {
		return PeriodReport{}, err
	}
	return v.(PeriodReport), nil
}

func (s *service) cacheReport(ctx context.Context, key string, report PeriodReport) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, string(payload), s.cacheTTL).Err(); err != nil {
		s.log(ctx).Warn("write report cache failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) invalidateReport(ctx context.Context, companyID, periodID string) {
	if s.rdb == nil {
		return
	}
	key := reportCacheKey(companyID, periodID)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log(ctx).Warn("invalidate report cache failed", zap.String("key", key), zap.Error(err))
	}
}

// BuildReport aggregates payslips into the period report. Groups are sorted
// by name so equal input always yields an equal report.
func BuildReport(period PayrollPeriod, payslips []Payslip) PeriodReport {
	report := PeriodReport{
		PeriodInfo: PeriodInfo{
			ID:        period.ID.String(),
			Name:      period.Name,
			StartDate: period.StartDate.Format(dateLayout),
			EndDate:   period.EndDate.Format(dateLayout),
			PayDate:   period.PayDate.Format(dateLayout),
			Type:      period.Type,
			Status:    period.Status,
		},
		ByDepartment:    []GroupTotals{},
		ByPaymentMethod: []GroupTotals{},
	}

	summary := ReportSummary{
		TotalEmployees:  len(payslips),
		TotalGrossPay:   decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNetPay:     decimal.Zero,
		AverageGrossPay: decimal.Zero,
		AverageNetPay:   decimal.Zero,
	}
	deductions := DeductionBreakdown{
		Tax:           decimal.Zero,
		Insurance:     decimal.Zero,
		Retirement:    decimal.Zero,
		LoanRepayment: decimal.Zero,
		AdvanceSalary: decimal.Zero,
		Uniform:       decimal.Zero,
		Parking:       decimal.Zero,
		Other:         decimal.Zero,
		Total:         decimal.Zero,
	}
	byDepartment := map[string]*GroupTotals{}
	byMethod := map[string]*GroupTotals{}

	for _, p := range payslips {
		summary.TotalGrossPay = summary.TotalGrossPay.Add(p.GrossPay)
		summary.TotalDeductions = summary.TotalDeductions.Add(p.TotalDeductions)
		summary.TotalNetPay = summary.TotalNetPay.Add(p.NetPay)

		dept := p.Department
		if dept == "" {
			dept = unassignedDepartment
		}
		addToGroup(byDepartment, dept, p)
		addToGroup(byMethod, p.PaymentMethod, p)

		deductions.Tax = deductions.Tax.Add(p.TaxDeductions)
		deductions.Insurance = deductions.Insurance.Add(p.InsuranceDeductions)
		deductions.Retirement = deductions.Retirement.Add(p.RetirementDeductions)
		deductions.LoanRepayment = deductions.LoanRepayment.Add(p.OtherDeductions.LoanRepayment)
		deductions.AdvanceSalary = deductions.AdvanceSalary.Add(p.OtherDeductions.AdvanceSalary)
		deductions.Uniform = deductions.Uniform.Add(p.OtherDeductions.Uniform)
		deductions.Parking = deductions.Parking.Add(p.OtherDeductions.Parking)
		deductions.Other = deductions.Other.Add(p.OtherDeductions.Other)
		deductions.Total = deductions.Total.Add(p.TotalDeductions)
	}

	if n := len(payslips); n > 0 {
		count := decimal.NewFromInt(int64(n))
		summary.AverageGrossPay = money.Round(summary.TotalGrossPay.Div(count))
		summary.AverageNetPay = money.Round(summary.TotalNetPay.Div(count))
	}

	report.Summary = summary
	report.DeductionBreakdown = deductions
	report.ByDepartment = sortedGroups(byDepartment)
	report.ByPaymentMethod = sortedGroups(byMethod)
	return report
}

func addToGroup(groups map[string]*GroupTotals, name string, p Payslip) {
	g, ok := groups[name]
	if !ok {
		g = &GroupTotals{Name: name, TotalGrossPay: decimal.Zero, TotalNetPay: decimal.Zero}
		groups[name] = g
	}
	g.EmployeeCount++
	g.TotalGrossPay = g.TotalGrossPay.Add(p.GrossPay)
	g.TotalNetPay = g.TotalNetPay.Add(p.NetPay)
}

func sortedGroups(groups map[string]*GroupTotals) []GroupTotals {
	out := make([]GroupTotals, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
