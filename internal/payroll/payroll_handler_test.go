package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-payroll/internal/payroll"
	payrollerrors "go-payroll/internal/payroll/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  *apiMeta        `json:"meta"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	require.NoError(t, err)
	return env
}

// fakePayrollService embeds the interface so each test only stubs what it
// calls.
type fakePayrollService struct {
	payroll.Service

	createPeriodFn    func(ctx context.Context, companyID, actorID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error)
	listPeriodsFn     func(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.PeriodResponse, int64, error)
	generateFn        func(ctx context.Context, companyID, actorID, periodID string, req payroll.GeneratePayslipsRequest) (payroll.GenerateResult, error)
	approveFn         func(ctx context.Context, companyID, actorID, periodID string) (payroll.PeriodResponse, error)
	processPaymentsFn func(ctx context.Context, companyID, periodID string) (payroll.PaymentResult, error)
	getPayslipFn      func(ctx context.Context, companyID, id string) (payroll.PayslipResponse, error)
	exportReportFn    func(ctx context.Context, companyID, periodID string) ([]byte, error)
}

func (f *fakePayrollService) CreatePeriod(ctx context.Context, companyID, actorID string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	return f.createPeriodFn(ctx, companyID, actorID, req)
}

func (f *fakePayrollService) ListPeriods(ctx context.Context, companyID string, filter payroll.PeriodFilter) ([]payroll.PeriodResponse, int64, error) {
	return f.listPeriodsFn(ctx, companyID, filter)
}

func (f *fakePayrollService) GeneratePayslips(ctx context.Context, companyID, actorID, periodID string, req payroll.GeneratePayslipsRequest) (payroll.GenerateResult, error) {
	return f.generateFn(ctx, companyID, actorID, periodID, req)
}

func (f *fakePayrollService) ApprovePeriod(ctx context.Context, companyID, actorID, periodID string) (payroll.PeriodResponse, error) {
	return f.approveFn(ctx, companyID, actorID, periodID)
}

func (f *fakePayrollService) ProcessPayments(ctx context.Context, companyID, periodID string) (payroll.PaymentResult, error) {
	return f.processPaymentsFn(ctx, companyID, periodID)
}

func (f *fakePayrollService) GetPayslip(ctx context.Context, companyID, id string) (payroll.PayslipResponse, error) {
	return f.getPayslipFn(ctx, companyID, id)
}

func (f *fakePayrollService) ExportReport(ctx context.Context, companyID, periodID string) ([]byte, error) {
	return f.exportReportFn(ctx, companyID, periodID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == "" {
		c.Request = httptest.NewRequest(method, target, nil)
		return c, w
	}
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestPayrollHandler_CreatePeriod(t *testing.T) {
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	svc := &fakePayrollService{
		createPeriodFn: func(ctx context.Context, cid, aid string, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
			assert.Equal(t, companyID, cid)
			assert.Equal(t, actorID, aid)
			assert.Equal(t, payroll.PeriodTypeMonthly, req.Type)
			return payroll.PeriodResponse{ID: uuid.New().String(), Status: payroll.StatusDraft}, nil
		},
	}

	h := payroll.NewHandler(svc)
	body := `{"name":"January 2024","start_date":"2024-01-01","end_date":"2024-01-31","pay_date":"2024-02-01","type":"monthly"}`
	c, w := newTestContext(http.MethodPost, "/payroll-periods", body)
	c.Set("company_id", companyID)
	c.Set("employee_id", actorID)

	h.CreatePeriod(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.True(t, env.Ok)
}

func TestPayrollHandler_CreatePeriod_InvalidType(t *testing.T) {
	h := payroll.NewHandler(&fakePayrollService{})
	body := `{"name":"Q1","start_date":"2024-01-01","end_date":"2024-03-31","pay_date":"2024-04-01","type":"quarterly"}`
	c, w := newTestContext(http.MethodPost, "/payroll-periods", body)
	c.Set("company_id", uuid.New().String())

	h.CreatePeriod(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)
}

func TestPayrollHandler_ListPeriods_Paginates(t *testing.T) {
	page := []payroll.PeriodResponse{{ID: uuid.New().String()}, {ID: uuid.New().String()}}
	svc := &fakePayrollService{
		listPeriodsFn: func(ctx context.Context, cid string, filter payroll.PeriodFilter) ([]payroll.PeriodResponse, int64, error) {
			assert.Equal(t, payroll.StatusApproved, filter.Status)
			assert.Equal(t, 2024, filter.Year)
			assert.Equal(t, 2, filter.Page)
			assert.Equal(t, 2, filter.PageSize)
			return page, 5, nil
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/payroll-periods?status=approved&year=2024&page=2&page_size=2", "")
	c.Set("company_id", uuid.New().String())

	h.ListPeriods(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	var data []payroll.PeriodResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, page[0].ID, data[0].ID)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(5), env.Meta.Total)
	assert.Equal(t, 3, env.Meta.TotalPages)
	assert.Equal(t, 2, env.Meta.Page)
}

func TestPayrollHandler_GeneratePayslips_EmptyBody(t *testing.T) {
	periodID := uuid.New().String()
	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, cid, aid, pid string, req payroll.GeneratePayslipsRequest) (payroll.GenerateResult, error) {
			assert.Equal(t, periodID, pid)
			assert.Empty(t, req.EmployeeIDs)
			return payroll.GenerateResult{Generated: 3, Warnings: []payroll.Warning{}}, nil
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodPost, "/payroll-periods/"+periodID+"/generate", "")
	c.Params = []gin.Param{{Key: "id", Value: periodID}}
	c.Set("company_id", uuid.New().String())
	c.Set("employee_id", uuid.New().String())

	h.GeneratePayslips(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPayrollHandler_GeneratePayslips_InvalidEmployeeID(t *testing.T) {
	h := payroll.NewHandler(&fakePayrollService{})
	c, w := newTestContext(http.MethodPost, "/payroll-periods/x/generate", `{"employee_ids":["not-a-uuid"]}`)
	c.Params = []gin.Param{{Key: "id", Value: uuid.New().String()}}

	h.GeneratePayslips(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayrollHandler_ApprovePeriod_InvalidState(t *testing.T) {
	svc := &fakePayrollService{
		approveFn: func(ctx context.Context, cid, aid, pid string) (payroll.PeriodResponse, error) {
			return payroll.PeriodResponse{}, payrollerrors.ErrInvalidStatusTransition
		},
	}

	h := payroll.NewHandler(svc)
	id := uuid.New().String()
	c, w := newTestContext(http.MethodPost, "/payroll-periods/"+id+"/approve", "")
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())
	c.Set("employee_id", uuid.New().String())

	h.ApprovePeriod(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	assert.False(t, env.Ok)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestPayrollHandler_ProcessPayments(t *testing.T) {
	svc := &fakePayrollService{
		processPaymentsFn: func(ctx context.Context, cid, pid string) (payroll.PaymentResult, error) {
			return payroll.PaymentResult{
				Attempted:  3,
				Successful: 2,
				Failed:     1,
				Errors: []payroll.PaymentFailure{{
					PayslipID: uuid.New().String(),
					Error:     "Bank account information missing",
					Kind:      string(payroll.PaymentErrorMissingData),
				}},
				PeriodStatus: payroll.StatusApproved,
			}, nil
		},
	}

	h := payroll.NewHandler(svc)
	id := uuid.New().String()
	c, w := newTestContext(http.MethodPost, "/payroll-periods/"+id+"/pay", "")
	c.Params = []gin.Param{{Key: "id", Value: id}}
	c.Set("company_id", uuid.New().String())

	h.ProcessPayments(c)

	assert.Equal(t, http.StatusOK, w.Code)
	env := mustDecodeEnvelope(t, w.Body.Bytes())
	var res payroll.PaymentResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Successful)
	assert.Equal(t, "Bank account information missing", res.Errors[0].Error)
}

func TestPayrollHandler_ExportReport(t *testing.T) {
	periodID := uuid.New().String()
	svc := &fakePayrollService{
		exportReportFn: func(ctx context.Context, cid, pid string) ([]byte, error) {
			return []byte("PK"), nil
		},
	}

	h := payroll.NewHandler(svc)
	c, w := newTestContext(http.MethodGet, "/payroll-periods/"+periodID+"/report/export", "")
	c.Params = []gin.Param{{Key: "id", Value: periodID}}

	h.ExportReport(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "payroll_report_"+periodID+".xlsx")
	assert.Equal(t, "PK", w.Body.String())
}

func TestPayrollHandler_DownloadPayslip(t *testing.T) {
	url := "https://files.example.com/payslip.pdf"
	generatedAt := time.Now().Format(time.RFC3339)

	t.Run("redirects to stored document", func(t *testing.T) {
		svc := &fakePayrollService{
			getPayslipFn: func(ctx context.Context, cid, id string) (payroll.PayslipResponse, error) {
				return payroll.PayslipResponse{ID: id, PayslipURL: &url, GeneratedAt: generatedAt}, nil
			},
		}
		h := payroll.NewHandler(svc)
		id := uuid.New().String()
		c, w := newTestContext(http.MethodGet, "/payslips/"+id+"/download", "")
		c.Params = []gin.Param{{Key: "id", Value: id}}

		h.DownloadPayslip(c)

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, url, w.Header().Get("Location"))
	})

	t.Run("not rendered yet", func(t *testing.T) {
		svc := &fakePayrollService{
			getPayslipFn: func(ctx context.Context, cid, id string) (payroll.PayslipResponse, error) {
				return payroll.PayslipResponse{ID: id}, nil
			},
		}
		h := payroll.NewHandler(svc)
		id := uuid.New().String()
		c, w := newTestContext(http.MethodGet, "/payslips/"+id+"/download", "")
		c.Params = []gin.Param{{Key: "id", Value: id}}

		h.DownloadPayslip(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
