package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voicechallan/internal/dto"
	"voicechallan/internal/receipt"
	"voicechallan/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Stub service ──────────────────────────────────────────────────────────────

type stubService struct {
	createErr  error
	lastCreate *dto.CreateChallanRequest
	lastFilter *dto.ChallanFilter
	files      map[uuid.UUID]*dto.File
	deleted    map[uuid.UUID]bool
}

func newStubService() *stubService {
	return &stubService{files: map[uuid.UUID]*dto.File{}, deleted: map[uuid.UUID]bool{}}
}

func (s *stubService) Create(_ context.Context, req dto.CreateChallanRequest) (*dto.CreateChallanResponse, error) {
	s.lastCreate = &req
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &dto.CreateChallanResponse{
		Message:    "PDF generated successfully",
		ChallanID:  uuid.NewString(),
		ChallanNo:  req.ChallanNo,
		TotalItems: decimal.NewFromInt(15),
		TotalPrice: decimal.NewFromInt(30),
	}, nil
}

func (s *stubService) Get(_ context.Context, id uuid.UUID) (*dto.ChallanResponse, error) {
	if _, ok := s.files[id]; !ok {
		return nil, service.ErrChallanNotFound
	}
	return &dto.ChallanResponse{ID: id.String(), ChallanNo: "C-001"}, nil
}

func (s *stubService) List(_ context.Context, f dto.ChallanFilter) (*dto.ChallanListResponse, error) {
	s.lastFilter = &f
	return &dto.ChallanListResponse{Data: []dto.ChallanSummary{}, Page: f.Page, Limit: f.Limit}, nil
}

func (s *stubService) PDF(_ context.Context, id uuid.UUID) (*dto.File, error) {
	f, ok := s.files[id]
	if !ok || s.deleted[id] {
		return nil, service.ErrChallanNotFound
	}
	return f, nil
}

func (s *stubService) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.files[id]; !ok || s.deleted[id] {
		return service.ErrChallanNotFound
	}
	s.deleted[id] = true
	return nil
}

func (s *stubService) Share(context.Context, uuid.UUID) (*dto.ShareResponse, error) {
	return nil, service.ErrShareDisabled
}

func (s *stubService) SharedPDF(_ context.Context, token string) (*dto.File, error) {
	if token == "expired" {
		return nil, service.ErrShareExpired
	}
	return nil, service.ErrShareInvalid
}

func (s *stubService) ExportXLSX(_ context.Context, f dto.ChallanFilter) (*dto.File, error) {
	s.lastFilter = &f
	return &dto.File{Filename: "challans.xlsx", ContentType: service.ContentTypeXLSX, Data: []byte("PK")}, nil
}

var _ service.ChallanService = (*stubService)(nil)

func newTestRouter(svc service.ChallanService) *gin.Engine {
	h := NewChallansHandler(svc)
	r := gin.New()
	api := r.Group("/api")
	api.POST("/generate-pdf", h.Generate)
	api.GET("/list-challans", h.List)
	api.GET("/list-challans/export", h.Export)
	api.GET("/challans/:id", h.Get)
	api.DELETE("/challans/:id", h.Delete)
	api.POST("/challans/:id/share", h.Share)
	api.GET("/download-pdf/:id", h.Download)
	api.GET("/shared/:token", h.Shared)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const acmeBody = `{
  "customerName": "Acme Co",
  "challanNo": "C-001",
  "items": [
    {"description": "Bolt", "quantity": 10, "price": 2.5},
    {"description": "Nut", "quantity": "5", "price": 1}
  ]
}`

// ── Generate ──────────────────────────────────────────────────────────────────

func TestGenerate_Created(t *testing.T) {
	svc := newStubService()
	w := do(newTestRouter(svc), http.MethodPost, "/api/generate-pdf", acmeBody)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PDF generated successfully", resp["message"])
	assert.Equal(t, "C-001", resp["challanNo"])
	assert.NotEmpty(t, resp["challanId"])

	require.NotNil(t, svc.lastCreate)
	assert.True(t, svc.lastCreate.Items[1].Quantity.Equal(decimal.NewFromInt(5)))
}

func TestGenerate_MissingQuantityIs422(t *testing.T) {
	body := `{"customerName":"Acme","challanNo":"C-1","items":[{"description":"Bolt","quantity":1},{"description":"Nut"}]}`
	w := do(newTestRouter(newStubService()), http.MethodPost, "/api/generate-pdf", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":"validation error","fields":{"items[1].quantity":"is required"}}`, w.Body.String())
}

func TestGenerate_EmptyItemsIs422(t *testing.T) {
	body := `{"customerName":"Acme","challanNo":"C-1","items":[]}`
	w := do(newTestRouter(newStubService()), http.MethodPost, "/api/generate-pdf", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"items":"must be a non-empty list"`)
}

func TestGenerate_NegativePriceIs422(t *testing.T) {
	body := `{"customerName":"Acme","challanNo":"C-1","items":[{"description":"Bolt","quantity":1,"price":-2}]}`
	w := do(newTestRouter(newStubService()), http.MethodPost, "/api/generate-pdf", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"items[0].price"`)
}

func TestGenerate_MalformedJSONIs400(t *testing.T) {
	w := do(newTestRouter(newStubService()), http.MethodPost, "/api/generate-pdf", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		want string
	}{
		{"duplicate", service.ErrDuplicateChallanNo, http.StatusConflict, "challan number already exists"},
		{"receipt validation", &receipt.ValidationError{Field: "description", Index: 2, Reason: "is required"},
			http.StatusUnprocessableEntity, `"items[2].description":"is required"`},
		{"render", &receipt.RenderError{Op: "encode", Err: errors.New("rune not supported")},
			http.StatusInternalServerError, "failed to render challan PDF"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newStubService()
			svc.createErr = tc.err
			w := do(newTestRouter(svc), http.MethodPost, "/api/generate-pdf", acmeBody)
			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Body.String(), tc.want)
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

// ── List / Export ─────────────────────────────────────────────────────────────

func TestList_DefaultsAndFilters(t *testing.T) {
	svc := newStubService()
	w := do(newTestRouter(svc), http.MethodGet, "/api/list-challans?search=acme&order=asc&start_date=2024-03-01", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.lastFilter)
	assert.Equal(t, "acme", svc.lastFilter.Search)
	assert.Equal(t, "created_at", svc.lastFilter.Sort)
	assert.Equal(t, "asc", svc.lastFilter.Order)
	assert.Equal(t, "2024-03-01", svc.lastFilter.StartDate)
	assert.Equal(t, 1, svc.lastFilter.Page)
	assert.Equal(t, 50, svc.lastFilter.Limit)
}

func TestList_RejectsUnknownSortAndBadDate(t *testing.T) {
	r := newTestRouter(newStubService())

	w := do(r, http.MethodGet, "/api/list-challans?sort=pdf_data", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"sort"`)

	w = do(r, http.MethodGet, "/api/list-challans?end_date=09-03-2024", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"end_date"`)
}

func TestExport_SendsWorkbook(t *testing.T) {
	w := do(newTestRouter(newStubService()), http.MethodGet, "/api/list-challans/export?search=acme", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=challans.xlsx", w.Header().Get("Content-Disposition"))
}

// ── Download / Get / Delete ───────────────────────────────────────────────────

func TestDownload_Headers(t *testing.T) {
	svc := newStubService()
	id := uuid.New()
	svc.files[id] = &dto.File{Filename: "challan_C-001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}

	w := do(newTestRouter(svc), http.MethodGet, "/api/download-pdf/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=challan_C-001.pdf", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestDownload_NotFoundAndBadID(t *testing.T) {
	r := newTestRouter(newStubService())

	w := do(r, http.MethodGet, "/api/download-pdf/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"challan not found"}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/download-pdf/42", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete_ThenDownloadIs404(t *testing.T) {
	svc := newStubService()
	id := uuid.New()
	svc.files[id] = &dto.File{Filename: "challan_C-001.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
	r := newTestRouter(svc)

	w := do(r, http.MethodDelete, "/api/challans/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/download-pdf/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/challans/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGet_Detail(t *testing.T) {
	svc := newStubService()
	id := uuid.New()
	svc.files[id] = &dto.File{}

	w := do(newTestRouter(svc), http.MethodGet, "/api/challans/"+id.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

// ── Sharing ───────────────────────────────────────────────────────────────────

func TestShare_ErrorMapping(t *testing.T) {
	r := newTestRouter(newStubService())

	w := do(r, http.MethodPost, "/api/challans/"+uuid.NewString()+"/share", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/shared/expired", "")
	assert.Equal(t, http.StatusGone, w.Code)

	w = do(r, http.MethodGet, "/api/shared/garbage", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
