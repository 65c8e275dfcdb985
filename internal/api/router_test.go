package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	v1 "github.com/agencyops/agencyops/internal/api/v1"
	"github.com/agencyops/agencyops/internal/domain/invoice"
	ierr "github.com/agencyops/agencyops/internal/errors"
	"github.com/agencyops/agencyops/internal/service"
	"github.com/agencyops/agencyops/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	gin.SetMode(gin.TestMode)

	stores := s.GetStores()
	params := service.ServiceParams{
		Logger:        s.GetLogger(),
		Config:        s.GetConfig(),
		DB:            s.GetDB(),
		PDFGenerator:  s.GetPDFGenerator(),
		Storage:       s.GetStorage(),
		Mailer:        s.GetMailer(),
		Cache:         s.GetCache(),
		Sentry:        s.GetSentry(),
		SequenceRepo:  stores.SequenceRepo,
		SubEntityRepo: stores.SubEntityRepo,
		ClientRepo:    stores.ClientRepo,
		InvoiceRepo:   stores.InvoiceRepo,
		ReceiptRepo:   stores.ReceiptRepo,
	}

	log := s.GetLogger()
	s.router = NewRouter(Handlers{
		Health:    v1.NewHealthHandler(s.GetStorage(), s.GetConfig(), log),
		Invoice:   v1.NewInvoiceHandler(service.NewInvoiceService(params), log),
		Receipt:   v1.NewReceiptHandler(service.NewReceiptService(params), log),
		Client:    v1.NewClientHandler(service.NewClientService(params), log),
		SubEntity: v1.NewSubEntityHandler(service.NewSubEntityService(params), log),
	}, s.GetConfig(), log)
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *RouterSuite) errorCode(w *httptest.ResponseRecorder) string {
	body := s.decode(w)
	detail, ok := body["error"].(map[string]any)
	s.Require().True(ok, w.Body.String())
	code, _ := detail["code"].(string)
	return code
}

// seedParties creates a sub-entity and a client through the API
func (s *RouterSuite) seedParties() (subEntityID, clientCode string) {
	w := s.do(http.MethodPost, "/v1/sub-entities", map[string]any{
		"name":   "Agency House",
		"prefix": "AGH",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	subEntityID = s.decode(w)["id"].(string)

	w = s.do(http.MethodPost, "/v1/clients", map[string]any{
		"name":          "Asha Rao",
		"email":         "asha@acme.test",
		"sub_entity_id": subEntityID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	clientCode = s.decode(w)["client_code"].(string)
	s.Require().Equal("AGH-C001", clientCode)
	return subEntityID, clientCode
}

func (s *RouterSuite) invoiceBody(subEntityID, clientRef string) map[string]any {
	return map[string]any{
		"client_id":     clientRef,
		"sub_entity_id": subEntityID,
		"line_items": []map[string]any{
			{"title": "Brand strategy", "quantity": "2", "rate": 1000},
		},
	}
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal("ok", body["status"])
	s.Equal("local", body["mode"])
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestRequestHeaders() {
	raw, err := json.Marshal(map[string]any{"name": "Studio North", "prefix": "STN"})
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/v1/sub-entities", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req_fixed")
	req.Header.Set("X-User-ID", "usr_ops")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	s.Equal("req_fixed", w.Header().Get("X-Request-ID"))
	s.Equal("usr_ops", s.decode(w)["created_by"])

	w = s.do(http.MethodPost, "/v1/sub-entities", map[string]any{"name": "Studio South", "prefix": "STS"})
	s.Require().Equal(http.StatusCreated, w.Code)
	s.Equal("system", s.decode(w)["created_by"])
}

func (s *RouterSuite) TestPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/v1/invoices/generate", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusNoContent, w.Code)
	s.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))
	s.Contains(w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func (s *RouterSuite) TestInvoiceLifecycle() {
	subEntityID, clientCode := s.seedParties()

	w := s.do(http.MethodPost, "/v1/invoices/generate", s.invoiceBody(subEntityID, clientCode))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := s.decode(w)
	s.Equal("AGH-001", created["invoice_no"])
	s.Equal("/v1/invoices/file/AGH-001.pdf", created["pdf_url"])
	id := created["invoice_id"].(string)

	w = s.do(http.MethodPost, "/v1/invoices/generate", s.invoiceBody(subEntityID, clientCode))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	second := s.decode(w)
	s.Equal("AGH-001 (1)", second["invoice_no"])
	s.Equal("/v1/invoices/file/"+url.PathEscape("AGH-001 (1).pdf"), second["pdf_url"])

	w = s.do(http.MethodGet, second["pdf_url"].(string), nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("application/pdf", w.Header().Get("Content-Type"))
	s.Equal(testutil.SamplePDF, w.Body.Bytes())

	w = s.do(http.MethodGet, "/v1/invoices/"+id+"/download", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Header().Get("Content-Disposition"), "attachment")

	w = s.do(http.MethodGet, "/v1/invoices?limit=1", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	list := s.decode(w)
	s.Len(list["items"], 1)
	s.EqualValues(2, list["pagination"].(map[string]any)["total"])

	w = s.do(http.MethodPut, "/v1/invoices/"+id+"/status", map[string]any{"status": "Paid"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal("Paid", s.decode(w)["status"])

	w = s.do(http.MethodPut, "/v1/invoices/"+id+"/status", map[string]any{"status": "Cancelled"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeInvalidOperation, s.errorCode(w))

	w = s.do(http.MethodDelete, "/v1/invoices/"+id, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/invoices/"+id, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal(ierr.ErrCodeNotFound, s.errorCode(w))

	w = s.do(http.MethodGet, "/v1/invoices/file/AGH-001.pdf", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestGenerateInvoiceValidation() {
	w := s.do(http.MethodPost, "/v1/invoices/generate", map[string]any{})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(ierr.ErrCodeValidation, s.errorCode(w))

	w = s.do(http.MethodPost, "/v1/invoices/generate", s.invoiceBody("se_missing", "nobody"))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestGenerateInvoiceContention() {
	subEntityID, clientCode := s.seedParties()
	s.GetStores().InvoiceRepo.BeforeCreate(func(_ context.Context, inv *invoice.Invoice) error {
		return invoice.NewDuplicateNumberError(fmt.Errorf("duplicate key"), inv.InvoiceNo)
	})

	w := s.do(http.MethodPost, "/v1/invoices/generate", s.invoiceBody(subEntityID, clientCode))
	s.Equal(http.StatusInternalServerError, w.Code)

	body := s.decode(w)
	detail := body["error"].(map[string]any)
	s.Equal(ierr.ErrCodeNumberContention, detail["code"])
	s.Contains(detail["message"], "after 3 attempts")
}

func (s *RouterSuite) TestServeFileRejectsTraversal() {
	w := s.do(http.MethodGet, "/v1/invoices/file/..secret.pdf", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/receipts/file/RUD-404.pdf", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestReceiptLifecycle() {
	subEntityID, clientCode := s.seedParties()
	w := s.do(http.MethodPost, "/v1/invoices/generate", s.invoiceBody(subEntityID, clientCode))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/receipts/generate", map[string]any{
		"invoice_no":   "AGH-001",
		"payment_type": "cheque",
		"receipt_date": time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := s.decode(w)
	s.Equal("RUD-001", created["receipt_no"])
	id := created["receipt_id"].(string)

	w = s.do(http.MethodGet, "/v1/receipts/"+id, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	got := s.decode(w)
	s.Equal("Cheque", got["payment_type"])
	s.Equal("Two Thousand Three Hundred Sixty Rupees", got["amount_in_words"])

	w = s.do(http.MethodGet, "/v1/receipts/file/RUD-001.pdf", nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/receipts", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(s.decode(w)["items"], 1)

	w = s.do(http.MethodDelete, "/v1/receipts/"+id, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/v1/receipts/generate", map[string]any{"invoice_no": "AGH-404"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestClientLookup() {
	subEntityID, clientCode := s.seedParties()

	for _, ref := range []string{clientCode, "asha@acme.test"} {
		w := s.do(http.MethodGet, "/v1/clients/"+url.PathEscape(ref), nil)
		s.Equal(http.StatusOK, w.Code, ref)
	}

	w := s.do(http.MethodGet, "/v1/sub-entities/"+subEntityID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("AGH", s.decode(w)["prefix"])

	w = s.do(http.MethodGet, "/v1/sub-entities", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Len(s.decode(w)["items"], 1)

	w = s.do(http.MethodPost, "/v1/sub-entities", map[string]any{"name": "Agency House", "prefix": "AGX"})
	s.Equal(http.StatusConflict, w.Code)
}
