// Package handler exposes the document store and renderers over HTTP.
package handler

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xenking/invoicepro/internal/backup"
	"github.com/xenking/invoicepro/internal/document"
	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/store"
)

// MaxBodyBytes limits request bodies, backups included.
const MaxBodyBytes = 32 << 20

// Handler serves the JSON API.
type Handler struct {
	store *store.Store
	docs  *document.Service
	now   func() time.Time
}

// New returns a Handler over the given store and document service.
func New(s *store.Store, docs *document.Service) *Handler {
	return &Handler{store: s, docs: docs, now: time.Now}
}

// Register mounts the API routes on r under /api.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/invoices", h.listInvoices).Methods(http.MethodGet)
	api.HandleFunc("/invoices", h.createInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/new", h.newInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.getInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}", h.updateInvoice).Methods(http.MethodPut)
	api.HandleFunc("/invoices/{id}", h.deleteInvoice).Methods(http.MethodDelete)
	api.HandleFunc("/invoices/{id}/toggle-status", h.toggleStatus).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/duplicate", h.duplicateInvoice).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/html", h.invoiceHTML).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/pdf", h.invoicePDF).Methods(http.MethodGet)
	api.HandleFunc("/preview", h.preview).Methods(http.MethodPost)

	api.HandleFunc("/templates", h.listTemplates).Methods(http.MethodGet)
	api.HandleFunc("/templates/{theme}/preview", h.templatePreview).Methods(http.MethodGet)

	api.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	api.HandleFunc("/next-number", h.nextNumber).Methods(http.MethodGet)

	api.HandleFunc("/settings", h.getSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.updateSettings).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/company", h.getCompany).Methods(http.MethodGet)
	api.HandleFunc("/company", h.putCompany).Methods(http.MethodPut)
	api.HandleFunc("/draft-items", h.getDraftItems).Methods(http.MethodGet)
	api.HandleFunc("/draft-items", h.putDraftItems).Methods(http.MethodPut)
	api.HandleFunc("/draft-items", h.clearDraftItems).Methods(http.MethodDelete)

	api.HandleFunc("/export", h.export).Methods(http.MethodGet)
	api.HandleFunc("/backup", h.backup).Methods(http.MethodGet)
	api.HandleFunc("/import", h.importData).Methods(http.MethodPost)
	api.HandleFunc("/data", h.clearAll).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: http.StatusNotFound, Message: "route not found"})
	})
}

// Router returns a new router with the API mounted.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return errors.Wrap(errBadRequest, err.Error())
}

type errorBody struct {
	Code     int      `json:"code"`
	Message  string   `json:"message"`
	Problems []string `json:"problems,omitempty"`
}

// writeError maps domain errors to status codes. Unexpected errors are
// logged and reported without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *invoice.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Code:     http.StatusUnprocessableEntity,
			Message:  "invoice is invalid",
			Problems: verr.Problems,
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Code: http.StatusNotFound, Message: err.Error()})
	case errors.Is(err, backup.ErrInvalidSnapshot), errors.Is(err, errBadRequest):
		writeJSON(w, http.StatusBadRequest, errorBody{Code: http.StatusBadRequest, Message: err.Error()})
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    http.StatusInternalServerError,
			Message: http.StatusText(http.StatusInternalServerError),
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return nil, badRequest(errors.Wrap(err, "read body"))
	}
	return data, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	data, err := readBody(w, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return badRequest(errors.Wrap(err, "decode body"))
	}
	return nil
}

// setAttachment marks the response as a download named name. Non-ASCII
// names are encoded as RFC 2231 extended parameters.
func setAttachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
}
