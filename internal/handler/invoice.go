package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/xenking/invoicepro/internal/document"
	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/store"
)

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.store.Find(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []invoice.Invoice{}
	}
	writeJSON(w, http.StatusOK, list)
}

func parseQuery(r *http.Request) (store.Query, error) {
	v := r.URL.Query()
	q := store.Query{Text: v.Get("q")}
	switch s := invoice.Status(v.Get("status")); s {
	case "", "all":
	case invoice.StatusPaid, invoice.StatusPending:
		q.Status = s
	default:
		return store.Query{}, badRequest(errors.Errorf("unknown status %q", s))
	}
	var err error
	if q.From, err = invoice.ParseDate(v.Get("from")); err != nil {
		return store.Query{}, badRequest(errors.Wrap(err, "from"))
	}
	if q.To, err = invoice.ParseDate(v.Get("to")); err != nil {
		return store.Query{}, badRequest(errors.Wrap(err, "to"))
	}
	return q, nil
}

func (h *Handler) newInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.NewInvoice(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var inv invoice.Invoice
	if err := decodeBody(w, r, &inv); err != nil {
		writeError(w, r, err)
		return
	}
	created := inv.IsNew()
	saved, err := h.store.Save(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	writeJSON(w, code, saved)
}

func (h *Handler) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv invoice.Invoice
	if err := decodeBody(w, r, &inv); err != nil {
		writeError(w, r, err)
		return
	}
	inv.ID = mux.Vars(r)["id"]
	saved, err := h.store.Save(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleStatus(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.ToggleStatus(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) duplicateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Duplicate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// themeFor picks the theme query parameter, falling back to the invoice's
// own template.
func themeFor(r *http.Request, inv *invoice.Invoice) invoice.Theme {
	if t := r.URL.Query().Get("theme"); t != "" {
		return invoice.ParseTheme(t)
	}
	return invoice.ParseTheme(string(inv.Template))
}

func fragmentRequested(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("fragment"))
	return v
}

func (h *Handler) invoiceHTML(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeHTML(w, r, &inv)
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, inv *invoice.Invoice) {
	render := h.docs.Document
	if fragmentRequested(r) {
		render = h.docs.Fragment
	}
	out, err := render(r.Context(), inv, themeFor(r, inv))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", []byte(out))
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writePDF(w, r, &inv)
}

func (h *Handler) writePDF(w http.ResponseWriter, r *http.Request, inv *invoice.Invoice) {
	if t := r.URL.Query().Get("theme"); t != "" {
		inv.Template = invoice.ParseTheme(t)
	}
	out, err := h.docs.PDF(r.Context(), inv)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePDFBody(w, out)
}

func writePDFBody(w http.ResponseWriter, out document.PDF) {
	setAttachment(w, out.Name)
	if out.Pages > 0 {
		w.Header().Set("X-Page-Count", strconv.Itoa(out.Pages))
	}
	writeBody(w, "application/pdf", out.Data)
}

// preview renders an unsaved invoice from the request body. format=pdf
// returns the PDF instead of HTML.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var inv invoice.Invoice
	if err := decodeBody(w, r, &inv); err != nil {
		writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == document.FormatPDF {
		h.writePDF(w, r, &inv)
		return
	}
	h.writeHTML(w, r, &inv)
}

func (h *Handler) listTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, invoice.Themes())
}

func (h *Handler) templatePreview(w http.ResponseWriter, r *http.Request) {
	out, err := h.docs.Preview(r.Context(), invoice.ParseTheme(mux.Vars(r)["theme"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeBody(w, "text/html; charset=utf-8", []byte(out))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) nextNumber(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.NextNumber(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"number": n})
}
