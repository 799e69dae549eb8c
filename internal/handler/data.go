package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/xenking/invoicepro/internal/backup"
	"github.com/xenking/invoicepro/internal/domain/invoice"
	"github.com/xenking/invoicepro/internal/domain/settings"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// updateSettings merges the fields present in the body into the stored
// preferences.
func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	patch, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := settings.Defaults().Merge(patch); err != nil {
		writeError(w, r, badRequest(errors.Wrap(err, "decode settings")))
		return
	}
	prefs, err := h.store.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) getCompany(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.CompanyInfo(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) putCompany(w http.ResponseWriter, r *http.Request) {
	var info settings.CompanyInfo
	if err := decodeBody(w, r, &info); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.SaveCompanyInfo(r.Context(), info); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) getDraftItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.DraftItems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []invoice.LineItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) putDraftItems(w http.ResponseWriter, r *http.Request) {
	var items []invoice.LineItem
	if err := decodeBody(w, r, &items); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.SaveDraftItems(r.Context(), items); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) clearDraftItems(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearDraftItems(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// export downloads the snapshot; gzip=true wraps it in a gzip archive.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	snap, err := backup.Export(r.Context(), h.store, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.download(w, r, fmt.Sprintf("invoicepro-export-%s.json", now.Format("2006-01-02")), snap)
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	doc, err := backup.Backup(r.Context(), h.store, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.download(w, r, fmt.Sprintf("invoicepro-backup-%s.json", now.Format("2006-01-02")), doc)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, name string, v any) {
	if gz, _ := strconv.ParseBool(r.URL.Query().Get("gzip")); gz {
		w.Header().Set("Content-Type", "application/gzip")
		setAttachment(w, name+".gz")
		if err := backup.WriteArchive(w, v); err != nil {
			writeError(w, r, err)
		}
		return
	}
	data, err := backup.Marshal(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setAttachment(w, name)
	writeBody(w, "application/json", data)
}

func (h *Handler) importData(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := backup.Import(r.Context(), h.store, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAll(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
