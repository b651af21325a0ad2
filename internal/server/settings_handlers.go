package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"resxai/internal/app"
	"resxai/internal/export"
	"resxai/pkg/domain"
)

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, account domain.Account) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, app.NewSettingsView(account))
	case http.MethodPut:
		var upd app.SettingsUpdate
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		view, err := s.app.UpdateSettings(account.ID, upd)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if r.URL.Query().Get("format") == "xlsx" {
		var buf bytes.Buffer
		if err := s.app.ExportWorkbook(&buf, account.ID); err != nil {
			writeAppError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="resxai-export.xlsx"`)
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}
	data, err := s.app.Export(account.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	view, err := s.app.ResetSettings(account.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	n, err := s.app.DeleteAllRecords(r.Context(), account.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	s.audit(r, "settings.delete_all", "success", "account_id", account.ID, "deleted", n)
	writeJSON(w, http.StatusOK, map[string]any{"message": "All resumes deleted", "deleted": n})
}
