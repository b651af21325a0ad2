package server

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"resxai/internal/app"
	"resxai/internal/insights"
	"resxai/pkg/domain"
)

const pdfContentType = "application/pdf"

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	// allow some room for the multipart envelope and the job description
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, s.tooLargeMessage())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeAppError(w, r, app.ErrNoFileProvided)
		return
	}
	defer file.Close()
	if !isPDF(header.Filename, header.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}
	if header.Size > s.maxUploadBytes {
		writeError(w, http.StatusBadRequest, s.tooLargeMessage())
		return
	}

	path, size, err := s.files.Stage(header.Filename, file)
	if err != nil {
		writeAppError(w, r, fmt.Errorf("stage upload: %w", err))
		return
	}
	upload := &app.Upload{
		Filename:    header.Filename,
		Path:        path,
		ContentType: pdfContentType,
		Size:        size,
	}
	record, err := s.app.UploadResume(r.Context(), account, upload, r.FormValue("jobDescription"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) tooLargeMessage() string {
	return fmt.Sprintf("File too large (max %d bytes)", s.maxUploadBytes)
}

func isPDF(filename, contentType string) bool {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == pdfContentType
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	view, err := s.app.Dashboard(account.ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request, account domain.Account) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	view, err := s.app.Analytics(account.ID, days)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func parseDays(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return insights.DefaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, app.ErrInvalidDays
	}
	return days, nil
}
