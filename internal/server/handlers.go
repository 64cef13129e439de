package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pagesift/pagesift/document"
	"github.com/pagesift/pagesift/internal/history"
)

var (
	allowedImageTypes = map[string]bool{
		"image/png":  true,
		"image/jpeg": true,
		"image/webp": true,
	}
	allowedPDFTypes = map[string]bool{
		"application/pdf": true,
	}
)

// ocrResult mirrors the wire shape clients have always consumed.
type ocrResult struct {
	Text         string               `json:"text"`
	Blocks       []document.TextBlock `json:"blocks"`
	Markdown     string               `json:"markdown"`
	MarkdownHTML string               `json:"markdown_html,omitempty"`
}

type ocrResponse struct {
	ID             string         `json:"id"`
	Filename       string         `json:"filename"`
	FileType       string         `json:"file_type"`
	CreatedAt      time.Time      `json:"created_at"`
	ProcessingTime string         `json:"processing_time,omitempty"`
	Status         history.Status `json:"status"`
	PageCount      int            `json:"page_count,omitempty"`
	OCRResult      *ocrResult     `json:"ocr_result,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

type structureResult struct {
	Blocks       []document.StructureBlock `json:"blocks"`
	Markdown     string                    `json:"markdown"`
	Tables       []document.Table          `json:"tables"`
	MarkdownHTML string                    `json:"markdown_html,omitempty"`
}

type structureResponse struct {
	ID              string           `json:"id"`
	Filename        string           `json:"filename"`
	CreatedAt       time.Time        `json:"created_at"`
	ProcessingTime  string           `json:"processing_time,omitempty"`
	Status          history.Status   `json:"status"`
	StructureResult *structureResult `json:"structure_result,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

// upload is one accepted multipart file persisted to the upload directory.
type upload struct {
	filename    string
	contentType string
	path        string
}

func (s *Server) handleProcessImage(w http.ResponseWriter, r *http.Request) {
	up, ok := s.acceptUpload(w, r, allowedImageTypes)
	if !ok {
		return
	}
	rec := s.createRecord(r, up, "image")

	res, err := s.proc.ProcessImage(r.Context(), up.path)
	if err != nil {
		s.failProcessing(w, r, rec, err)
		return
	}
	s.completeDocument(w, r, rec, res, "image")
}

func (s *Server) handleProcessPDF(w http.ResponseWriter, r *http.Request) {
	up, ok := s.acceptUpload(w, r, allowedPDFTypes)
	if !ok {
		return
	}
	rec := s.createRecord(r, up, "pdf")

	res, err := s.proc.ProcessPDF(r.Context(), up.path)
	if err != nil {
		s.failProcessing(w, r, rec, err)
		return
	}
	s.completeDocument(w, r, rec, res, "pdf")
}

func (s *Server) handleProcessStructure(w http.ResponseWriter, r *http.Request) {
	allowed := make(map[string]bool, len(allowedImageTypes)+len(allowedPDFTypes))
	for k := range allowedImageTypes {
		allowed[k] = true
	}
	for k := range allowedPDFTypes {
		allowed[k] = true
	}
	up, ok := s.acceptUpload(w, r, allowed)
	if !ok {
		return
	}
	fileType := "image"
	if allowedPDFTypes[up.contentType] {
		fileType = "pdf"
	}
	rec := s.createRecord(r, up, fileType)

	res, err := s.proc.ProcessStructure(r.Context(), up.path)
	if err != nil {
		s.failProcessing(w, r, rec, err)
		return
	}

	payload, err := json.Marshal(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "serialize result")
		return
	}
	elapsed := res.ProcessingTime.String()
	if err := s.store.Complete(r.Context(), rec.ID, elapsed, 0, payload); err != nil {
		s.log.Error().Err(err).Str("id", rec.ID).Msg("complete history record")
	}
	s.metrics.ObserveProcess("structure", 0, len(res.Blocks), time.Duration(res.ProcessingTime))

	out := &structureResult{Blocks: res.Blocks, Markdown: res.Markdown, Tables: res.Tables}
	if wantsHTML(r) {
		if html, err := document.MarkdownHTML(res.Markdown); err == nil {
			out.MarkdownHTML = html
		}
	}
	writeJSON(w, http.StatusOK, structureResponse{
		ID:              rec.ID,
		Filename:        rec.Filename,
		CreatedAt:       rec.CreatedAt,
		ProcessingTime:  elapsed,
		Status:          history.StatusCompleted,
		StructureResult: out,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "history not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := ocrResponse{
		ID:             rec.ID,
		Filename:       rec.Filename,
		FileType:       rec.FileType,
		CreatedAt:      rec.CreatedAt,
		ProcessingTime: rec.ProcessingTime,
		Status:         rec.Status,
		PageCount:      rec.PageCount,
		ErrorMessage:   rec.ErrorMessage,
	}
	if rec.Status == history.StatusCompleted && len(rec.Result) > 0 {
		var stored ocrResult
		if err := json.Unmarshal(rec.Result, &stored); err == nil {
			resp.OCRResult = &stored
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}

	listing, err := s.store.List(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "history not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	err := s.store.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "history not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "History deleted successfully"})
}

func (s *Server) handleDeleteAllHistory(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Deleted %d history entries", count),
	})
}

// acceptUpload validates and persists the multipart "file" field. On failure
// it writes the error response itself and returns ok=false.
func (s *Server) acceptUpload(w http.ResponseWriter, r *http.Request, allowed map[string]bool) (upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Limits.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file exceeds upload limit")
			return upload{}, false
		}
		writeError(w, http.StatusBadRequest, "missing file field")
		return upload{}, false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowed[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %s not allowed", contentType))
		return upload{}, false
	}

	path, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.log.Error().Err(err).Str("filename", header.Filename).Msg("save upload")
		writeError(w, http.StatusInternalServerError, "store uploaded file")
		return upload{}, false
	}
	return upload{filename: header.Filename, contentType: contentType, path: path}, true
}

func (s *Server) saveUpload(file multipart.File, filename string) (string, error) {
	path := filepath.Join(s.cfg.UploadDir, uuid.NewString()+filepath.Ext(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

func (s *Server) createRecord(r *http.Request, up upload, fileType string) history.Record {
	rec := history.Record{
		ID:        uuid.NewString(),
		Filename:  up.filename,
		FileType:  fileType,
		CreatedAt: time.Now().UTC(),
		Status:    history.StatusProcessing,
	}
	if err := s.store.Create(r.Context(), rec); err != nil {
		s.log.Error().Err(err).Str("filename", up.filename).Msg("create history record")
	}
	return rec
}

// failProcessing records the failure and translates the pipeline error into
// an API response.
func (s *Server) failProcessing(w http.ResponseWriter, r *http.Request, rec history.Record, err error) {
	if storeErr := s.store.Fail(r.Context(), rec.ID, err.Error()); storeErr != nil {
		s.log.Error().Err(storeErr).Str("id", rec.ID).Msg("mark record failed")
	}
	s.metrics.ProcessFailures.WithLabelValues(failureKind(err)).Inc()
	s.log.Error().Err(err).Str("id", rec.ID).Str("filename", rec.Filename).Msg("processing failed")

	status := http.StatusInternalServerError
	if errors.Is(err, document.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, ocrResponse{
		ID:           rec.ID,
		Filename:     rec.Filename,
		FileType:     rec.FileType,
		CreatedAt:    rec.CreatedAt,
		Status:       history.StatusFailed,
		ErrorMessage: err.Error(),
	})
}

func (s *Server) completeDocument(w http.ResponseWriter, r *http.Request, rec history.Record, res *document.DocumentResult, operation string) {
	payload, err := json.Marshal(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "serialize result")
		return
	}
	elapsed := res.ProcessingTime.String()
	if err := s.store.Complete(r.Context(), rec.ID, elapsed, res.PageCount, payload); err != nil {
		s.log.Error().Err(err).Str("id", rec.ID).Msg("complete history record")
	}
	s.metrics.ObserveProcess(operation, res.PageCount, len(res.Blocks), time.Duration(res.ProcessingTime))

	out := &ocrResult{Text: res.Text, Blocks: res.Blocks, Markdown: res.Markdown}
	if wantsHTML(r) {
		if html, err := document.MarkdownHTML(res.Markdown); err == nil {
			out.MarkdownHTML = html
		}
	}
	writeJSON(w, http.StatusOK, ocrResponse{
		ID:             rec.ID,
		Filename:       rec.Filename,
		FileType:       rec.FileType,
		CreatedAt:      rec.CreatedAt,
		ProcessingTime: elapsed,
		Status:         history.StatusCompleted,
		PageCount:      res.PageCount,
		OCRResult:      out,
	})
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, document.ErrNotFound):
		return "not_found"
	case errors.Is(err, document.ErrRasterize):
		return "raster"
	case errors.Is(err, document.ErrRecognize):
		return "recognize"
	default:
		return "other"
	}
}

func wantsHTML(r *http.Request) bool {
	return r.URL.Query().Get("format") == "html"
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
