package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/doccompare/internal/core"
	"github.com/JonMunkholm/doccompare/internal/imagediff"
	"github.com/JonMunkholm/doccompare/internal/report"
)

// maxBodySize bounds JSON request bodies. Documents are referenced by path,
// so bodies are small.
const maxBodySize = 1 << 20

// watermarkFields are the optional overlay settings shared by comparison
// requests.
type watermarkFields struct {
	WmTxtMessage  string `json:"wm_txt_message"`
	WmImgURL      string `json:"wm_img_url"`
	WmPosition    string `json:"wm_position"`
	WmTxtFontSize string `json:"wm_txt_fontsize"`
	WmImgHeight   string `json:"wm_img_height"`
	WmImgWidth    string `json:"wm_img_width"`
	WmOpacity     string `json:"wm_opacity"`
	WmRotation    string `json:"wm_rotation"`
}

func (f watermarkFields) watermark() report.Watermark {
	return report.Watermark{
		Message:     f.WmTxtMessage,
		ImageURL:    f.WmImgURL,
		Position:    f.WmPosition,
		FontSize:    f.WmTxtFontSize,
		ImageHeight: f.WmImgHeight,
		ImageWidth:  f.WmImgWidth,
		Opacity:     f.WmOpacity,
		Rotation:    f.WmRotation,
	}
}

type compareExcelRequest struct {
	File1Path      string `json:"file1_path"`
	File1SheetName string `json:"file1_sheet_name"`
	File2Path      string `json:"file2_path"`
	File2SheetName string `json:"file2_sheet_name"`
	SessionID      string `json:"session_id"`
	watermarkFields
}

type filePairRequest struct {
	File1Path string `json:"file1_path"`
	File2Path string `json:"file2_path"`
	SessionID string `json:"session_id"`
	watermarkFields
}

type compareImageRequest struct {
	filePairRequest
	// MarkStyle is "box" (default) or "underline".
	MarkStyle string `json:"mark_style"`
}

type cleanSessionRequest struct {
	SessionID string `json:"session_id"`
}

type healthResponse struct {
	Status  string             `json:"status"`
	Limiter core.LimiterStatus `json:"limiter"`
}

// decodeJSON reads a JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// POST /api/v1/compare_excel
func (s *Server) handleCompareExcel(w http.ResponseWriter, r *http.Request) {
	var req compareExcelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.CompareExcel(withRequestMetadata(r), core.ExcelRequest{
		File1Path:  req.File1Path,
		File1Sheet: req.File1SheetName,
		File2Path:  req.File2Path,
		File2Sheet: req.File2SheetName,
		SessionID:  req.SessionID,
		Watermark:  req.watermark(),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, res)
}

// POST /api/v1/excel_properties
func (s *Server) handleExcelProperties(w http.ResponseWriter, r *http.Request) {
	var req filePairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.ExcelProperties(r.Context(), core.PropertiesRequest{
		File1Path: req.File1Path,
		File2Path: req.File2Path,
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, res)
}

// GET|POST /api/v1/compare_image
//
// GET requests may send the fields as a JSON body or as query parameters.
func (s *Server) handleCompareImage(w http.ResponseWriter, r *http.Request) {
	var req compareImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if r.Method != http.MethodGet || !errors.Is(err, io.EOF) {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}
		q := r.URL.Query()
		req.File1Path = q.Get("file1_path")
		req.File2Path = q.Get("file2_path")
		req.SessionID = q.Get("session_id")
		req.MarkStyle = q.Get("mark_style")
	}

	res, err := s.service.CompareImage(withRequestMetadata(r), core.ImageRequest{
		File1Path: req.File1Path,
		File2Path: req.File2Path,
		SessionID: req.SessionID,
		Style:     imagediff.ParseMarkStyle(req.MarkStyle),
		Watermark: req.watermark(),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, res)
}

// POST /api/v1/compare_pdf
func (s *Server) handleComparePDF(w http.ResponseWriter, r *http.Request) {
	var req filePairRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.ComparePDF(withRequestMetadata(r), core.PDFRequest{
		File1Path: req.File1Path,
		File2Path: req.File2Path,
		SessionID: req.SessionID,
		Watermark: req.watermark(),
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, res)
}

// POST /api/v1/clean_session
func (s *Server) handleCleanSession(w http.ResponseWriter, r *http.Request) {
	var req cleanSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	res, err := s.service.CleanSession(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, core.ErrSessionNotFound) {
			// Same body shape as a successful cleanup.
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(core.CleanupResult{
				Result: fmt.Sprintf("Session ID %s not available for cleanup", req.SessionID),
			})
			return
		}
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, res)
}

// GET /api/v1/reports?limit=N
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.History(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, recs)
}

// GET /api/v1/reports/{sessionID}
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	html, err := s.service.Report(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// GET /api/v1/reports/{sessionID}/record
func (s *Server) handleReportRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Comparison(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, rec)
}

// GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:  "ok",
		Limiter: s.service.Limiter().Status(),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
