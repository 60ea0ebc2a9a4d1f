package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/raysh454/vexora/internal/analyzer"
	"github.com/raysh454/vexora/internal/logging"
	"github.com/raysh454/vexora/internal/media"
	"github.com/raysh454/vexora/internal/model"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// wantSave reports whether the result should be recorded; ?save=false opts out.
func wantSave(r *http.Request) bool {
	return r.URL.Query().Get("save") != "false"
}

// respond saves res to history when asked and writes it.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, kind model.Kind, input string, res *model.AnalysisResult) {
	out := AnalysisResponse{AnalysisResult: res}
	if wantSave(r) && s.deps.History != nil {
		item, err := s.deps.History.Save(r.Context(), kind, input, res)
		if err != nil {
			s.logger.Warn("saving analysis to history", logging.Field{Key: "kind", Value: kind}, logging.Err(err))
		} else {
			out.HistoryID = item.ID
		}
	}
	s.logger.Info("analysis finished",
		logging.Field{Key: "kind", Value: kind},
		logging.Field{Key: "status", Value: res.Status},
		logging.Field{Key: "confidence", Value: res.Confidence})
	writeJSON(w, http.StatusOK, out)
}

// handleAnalyzeURL godoc
// @Summary Score a URL
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeURLRequest true "URL to score"
// @Param save query bool false "Record the result in history" default(true)
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Router /analyze/url [post]
func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeURLRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := analyzer.ValidateURL(body.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, model.KindURL, body.URL, s.deps.Analyzer.AnalyzeURL(r.Context(), body.URL))
}

// handleAnalyzeText godoc
// @Summary Score a message
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeTextRequest true "Message to score"
// @Param save query bool false "Record the result in history" default(true)
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Router /analyze/text [post]
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeTextRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	text := body.Text
	switch body.Format {
	case "", "plain":
	case "html":
		plain, err := analyzer.TextFromHTML(body.Text)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		text = plain
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", body.Format))
		return
	}
	if err := analyzer.ValidateText(text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, model.KindText, text, s.deps.Analyzer.AnalyzeText(r.Context(), text))
}

// handleAnalyzeImage godoc
// @Summary Score an image
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param save query bool false "Record the result in history" default(true)
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /analyze/image [post]
func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if err := analyzer.ValidateImage(f); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, r, model.KindImage, f.Name(), s.deps.Analyzer.AnalyzeImage(r.Context(), f))
}

// handleAnalyzeVideo godoc
// @Summary Score a video
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Video file, at most 100 MiB"
// @Param save query bool false "Record the result in history" default(true)
// @Success 200 {object} AnalysisResponse
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /analyze/video [post]
func (s *Server) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if err := analyzer.ValidateVideo(f); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, analyzer.ErrFileTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	s.respond(w, r, model.KindVideo, f.Name(), s.deps.Analyzer.AnalyzeVideo(r.Context(), f))
}

// readUpload reads the multipart "file" field into memory. The declared
// part Content-Type wins; without one the type is guessed from the name.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*media.Memory, bool) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "expected multipart form with a file field")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return nil, false
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed")
		return nil, false
	}

	mimeType := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = media.DetectMIME(header.Filename)
	}

	return &media.Memory{
		FileName: filepath.Base(header.Filename),
		MIME:     mimeType,
		Data:     data,
		Modified: time.Now().UTC(),
	}, true
}
