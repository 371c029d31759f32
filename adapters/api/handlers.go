package api

import (
	"encoding/json"
	"net/http"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// MergeRequest is the POST /api/v1/merge payload
type MergeRequest struct {
	AnalysisID string                                 `json:"analysis_id,omitempty"`
	Responses  map[string]*market.PredictionResponse `json:"responses"`
	Properties []market.PropertyRecord               `json:"properties"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	result, err := s.runMerge(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleMergeReport runs the same merge but answers with the rendered HTML
// dashboard instead of the raw result.
func (s *Server) handleMergeReport(w http.ResponseWriter, r *http.Request) {
	result, err := s.runMerge(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.renderer.RenderHTML(result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		s.logger.Error().Err(err).Msg("failed to write report")
	}
}

func (s *Server) runMerge(r *http.Request) (*market.MergedAnalysisResult, error) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.InvalidInput("request body is not valid JSON: " + err.Error())
	}
	return s.merger.Merge(r.Context(), req.Responses, req.Properties, req.AnalysisID)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	s.logger.Warn().Err(err).Str("code", code).Int("status", status).Msg("request failed")
	s.writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func statusForCode(code string) int {
	switch code {
	case errors.CodeEmptyInput, errors.CodeValidationError, errors.CodeInvalidInput,
		errors.CodeMalformedResponse, errors.CodeDegenerateData, errors.CodeEmptySubset:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeMergeFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
