package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fair-model-service/internal/domain"
	"fair-model-service/internal/domain/model"
	"fair-model-service/internal/infra/logging"
)

type rootResponse struct {
	ModelURI       string   `json:"model_uri"`
	ModelName      string   `json:"model_name"`
	Path           string   `json:"path"`
	PathParameters []string `json:"path_parameters"`
}

type statusResponse struct {
	Status  model.Status `json:"status"`
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
}

type predictResponse struct {
	statusResponse
	JobID string `json:"job_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	md := s.svc.Metadata()
	params := s.svc.InputParameters()
	if params == nil {
		params = []string{}
	}
	writeJSON(w, http.StatusOK, rootResponse{
		ModelURI:       md.ModelURI,
		ModelName:      md.ModelName,
		Path:           PredictPath,
		PathParameters: params,
	})
}

// handlePredict admits a job and returns without waiting for the result.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "read body: " + err.Error()})
		return
	}
	in, err := model.ParsePayload(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id, err := s.svc.Submit(r.Context(), in)
	if err != nil {
		code := statusFor(err)
		if code == http.StatusInternalServerError {
			logging.With(r.Context(), s.log).Error().Err(err).Str("job_id", id).Msg("predict failed")
		}
		writeJSON(w, code, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, predictResponse{
		statusResponse: statusResponse{Status: model.StatusRequested, Message: model.StatusRequested.Message()},
		JobID:          id,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status()
	writeJSON(w, http.StatusOK, statusResponse{Status: st.Code, Message: st.Message, Error: st.Error})
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	res, ok := s.svc.Result()
	if !ok {
		writeJSON(w, http.StatusOK, []float64{})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
