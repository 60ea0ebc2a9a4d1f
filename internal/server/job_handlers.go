package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/vexora/internal/app"
	"github.com/raysh454/vexora/internal/logging"
)

// jobStartStatus maps StartBatchJob errors to HTTP statuses.
func jobStartStatus(err error) int {
	if errors.Is(err, app.ErrOrchestratorClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// handleStartBatchJob godoc
// @Summary Start a batch of URL and text analyses
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body StartBatchJobRequest true "Batch items"
// @Success 202 {object} app.Job
// @Failure 400 {object} ErrorResponse
// @Router /jobs/batch [post]
func (s *Server) handleStartBatchJob(w http.ResponseWriter, r *http.Request) {
	var body StartBatchJobRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	save := body.Save == nil || *body.Save

	// The job outlives the request.
	job, err := s.deps.Orch.StartBatchJob(context.Background(), body.Items, save)
	if err != nil {
		s.logger.Warn("starting batch job", logging.Err(err))
		writeError(w, jobStartStatus(err), err.Error())
		return
	}
	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID}, logging.Field{Key: "items", Value: job.Total})
	writeJSON(w, http.StatusAccepted, job)
}

// handleGetJob godoc
// @Summary Get a batch job
// @Tags jobs
// @Produce json
// @Param jobID path string true "Job id"
// @Success 200 {object} app.Job
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.deps.Orch.GetJob(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelJob godoc
// @Summary Cancel a batch job
// @Tags jobs
// @Param jobID path string true "Job id"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /jobs/{jobID} [delete]
func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if err := s.deps.Orch.CancelJob(jobID); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	w.WriteHeader(http.StatusNoContent)
}

// handleListJobs godoc
// @Summary List batch jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} app.Job
// @Router /jobs [get]
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Orch.ListJobs())
}

// handleBatchWS upgrades, reads one StartBatchJobRequest from the client,
// then streams the job followed by its events until the job ends.
func (s *Server) handleBatchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	var body StartBatchJobRequest
	if err := conn.ReadJSON(&body); err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid JSON"})
		return
	}
	save := body.Save == nil || *body.Save

	job, err := s.deps.Orch.StartBatchJob(r.Context(), body.Items, save)
	if err != nil {
		s.logger.Warn("starting batch job", logging.Err(err))
		_ = conn.WriteJSON(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("started batch job", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			_ = s.deps.Orch.CancelJob(job.ID)
			return
		}
	}
}
