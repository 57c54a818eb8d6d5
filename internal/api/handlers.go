// Package api provides HTTP handlers for wellnessd endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/damii-health/wellnessd/internal/models"
	"github.com/damii-health/wellnessd/internal/store"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"status": "healthy"}))
}

// generatePlanHandler runs the safety-gated plan pipeline. The response body is the
// WellnessPlanOutput document itself, not the standard envelope, so callers can hand
// it straight to the save endpoint without transformation.
func (s *Server) generatePlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.generatePlanHandler: processing plan request", "method", r.Method, "path", r.URL.Path)

	var req models.WellnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.generatePlanHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.generatePlanHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Please describe how you are feeling in at least 10 characters"))
		return
	}

	out, err := s.pipeline.GeneratePlan(r.Context(), req.Input)
	if err != nil {
		// Only reachable if the guaranteed-success tier itself broke.
		slog.Error("Server.generatePlanHandler: pipeline failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to generate wellness plan"))
		return
	}
	slog.Info("Server.generatePlanHandler: plan generated", "planID", out.PersonalizedPlan.ID, "safetyFlag", out.SafetyFlag)
	writeJSONResponse(w, http.StatusOK, out)
}

func (s *Server) savePlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")

	var req models.SavePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.savePlanHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Name != "" {
		req.Plan.PersonalizedPlan.Title = req.Name
	}
	if err := req.Plan.Validate(); err != nil {
		slog.Warn("Server.savePlanHandler: plan validation failed", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	doc, err := s.st.SavePlan(r.Context(), userID, req.Plan)
	if err != nil {
		slog.Error("Server.savePlanHandler: failed to save plan", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to save plan"))
		return
	}
	slog.Info("Server.savePlanHandler: plan saved", "userID", userID, "planID", doc.ID)
	writeJSONResponse(w, http.StatusCreated, models.Saved(doc))
}

func (s *Server) listPlansHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	docs, err := s.st.ListPlans(r.Context(), userID)
	if err != nil {
		slog.Error("Server.listPlansHandler: failed to list plans", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch plans"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(docs))
}

func (s *Server) deletePlanHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	planID := r.PathValue("planID")
	err := s.st.DeletePlan(r.Context(), userID, planID)
	if errors.Is(err, store.ErrPlanNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Plan not found"))
		return
	}
	if err != nil {
		slog.Error("Server.deletePlanHandler: failed to delete plan", "error", err, "planID", planID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete plan"))
		return
	}
	slog.Info("Server.deletePlanHandler: plan deleted", "userID", userID, "planID", planID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Plan deleted", nil))
}

func (s *Server) renamePlanHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")
	planID := r.PathValue("planID")

	var req models.RenamePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.Title == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required field: title"))
		return
	}

	err := s.st.RenamePlan(r.Context(), userID, planID, req.Title)
	if errors.Is(err, store.ErrPlanNotFound) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Plan not found"))
		return
	}
	if err != nil {
		slog.Error("Server.renamePlanHandler: failed to rename plan", "error", err, "planID", planID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to rename plan"))
		return
	}
	slog.Info("Server.renamePlanHandler: plan renamed", "userID", userID, "planID", planID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Plan renamed", nil))
}

func (s *Server) addMoodHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	userID := r.PathValue("id")

	var log models.MoodLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if log.Date == "" {
		log.Date = time.Now().UTC().Format("2006-01-02")
	}
	if err := log.Validate(); err != nil {
		slog.Warn("Server.addMoodHandler: validation failed", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	stored, err := s.st.AddMoodLog(r.Context(), userID, log)
	if err != nil {
		slog.Error("Server.addMoodHandler: failed to record mood log", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to record mood log"))
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.Saved(stored))
}

func (s *Server) listMoodHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	logs, err := s.st.ListMoodLogs(r.Context(), userID, limit, from, to)
	if err != nil {
		slog.Error("Server.listMoodHandler: failed to list mood logs", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch mood logs"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(logs))
}
