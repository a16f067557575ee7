package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"laliga/ingestion/internal/router"
	"laliga/ingestion/internal/service"

	"github.com/gorilla/mux"
)

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	svc           *service.Service
	defaultSeason int
}

// NewHandler creates a new handler. defaultSeason is used when requests
// omit the season query parameter.
func NewHandler(svc *service.Service, defaultSeason int) *Handler {
	return &Handler{svc: svc, defaultSeason: defaultSeason}
}

// HealthCheck reports component health. Degraded and unhealthy states
// still return a body describing which component is down.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health(r.Context())

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, health)
}

// GetTeams returns team standings records for a (season, week).
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	season, week, forceLive, err := h.seasonWeekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Teams(r.Context(), season, week, forceLive)
	if err != nil {
		respondRouterError(w, "Failed to fetch teams", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetMatchups returns head-to-head matchups for a (season, week).
func (h *Handler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	season, week, forceLive, err := h.seasonWeekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Matchups(r.Context(), season, week, forceLive)
	if err != nil {
		respondRouterError(w, "Failed to fetch matchups", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetStandings returns the Liga Bucks table for a (season, week).
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season, week, forceLive, err := h.seasonWeekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	resp, err := h.svc.Standings(r.Context(), season, week, forceLive)
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			respondError(w, http.StatusNotFound, "No standings data for requested season and week", err)
			return
		}
		respondRouterError(w, "Failed to compute standings", err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetDataSourceStatus labels a (season, week) with its serving source.
func (h *Handler) GetDataSourceStatus(w http.ResponseWriter, r *http.Request) {
	season, week, _, err := h.seasonWeekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Status(season, week))
}

// TriggerIngest force re-ingests a season.
func (h *Handler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	season, err := strconv.Atoi(vars["season"])
	if err != nil || season < 2000 || season > 2100 {
		respondError(w, http.StatusBadRequest, "Invalid season", err)
		return
	}

	summary, err := h.svc.Refresh(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Ingestion failed", err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// seasonWeekParams parses the common season/week/live query parameters.
func (h *Handler) seasonWeekParams(r *http.Request) (season, week int, forceLive bool, err error) {
	season = h.defaultSeason
	if s := r.URL.Query().Get("season"); s != "" {
		season, err = strconv.Atoi(s)
		if err != nil || season < 2000 || season > 2100 {
			return 0, 0, false, errors.New("invalid season parameter")
		}
	}

	if ws := r.URL.Query().Get("week"); ws != "" {
		week, err = strconv.Atoi(ws)
		if err != nil || week < 0 || week > 18 {
			return 0, 0, false, errors.New("invalid week parameter")
		}
	}

	forceLive = r.URL.Query().Get("live") == "true"
	return season, week, forceLive, nil
}

// respondRouterError maps routing failures onto status codes: source
// exhaustion is an upstream problem, everything else is internal.
func respondRouterError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, router.ErrBothSourcesExhausted) {
		respondError(w, http.StatusBadGateway, message, err)
		return
	}
	respondError(w, http.StatusInternalServerError, message, err)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
