package outliers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/airport-atlas/pkg/models/api"
	"github.com/de-tools/airport-atlas/pkg/models/domain"
	"github.com/de-tools/airport-atlas/pkg/services/runs"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

type Handler struct {
	runs runs.Service
}

func NewHandler(svc runs.Service) *Handler {
	return &Handler{runs: svc}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toReportSummary(rep))
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	response := make([]api.Country, 0, len(rep.Groups))
	for _, g := range rep.Groups {
		if status != "" && string(g.Summary.Status) != status {
			continue
		}
		response = append(response, toCountry(g.Summary))
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetCountry(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}

	country := chi.URLParam(r, "country")
	group, found := rep.Group(country)
	if !found {
		writeError(w, r, http.StatusNotFound, "country "+strconv.Quote(country)+" is not part of the latest run")
		return
	}

	detail := api.CountryDetail{
		Country:  toCountry(group.Summary),
		Verdicts: make([]api.Verdict, 0, len(group.Verdicts)),
	}
	for _, v := range group.Verdicts {
		detail.Verdicts = append(detail.Verdicts, toVerdict(v))
	}
	writeJSON(w, r, http.StatusOK, detail)
}

func (h *Handler) ListOutliers(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.latest(w, r)
	if !ok {
		return
	}

	response := make([]api.Verdict, 0, rep.FlaggedCount())
	for _, g := range rep.Groups {
		for _, v := range g.Flagged() {
			response = append(response, toVerdict(v))
		}
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	// The run outlives the request if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	logger := zerolog.Ctx(ctx)

	rep, err := h.runs.Trigger(ctx)
	switch {
	case errors.Is(err, runs.ErrRunInProgress):
		writeError(w, r, http.StatusConflict, err.Error())
		return
	case rep == nil && err != nil:
		logger.Error().Err(err).Msg("analysis run failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	case err != nil:
		// A report came back, so the failure is partial.
		logger.Warn().Err(err).Str("run_id", rep.RunID).Msg("analysis run finished with errors")
	}
	writeJSON(w, r, http.StatusOK, toReportSummary(rep))
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHistoryLimit {
			writeError(w, r, http.StatusBadRequest, "limit must be an integer between 1 and "+strconv.Itoa(maxHistoryLimit))
			return
		}
		limit = n
	}

	records, err := h.runs.History(ctx, limit)
	if errors.Is(err, runs.ErrNoHistory) {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to list runs")
		writeError(w, r, http.StatusInternalServerError, "failed to list runs")
		return
	}

	response := make([]api.Run, 0, len(records))
	for _, rec := range records {
		response = append(response, api.Run{
			RunID:       rec.RunID,
			Title:       rec.Title,
			GeneratedAt: rec.GeneratedAt,
			Status:      rec.Status,
			Countries:   rec.Countries,
			Flagged:     rec.Flagged,
		})
	}
	writeJSON(w, r, http.StatusOK, response)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": h.runs.Running(),
	})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	rep, err := h.runs.Latest()
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return nil, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, api.Error{Error: msg})
}

func toReportSummary(rep *domain.Report) api.ReportSummary {
	groups := make(map[string]int)
	for status, n := range rep.CountByStatus() {
		groups[string(status)] = n
	}
	misses := rep.LookupMisses
	if misses == nil {
		misses = []string{}
	}
	return api.ReportSummary{
		RunID:       rep.RunID,
		Title:       rep.Title,
		GeneratedAt: rep.GeneratedAt,
		Status:      string(rep.Status),
		Thresholds: api.Thresholds{
			SignificanceThreshold: rep.Thresholds.SignificanceThreshold,
			MinGroupSize:          rep.Thresholds.MinGroupSize,
		},
		Countries:    len(rep.Groups),
		Flagged:      rep.FlaggedCount(),
		Groups:       groups,
		LookupMisses: misses,
	}
}

func toCountry(s domain.GroupSummary) api.Country {
	return api.Country{
		Country: s.Country,
		Status:  string(s.Status),
		Reason:  s.Reason,
		Count:   s.Count,
		Mean:    s.Statistics.Mean,
		StdDev:  s.Statistics.StdDev,
		Flagged: s.Flagged,
	}
}

func toVerdict(v domain.OutlierVerdict) api.Verdict {
	return api.Verdict{
		Code:            v.Airport.ID,
		Name:            v.Airport.Name,
		Country:         v.Airport.Country,
		Latitude:        v.Airport.Coordinate.Latitude,
		Longitude:       v.Airport.Coordinate.Longitude,
		Distance:        v.Distance,
		PValue:          v.PValue,
		Flagged:         v.Flagged,
		Geohash:         v.Geohash,
		NearestCountry:  v.NearestCountry,
		NearestDistance: v.NearestDistance,
	}
}
