package api

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/asset-cli/internal/config"
	"github.com/sells-group/asset-cli/internal/estimate"
	"github.com/sells-group/asset-cli/internal/model"
	"github.com/sells-group/asset-cli/internal/scorer"
	"github.com/sells-group/asset-cli/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Assumptions is the body of GET /assumptions: the engine parameters every
// computed estimate and risk score is derived from.
type Assumptions struct {
	Prices             estimate.PriceTable `json:"prices"`
	OperatingCostRatio float64             `json:"operating_cost_ratio"`
	Risk               config.RiskConfig   `json:"risk"`
}

func (s *Server) handleAssumptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Assumptions{
		Prices:             s.revenue.Prices(),
		OperatingCostRatio: s.agg.OperatingCostRatio(),
		Risk:               s.risk.Config(),
	})
}

func (s *Server) handleAssetDetail(w http.ResponseWriter, r *http.Request) {
	if s.svc == nil {
		writeError(w, http.StatusServiceUnavailable, "asset store not configured")
		return
	}
	id := chi.URLParam(r, "id")

	d, err := s.svc.Detail(r.Context(), id)
	if err != nil {
		if store.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "asset not found: "+id)
			return
		}
		zap.L().Error("api: asset detail failed", zap.String("asset_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load asset")
		return
	}
	s.metrics.ObserveOutcome(d.Outcome.Status)
	writeJSON(w, http.StatusOK, d)
}

// EstimateRequest is the body of POST /estimates. Production may arrive in
// any order; it is sorted most-recent-first before estimation.
type EstimateRequest struct {
	Asset         model.AssetProfile       `json:"asset"`
	Production    []model.ProductionSample `json:"production"`
	PriceOverride *float64                 `json:"price_override,omitempty"`
	AsOf          *time.Time               `json:"as_of,omitempty"`
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	history := slices.Clone(req.Production)
	slices.SortStableFunc(history, func(a, b model.ProductionSample) int {
		return b.Month.Compare(a.Month)
	})

	res, err := s.agg.CalculateAll(req.Asset, history, s.asOf(req.AsOf), estimate.Options{PriceOverride: req.PriceOverride})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case estimate.IsEmptyHistory(err):
			status = http.StatusUnprocessableEntity
		case estimate.IsInvalidInput(err):
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error(), Kind: string(estimate.KindOf(err))})
		return
	}
	s.metrics.ObserveOutcome(estimate.StatusComputed)
	writeJSON(w, http.StatusOK, res)
}

// RiskRequest is the body of POST /risk.
type RiskRequest struct {
	DeclineRate     *float64   `json:"decline_rate,omitempty"`
	ComplianceFlags []string   `json:"compliance_flags,omitempty"`
	SpudDate        *time.Time `json:"spud_date,omitempty"`
	WaterCutPct     *float64   `json:"water_cut_pct,omitempty"`
	AsOf            *time.Time `json:"as_of,omitempty"`
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req RiskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res := s.risk.Score(scorer.RiskInput{
		DeclineRate:     req.DeclineRate,
		ComplianceFlags: req.ComplianceFlags,
		SpudDate:        req.SpudDate,
		WaterCutPct:     req.WaterCutPct,
	}, s.asOf(req.AsOf))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) asOf(t *time.Time) time.Time {
	if t != nil {
		return t.UTC()
	}
	return s.now().UTC()
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
