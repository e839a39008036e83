package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/palmvoyage/tripfund/internal/estimate"
	"github.com/palmvoyage/tripfund/internal/model"
	"github.com/palmvoyage/tripfund/internal/pipeline"
	"github.com/palmvoyage/tripfund/internal/planner"
	"github.com/palmvoyage/tripfund/internal/scoring"
	"github.com/palmvoyage/tripfund/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Service) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	total := req.Flight.Value.Add(req.Accommodation.Value).Add(req.Additional.Value)
	if req.TotalCost != nil {
		total = req.TotalCost.Value
	}
	in := planner.Inputs{TotalCost: total, Passengers: max(1, req.Passengers)}
	if strings.TrimSpace(req.Departure) != "" {
		d, err := planner.ParseDate(req.Departure)
		if err != nil {
			writeError(w, http.StatusBadRequest, "departure: "+err.Error())
			return
		}
		in.Departure = &d
	}

	var override *decimal.Decimal
	if req.Monthly != nil && !req.Monthly.Blank {
		v := req.Monthly.Value
		override = &v
	}

	today := s.cfg.Today()
	res, err := s.cfg.Planner.Plan(today, in, override)
	if err == nil && req.ApplyMinimum {
		if rec, ok := planner.Recommended(res); ok {
			res, err = s.cfg.Planner.Plan(today, in, &rec)
		}
	}
	if err != nil {
		if errors.Is(err, planner.ErrInvalidDate) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pax := decimal.NewFromInt(int64(in.Passengers))
	writeJSON(w, http.StatusOK, PlanResponse{
		TotalCost:  total.Round(2),
		PerPerson:  total.Div(pax).Round(2),
		Passengers: in.Passengers,
		Plan:       res.View(),
	})
}

func (s *Service) handleScore(w http.ResponseWriter, r *http.Request) {
	var in scoring.Inputs
	if !decodeBody(w, r, &in) {
		return
	}
	score := scoring.Score(in)
	writeJSON(w, http.StatusOK, ScoreResponse{Score: score, Tier: string(scoring.TierOf(score))})
}

func (s *Service) handleTrips(w http.ResponseWriter, _ *http.Request) {
	summaries, err := pipeline.Load(s.store, s.cfg.Today())
	if err != nil {
		s.log.Error("listing trips", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]TripView, 0, len(summaries))
	for _, sum := range summaries {
		out = append(out, tripView(sum))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) findTrip(w http.ResponseWriter, ref string) (model.Trip, bool) {
	t, err := s.store.FindTrip(ref)
	switch {
	case err == nil:
		return t, true
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "trip not found: "+ref)
	case errors.Is(err, store.ErrAmbiguous):
		writeError(w, http.StatusConflict, "trip id prefix is ambiguous: "+ref)
	default:
		s.log.Error("finding trip", zap.String("ref", ref), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return model.Trip{}, false
}

func (s *Service) handleTrip(w http.ResponseWriter, r *http.Request) {
	t, ok := s.findTrip(w, r.PathValue("id"))
	if !ok {
		return
	}

	today := s.cfg.Today()
	summary := pipeline.Summarize([]model.Trip{t}, today)[0]
	detail := TripDetail{TripView: tripView(summary)}

	res, err := s.cfg.Planner.Plan(today, estimate.PlanInputs(t), t.Funding.MonthlyPerPerson)
	if err != nil {
		detail.PlanError = err.Error()
	} else {
		v := res.View()
		detail.Plan = &v
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleCompare ranks the trips named by the comma separated "ids" query
// parameter, or every trip when it is absent.
func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	var trips []model.Trip
	if raw := strings.TrimSpace(r.URL.Query().Get("ids")); raw != "" {
		for _, ref := range strings.Split(raw, ",") {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			t, ok := s.findTrip(w, ref)
			if !ok {
				return
			}
			trips = append(trips, t)
		}
	} else {
		all, err := s.store.ListTrips()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		trips = all
	}

	ranked := pipeline.Ranked(trips, s.cfg.Today())
	totals := pipeline.Aggregate(ranked)
	resp := CompareResponse{
		Trips:        make([]TripView, 0, len(ranked)),
		Count:        totals.Trips,
		TotalCost:    totals.TotalCost.Round(2),
		AverageCost:  totals.AverageCost.Round(2),
		AverageScore: totals.AverageScore,
		Shares:       sharesView(pipeline.AggregateShares(ranked)),
	}
	for _, sum := range ranked {
		resp.Trips = append(resp.Trips, tripView(sum))
	}
	writeJSON(w, http.StatusOK, resp)
}
