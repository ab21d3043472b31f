// Package httpapi exposes the planner over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"nutriguide"
	"nutriguide/orchestrator"
)

const maxBodyBytes = 1 << 20

// Service is the part of the orchestrator the router calls.
type Service interface {
	Handle(ctx context.Context, req orchestrator.Request) (nutriguide.PlanOutcome, error)
	SubmitFeedback(ctx context.Context, profileID string, feedback nutriguide.Feedback) (nutriguide.FeedbackAck, error)
}

// Notifier is told about every finished cycle. Errors are logged, never returned to the caller.
type Notifier func(ctx context.Context, out nutriguide.PlanOutcome) error

type handlers struct {
	svc    Service
	notify Notifier
}

// NewRouter builds the planner routes. notify may be nil.
func NewRouter(svc Service, notify Notifier) http.Handler {
	h := &handlers{svc: svc, notify: notify}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/plans", h.createPlan)
		r.Post("/profiles/{profileID}/feedback", h.submitFeedback)
	})
	return r
}

// planRequest is the body of POST /v1/plans. A bare profile is accepted as a generate_plan request.
type planRequest struct {
	Kind      string                    `json:"kind"`
	Profile   *nutriguide.UserProfile   `json:"profile"`
	Candidate *nutriguide.NutritionPlan `json:"candidate"`
	PlanDate  string                    `json:"plan_date"`
}

func decodePlanRequest(body []byte) (orchestrator.Request, error) {
	var pr planRequest
	if err := json.Unmarshal(body, &pr); err != nil {
		return orchestrator.Request{}, err
	}
	if pr.Profile == nil {
		var profile nutriguide.UserProfile
		if err := json.Unmarshal(body, &profile); err != nil {
			return orchestrator.Request{}, err
		}
		pr.Profile = &profile
	}
	if pr.Kind == "" {
		pr.Kind = orchestrator.KindGeneratePlan
	}

	req := orchestrator.Request{Kind: pr.Kind, Profile: *pr.Profile, Candidate: pr.Candidate}
	if pr.PlanDate != "" {
		d, err := time.Parse(time.DateOnly, pr.PlanDate)
		if err != nil {
			return orchestrator.Request{}, errors.New("plan_date must be YYYY-MM-DD")
		}
		req.PlanDate = d
	}

	switch {
	case req.Kind != orchestrator.KindGeneratePlan && req.Kind != orchestrator.KindSafetyReview:
		return orchestrator.Request{}, errors.New("kind must be generate_plan or safety_review")
	case req.Profile.ID == "":
		return orchestrator.Request{}, errors.New("profile id is required")
	case req.Kind == orchestrator.KindSafetyReview && req.Candidate == nil:
		return orchestrator.Request{}, errors.New("safety_review requires a candidate plan")
	}
	return req, nil
}

func (h *handlers) createPlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		respondError(w, http.StatusBadRequest, "request body is required")
		return
	}
	req, err := decodePlanRequest(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Handle(r.Context(), req)
	if err != nil {
		slog.Error("RESULT: Planning cycle failed", "profile_id", req.Profile.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "planning cycle failed")
		return
	}

	if h.notify != nil {
		if err := h.notify(r.Context(), out); err != nil {
			slog.Error("RESULT: Failed to send notification", "correlation_id", out.CorrelationID, "error", err)
		}
	}

	status := http.StatusOK
	if out.Status == nutriguide.StatusRejected {
		status = http.StatusUnprocessableEntity
	}
	respondJSON(w, status, out)
}

func (h *handlers) submitFeedback(w http.ResponseWriter, r *http.Request) {
	profileID := chi.URLParam(r, "profileID")

	var fb nutriguide.Feedback
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&fb); err != nil {
		respondError(w, http.StatusBadRequest, "invalid feedback body")
		return
	}
	fb.ProfileID = profileID

	ack, err := h.svc.SubmitFeedback(r.Context(), profileID, fb)
	if err != nil {
		slog.Error("RESULT: Failed to store feedback", "profile_id", profileID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}
	if !ack.Accepted {
		respondJSON(w, http.StatusUnprocessableEntity, ack)
		return
	}
	respondJSON(w, http.StatusAccepted, ack)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP: Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", chimw.GetReqID(r.Context()),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) // nolint: errcheck
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
