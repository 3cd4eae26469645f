package http

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/TestPilotSystem/TestPilot/internal/auth/middleware"
	"github.com/TestPilotSystem/TestPilot/internal/exam"

	"github.com/go-chi/chi/v5"
)

// POST /tests/{testID}/submit
// { "responses": { "<questionID>": "<answer text>" }, "time_spent_sec": 120 }
func SubmitAttemptHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		testID := chi.URLParam(r, "testID")

		var req struct {
			Responses    map[string]string `json:"responses"`
			TimeSpentSec int               `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, err := svc.SubmitAttempt(r.Context(), sub, testID, req.Responses, req.TimeSpentSec)
		if err != nil {
			writeExamError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": a.ID, "score": a.Score})
	}
}

// POST /review-tests/rebuild
func RebuildReviewHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		res, err := svc.RebuildReviewTests(r.Context(), sub)
		if err != nil {
			writeExamError(w, err)
			return
		}
		msg := "no outstanding mistakes"
		if res.TestsCreated > 0 {
			msg = "review tests rebuilt"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":       msg,
			"tests_created": res.TestsCreated,
			"mistakes":      res.Mistakes,
		})
	}
}

// POST /review-tests/{testID}/submit
// { "responses": { "<questionID>": "<answer text>" } }
func SubmitReviewHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		testID := chi.URLParam(r, "testID")

		var req struct {
			Responses map[string]string `json:"responses"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		res, err := svc.SubmitReviewAttempt(r.Context(), sub, testID, req.Responses)
		if err != nil {
			writeExamError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

func writeExamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exam.ErrTestNotFound), errors.Is(err, exam.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, exam.ErrInvalidTest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, exam.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
