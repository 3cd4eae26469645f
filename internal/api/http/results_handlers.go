package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/TestPilotSystem/TestPilot/internal/auth/middleware"
	"github.com/TestPilotSystem/TestPilot/internal/exam"

	"github.com/go-chi/chi/v5"
)

// GET /results — the caller's graded attempts, newest first.
func ListResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		list, err := store.ListAttempts(r.Context(), sub)
		if err != nil {
			writeExamError(w, err)
			return
		}
		if list == nil {
			list = []exam.AttemptSummary{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /results/{attemptID} — one attempt with its outcomes, owner-only.
func GetResultHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeExamError(w, err)
			return
		}
		if a.UserID != sub {
			http.Error(w, exam.ErrAttemptNotFound.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /stats
func StatsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		st, err := store.UserStats(r.Context(), sub)
		if err != nil {
			writeExamError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st)
	}
}
