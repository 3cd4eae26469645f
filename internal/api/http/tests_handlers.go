package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/TestPilotSystem/TestPilot/internal/auth/middleware"
	"github.com/TestPilotSystem/TestPilot/internal/exam"

	"github.com/go-chi/chi/v5"
)

// GET /tests — standard tests plus the caller's own generated ones.
func ListTestsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		list, err := store.ListTests(r.Context(), exam.ListOpts{ViewerID: sub})
		if err != nil {
			writeExamError(w, err)
			return
		}
		if list == nil {
			list = []exam.TestSummary{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}

// GET /tests/{testID} — test with questions; answer keys are stripped.
func GetTestHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeExamError(w, err)
			return
		}
		if t.UserID != "" && t.UserID != sub {
			http.Error(w, exam.ErrTestNotFound.Error(), http.StatusNotFound)
			return
		}
		for i := range t.Questions {
			t.Questions[i].CorrectAnswer = ""
			t.Questions[i].Explanation = ""
			t.Questions[i].SourceQuestionID = ""
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(t)
	}
}
