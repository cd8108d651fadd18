// Package mockserver is an in-memory achievements service used by the
// `mockapi` command and the client tests. It implements just enough of the
// real API to exercise the sync paths: week-scoped achievement and kintai
// documents, per-employee, last write wins.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/worktime"
)

type weekRef struct {
	employee string
	year     int
	week     int
}

// Server holds the in-memory state behind the HTTP handler.
type Server struct {
	mu           sync.Mutex
	achievements map[weekRef][]*event.Event
	kintai       map[weekRef][]worktime.WorkTime
	users        map[string]remote.User
	projects     []remote.Project
}

// New returns a server seeded with a small project list. Users are created
// on first sight so any employeeId works.
func New() *Server {
	return &Server{
		achievements: make(map[weekRef][]*event.Event),
		kintai:       make(map[weekRef][]worktime.WorkTime),
		users:        make(map[string]remote.User),
		projects: []remote.Project{
			{Code: "PJ-1001", Name: "搬送装置 更新"},
			{Code: "PJ-1002", Name: "検査ライン 新設"},
			{Code: "PJ-1007", Name: "制御盤 改造"},
		},
	}
}

// Handler builds the chi router over the server state.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/achievements/week/{year}/{week}", s.getAchievements)
		r.Post("/achievements/week/{year}/{week}", s.putAchievements)
		r.Delete("/achievements/{id}", s.deleteAchievement)
		r.Get("/kintai/week/{year}/{week}", s.getKintai)
		r.Post("/kintai/week/{year}/{week}", s.putKintai)
		r.Get("/users/{employeeID}", s.getUser)
		r.Get("/projects", s.getProjects)
	})
	return r
}

func (s *Server) getAchievements(w http.ResponseWriter, r *http.Request) {
	ref, err := refFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	evs, ok := s.achievements[ref]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, evs)
}

func (s *Server) putAchievements(w http.ResponseWriter, r *http.Request) {
	ref, err := refFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var evs []*event.Event
	if err := json.NewDecoder(r.Body).Decode(&evs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, ev := range evs {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		// The saved document is clean by definition.
		ev.Dirty = false
	}
	s.mu.Lock()
	s.achievements[ref] = evs
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteAchievement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref, evs := range s.achievements {
		for i, ev := range evs {
			if ev.ID == id {
				s.achievements[ref] = append(evs[:i], evs[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	http.NotFound(w, r)
}

func (s *Server) getKintai(w http.ResponseWriter, r *http.Request) {
	ref, err := refFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	wts, ok := s.kintai[ref]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, wts)
}

func (s *Server) putKintai(w http.ResponseWriter, r *http.Request) {
	ref, err := refFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var wts []worktime.WorkTime
	if err := json.NewDecoder(r.Body).Decode(&wts); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.kintai[ref] = wts
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "employeeID")
	s.mu.Lock()
	u, ok := s.users[id]
	if !ok {
		u = remote.User{EmployeeID: id, Name: "社員 " + id}
		s.users[id] = u
	}
	s.mu.Unlock()
	writeJSON(w, u)
}

func (s *Server) getProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	projects := s.projects
	s.mu.Unlock()
	writeJSON(w, projects)
}

func refFrom(r *http.Request) (weekRef, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return weekRef{}, fmt.Errorf("bad year: %w", err)
	}
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		return weekRef{}, fmt.Errorf("bad week: %w", err)
	}
	if week < 1 || week > 53 {
		return weekRef{}, fmt.Errorf("week %d out of range", week)
	}
	employee := r.URL.Query().Get("employeeId")
	if employee == "" {
		return weekRef{}, fmt.Errorf("employeeId is required")
	}
	return weekRef{employee: employee, year: year, week: week}, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
