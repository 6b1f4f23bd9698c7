package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"tasknotify/internal/domain"
	"tasknotify/internal/reminder"
	"tasknotify/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const dueLayout = "2006-01-02T15:04"

type Server struct {
	r         *chi.Mux
	repo      store.Repository
	scheduler *reminder.Scheduler
	enabler   *reminder.Enabler
	templates *template.Template

	mu       sync.Mutex
	state    reminder.State
	enabling bool
}

func NewServer(repo store.Repository, scheduler *reminder.Scheduler, enabler *reminder.Enabler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	templates := template.Must(template.ParseFS(templateFS, "templates/*.html"))

	s := &Server{r: r, repo: repo, scheduler: scheduler, enabler: enabler, templates: templates}

	r.Get("/health", s.health)
	r.Get("/metrics", s.metrics)

	r.Post("/api/tasks", s.createTask)
	r.Get("/api/tasks", s.listTasks)
	r.Get("/api/tasks/{id}", s.getTask)
	r.Put("/api/tasks/{id}", s.updateTask)
	r.Delete("/api/tasks/{id}", s.deleteTask)
	r.Post("/api/tasks/{id}/done", s.markDone)

	r.Get("/api/profile", s.getProfile)
	r.Put("/api/profile", s.putProfile)

	r.Post("/api/notifications/enable", s.enableNotifications)
	r.Get("/api/reminders", s.listReminders)

	// Page routes
	r.Get("/", s.index)
	r.Post("/", s.indexCreate)
	r.Get("/update/{id}", s.updatePage)
	r.Post("/update/{id}", s.updateSave)
	r.Get("/delete/{id}", s.indexDelete)

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "tasknotify_up 1\ntasknotify_reminders_armed %d\ntasknotify_reminders_fired %d\n",
		len(s.scheduler.Armed()), s.scheduler.Fired())
}

type taskReq struct {
	Content string `json:"content"`
	DueTime string `json:"due_time"`
}

func (req taskReq) validate() (time.Time, error) {
	if req.Content == "" {
		return time.Time{}, errors.New("content is required")
	}
	if len(req.Content) > 200 {
		return time.Time{}, errors.New("content must be at most 200 characters")
	}
	due := reminder.ParseDue(req.DueTime)
	if due.IsZero() {
		return time.Time{}, fmt.Errorf("invalid due_time %q", req.DueTime)
	}
	return due, nil
}

type createResp struct {
	ID string `json:"id"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	due, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	id, err := s.repo.Create(r.Context(), domain.Todo{Content: req.Content, DueAt: due})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.armNewTask(r.Context(), id, domain.TaskItem{Text: req.Content, DueAt: due})
	writeJSON(w, http.StatusCreated, createResp{ID: id})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	todos, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	writeJSON(w, 200, todos)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

// updateTask edits a stored task. Reminders already armed for it are left
// alone.
func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}

	var req taskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Content == "" {
		req.Content = t.Content
	}
	if req.DueTime == "" {
		req.DueTime = t.DueAt.Format(time.RFC3339)
	}
	due, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	t.Content = req.Content
	t.DueAt = due

	if err := s.repo.Update(r.Context(), t); err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markDone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.repo.SetDone(r.Context(), id, true); err != nil {
		writeRepoError(w, err)
		return
	}
	t, err := s.repo.Get(r.Context(), id)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	writeJSON(w, 200, t)
}

type profile struct {
	Nickname string `json:"nickname"`
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	nick, err := s.repo.Nickname(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, 200, profile{Nickname: nick})
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var p profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if err := s.repo.SetNickname(r.Context(), p.Nickname); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, 200, p)
}

type enableResp struct {
	Enabled bool              `json:"enabled"`
	Alerts  []string          `json:"alerts"`
	Armed   []reminder.Handle `json:"armed"`
}

// enableNotifications runs the enabling action once per process. Later calls,
// and calls made while one is still in flight, report the current state
// without arming anything. Tasks created after enabling are armed on create.
func (s *Server) enableNotifications(w http.ResponseWriter, r *http.Request) {
	resp := enableResp{Alerts: []string{}, Armed: []reminder.Handle{}}

	s.mu.Lock()
	if s.state.Enabled || s.enabling {
		resp.Enabled = s.state.Enabled
		s.mu.Unlock()
		writeJSON(w, 200, resp)
		return
	}
	s.enabling = true
	s.mu.Unlock()

	alerts := reminder.AlertFunc(func(msg string) {
		log.Warn().Str("alert", msg).Msg("user alert")
		resp.Alerts = append(resp.Alerts, msg)
	})
	st, handles, err := s.enabler.Enable(r.Context(), alerts)

	s.mu.Lock()
	s.state = st
	s.enabling = false
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("schedule reminders")
		http.Error(w, err.Error(), 500)
		return
	}
	resp.Enabled = st.Enabled
	resp.Armed = append(resp.Armed, handles...)
	writeJSON(w, 200, resp)
}

func (s *Server) currentState() reminder.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// armNewTask arms a reminder for a task created after notifications were
// enabled. Failures are logged; the task itself is already stored.
func (s *Server) armNewTask(ctx context.Context, id string, item domain.TaskItem) {
	st := s.currentState()
	if !st.Enabled {
		return
	}
	nick, err := s.repo.Nickname(ctx)
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("read nickname for new task")
		return
	}
	if h, ok := s.scheduler.ScheduleTask(ctx, st, nick, item); ok {
		log.Debug().Str("task_id", id).Str("reminder_id", h.ID).Msg("new task armed")
	}
}

func (s *Server) listReminders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, s.scheduler.Armed())
}

type taskView struct {
	ID      string
	Content string
	Due     string
	Done    bool
	Overdue bool
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	todos, err := s.repo.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	nick, err := s.repo.Nickname(r.Context())
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	now := time.Now()
	views := make([]taskView, 0, len(todos))
	for _, t := range todos {
		views = append(views, taskView{
			ID:      t.ID,
			Content: t.Content,
			Due:     t.DueAt.Local().Format(dueLayout),
			Done:    t.Done,
			Overdue: !now.Before(t.DueAt),
		})
	}

	enabled := s.currentState().Enabled

	data := map[string]any{"Nickname": nick, "Tasks": views, "Enabled": enabled}
	w.Header().Set("Content-Type", "text/html")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

func (s *Server) indexCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	req := taskReq{Content: r.FormValue("content"), DueTime: r.FormValue("due_time")}
	due, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	id, err := s.repo.Create(r.Context(), domain.Todo{Content: req.Content, DueAt: due})
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	s.armNewTask(r.Context(), id, domain.TaskItem{Text: req.Content, DueAt: due})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) updatePage(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	data := taskView{ID: t.ID, Content: t.Content, Due: t.DueAt.Local().Format(dueLayout), Done: t.Done}
	w.Header().Set("Content-Type", "text/html")
	if err := s.templates.ExecuteTemplate(w, "update.html", data); err != nil {
		http.Error(w, err.Error(), 500)
	}
}

// updateSave stores an edited task from the update form. Reminders already
// armed for it are left alone.
func (s *Server) updateSave(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	req := taskReq{Content: r.FormValue("content"), DueTime: r.FormValue("due_time")}
	due, err := req.validate()
	if err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	t.Content = req.Content
	t.DueAt = due
	if err := s.repo.Update(r.Context(), t); err != nil {
		writeRepoError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) indexDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", 404)
		return
	}
	http.Error(w, err.Error(), 500)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
