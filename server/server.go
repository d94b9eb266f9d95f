// Package server exposes tournaments over HTTP and streams engine events over websockets
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/justinjudd/courtplay"
	"github.com/justinjudd/courtplay/models"
	"github.com/justinjudd/courtplay/tournament"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server routes API requests to a tournament manager
type Server struct {
	manager *courtplay.Manager
	hub     *Hub
	router  *mux.Router
}

func New(manager *courtplay.Manager, hub *Hub) *Server {
	s := &Server{manager: manager, hub: hub, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(requestLogger)

	r.HandleFunc("/tournaments", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/tournaments", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/tournaments/{id}/view", s.handleView).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}/matches", s.handlePlayable).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}/matches/{match:[0-9]+}/score", s.handleScore).Methods(http.MethodPut)
	r.HandleFunc("/tournaments/{id}/matches/{match:[0-9]+}/complete", s.handleComplete).Methods(http.MethodPost)
	r.HandleFunc("/tournaments/{id}/advance", s.handleAdvance).Methods(http.MethodPost)
	r.HandleFunc("/tournaments/{id}/standings", s.handleStandings).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}/ladder/movement", s.handleMovement).Methods(http.MethodGet)
	r.HandleFunc("/tournaments/{id}/ladder/next", s.handleNextSession).Methods(http.MethodPost)
	r.HandleFunc("/tournaments/{id}/ws", s.handleWs).Methods(http.MethodGet)
	r.HandleFunc("/backup", s.handleBackup).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger puts a request scoped logger in the context and logs every request once it is served
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := log.With().
			Str("request_id", xid.New().String()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info().Int("status", rec.status).Dur("took", time.Since(start)).Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack lets the websocket upgrader take over the connection
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

type errorResponse struct {
	Error    string               `json:"error"`
	Warnings []tournament.Warning `json:"warnings,omitempty"`
}

func statusFor(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, courtplay.ErrByesNotAccepted),
		errors.Is(err, models.ErrMatchLocked),
		errors.Is(err, models.ErrIllegalState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	var byes *courtplay.ByesError
	if errors.As(err, &byes) {
		resp.Warnings = byes.Warnings
	}
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		resp.Error = "internal server error"
	}
	writeJSON(w, r, status, resp)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("unable to write response")
	}
}

func decode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Invalid("body", "%v", err)
	}
	return nil
}

func matchID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["match"])
	if err != nil {
		return 0, models.Invalid("match", "not a match id")
	}
	return id, nil
}

type createResponse struct {
	Tournament *models.Tournament    `json:"tournament"`
	Warnings   []tournament.Warning `json:"warnings,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req courtplay.CreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, warnings, err := s.manager.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, createResponse{Tournament: t, Warnings: warnings})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var format *models.Format
	if f := r.URL.Query().Get("format"); f != "" {
		format = new(models.Format)
		if err := format.UnmarshalText([]byte(f)); err != nil {
			writeError(w, r, models.Invalid("format", "%v", err))
			return
		}
	}
	list, err := s.manager.List(r.Context(), format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Tournament{}
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.manager.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	t, err := s.manager.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := courtplay.GenerateTournamentHTML(t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handlePlayable(w http.ResponseWriter, r *http.Request) {
	matches, err := s.manager.Playable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	writeJSON(w, r, http.StatusOK, matches)
}

type scoreRequest struct {
	Field tournament.ScoreField `json:"field"`
	Value *int                  `json:"value"`
}

type updateResponse struct {
	Tournament *models.Tournament `json:"tournament"`
	Completed  bool               `json:"completed"`
	Events     []tournament.Event `json:"events,omitempty"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, u, err := s.manager.ScoreChange(r.Context(), mux.Vars(r)["id"], id, req.Field, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updateResponse{Tournament: t, Completed: u.Completed, Events: u.Events})
}

type completeRequest struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := matchID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req completeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, u, err := s.manager.CompleteMatch(r.Context(), mux.Vars(r)["id"], id, req.Score1, req.Score2)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updateResponse{Tournament: t, Completed: u.Completed, Events: u.Events})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	t, err := s.manager.AdvanceToBracket(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, t)
}

// standingsOptions reads the pool, bracket, session and court filters from the query string
func standingsOptions(r *http.Request) ([]tournament.Option, error) {
	q := r.URL.Query()
	var opts []tournament.Option
	atoi := func(key string) (int, bool, error) {
		v := q.Get(key)
		if v == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, models.Invalid(key, "not a number: %q", v)
		}
		return n, true, nil
	}

	pool, ok, err := atoi("pool")
	if err != nil {
		return nil, err
	}
	if ok {
		opts = append(opts, tournament.InPool(pool))
	}

	if b := q.Get("bracket"); b != "" {
		var bracket models.Bracket
		if err := bracket.UnmarshalText([]byte(b)); err != nil {
			return nil, models.Invalid("bracket", "%v", err)
		}
		opts = append(opts, tournament.InBracket(bracket))
	}

	session, hasSession, err := atoi("session")
	if err != nil {
		return nil, err
	}
	court, hasCourt, err := atoi("court")
	if err != nil {
		return nil, err
	}
	if hasSession != hasCourt {
		return nil, models.Invalid("court", "session and court are filtered together")
	}
	if hasSession {
		opts = append(opts, tournament.OnCourt(session, court))
	}
	return opts, nil
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	opts, err := standingsOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.manager.Standings(r.Context(), mux.Vars(r)["id"], opts...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []tournament.Standing{}
	}
	writeJSON(w, r, http.StatusOK, rows)
}

func (s *Server) handleMovement(w http.ResponseWriter, r *http.Request) {
	mv, err := s.manager.LadderMovement(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, mv)
}

type nextSessionResponse struct {
	Tournament *models.Tournament  `json:"tournament"`
	Movement   tournament.Movement `json:"movement"`
}

func (s *Server) handleNextSession(w http.ResponseWriter, r *http.Request) {
	t, mv, err := s.manager.NextLadderSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nextSessionResponse{Tournament: t, Movement: mv})
}

func (s *Server) handleWs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := s.manager.Get(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.hub.ServeWs(w, r, id)
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="courtplay-%s.db"`, time.Now().UTC().Format("20060102-150405")))
	n, err := s.manager.Backup(w)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("backup failed")
		if n == 0 {
			http.Error(w, "backup failed", http.StatusInternalServerError)
		}
		return
	}
	zerolog.Ctx(r.Context()).Info().Int64("bytes", n).Msg("backup written")
}
