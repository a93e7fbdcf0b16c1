package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/conorfennell/nerd/internal/domain"
	"github.com/conorfennell/nerd/internal/storage"
)

const maxBodyBytes = 1 << 20

// Server holds the dependencies for the HTTP server.
type Server struct {
	db       *storage.DB
	router   *mux.Router
	validate *validator.Validate
	logger   *slog.Logger
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:       db,
		router:   mux.NewRouter(),
		validate: newValidator(),
		logger:   logger,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("the resource '%s' was not found", r.URL.Path))
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "invalid HTTP method")
	})

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/topics", s.handleListTopics()).Methods(http.MethodGet)
	api.HandleFunc("/topics", s.handleCreateTopic()).Methods(http.MethodPost)
	api.HandleFunc("/topics/{id:[0-9]+}", s.handleGetTopic()).Methods(http.MethodGet)
	api.HandleFunc("/topics/{id:[0-9]+}", s.handleUpdateTopic()).Methods(http.MethodPut)
	api.HandleFunc("/topics/{id:[0-9]+}", s.handleDeleteTopic()).Methods(http.MethodDelete)

	api.HandleFunc("/cards", s.handleListCards()).Methods(http.MethodGet)
	api.HandleFunc("/cards", s.handleCreateCard()).Methods(http.MethodPost)
	api.HandleFunc("/cards/{id:[0-9]+}", s.handleGetCard()).Methods(http.MethodGet)
	api.HandleFunc("/cards/{id:[0-9]+}", s.handleUpdateCard()).Methods(http.MethodPut)
	api.HandleFunc("/cards/{id:[0-9]+}", s.handleDeleteCard()).Methods(http.MethodDelete)
}

type topicRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type cardRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Question string `json:"question" validate:"required,max=4000"`
	Answer   string `json:"answer" validate:"max=4000"`
	TopicID  int64  `json:"topic_id" validate:"required,gt=0"`
}

// cardPatch has no id or topic_id: the id is the path parameter and a
// card never moves between topics, so either key in the body is rejected.
type cardPatch struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Question *string `json:"question" validate:"omitempty,max=4000"`
	Answer   *string `json:"answer" validate:"omitempty,max=4000"`
}

// handleListTopics returns every topic.
func (s *Server) handleListTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := s.db.GetAllTopics()
		if err != nil {
			s.internalError(w, "Error getting topics", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
	}
}

// handleCreateTopic stores a new topic and returns it with its id.
func (s *Server) handleCreateTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topicRequest
		if !s.decode(w, r, &req) {
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		id, err := s.db.InsertTopic(name)
		if err != nil {
			s.internalError(w, "Error inserting topic", err)
			return
		}
		writeJSON(w, http.StatusCreated, domain.Topic{ID: id, Name: name})
	}
}

func (s *Server) handleGetTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		topic, err := s.db.FindTopic(id)
		if err != nil {
			s.internalError(w, "Error finding topic", err)
			return
		}
		if topic == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("topic %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, topic)
	}
}

// handleUpdateTopic renames a topic.
func (s *Server) handleUpdateTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		var req topicRequest
		if !s.decode(w, r, &req) {
			return
		}
		topic := domain.Topic{ID: id, Name: strings.TrimSpace(req.Name)}
		if topic.Name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		if err := s.db.RenameTopic(id, topic.Name); err != nil {
			s.mutationError(w, "topic", id, err)
			return
		}
		writeJSON(w, http.StatusOK, topic)
	}
}

// handleDeleteTopic deletes a topic together with its cards.
func (s *Server) handleDeleteTopic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		if err := s.db.DeleteTopic(id); err != nil {
			s.mutationError(w, "topic", id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// handleListCards returns all cards, or those of ?topic_id= when it is
// positive.
func (s *Server) handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var topicID int64
		if raw := r.URL.Query().Get("topic_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id < 0 {
				writeError(w, http.StatusBadRequest, "invalid topic_id")
				return
			}
			topicID = id
		}
		cards, err := s.db.GetCards(topicID)
		if err != nil {
			s.internalError(w, "Error getting cards", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
	}
}

// handleCreateCard stores a new card under an existing topic.
func (s *Server) handleCreateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cardRequest
		if !s.decode(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Question) == "" {
			writeError(w, http.StatusBadRequest, "title and question must not be empty")
			return
		}
		topic, err := s.db.FindTopic(req.TopicID)
		if err != nil {
			s.internalError(w, "Error finding topic", err)
			return
		}
		if topic == nil {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("topic %d does not exist", req.TopicID))
			return
		}
		card := domain.Card{
			Title:    strings.TrimSpace(req.Title),
			Question: strings.TrimSpace(req.Question),
			Answer:   req.Answer,
			TopicID:  req.TopicID,
		}
		id, err := s.db.InsertCard(card)
		if err != nil {
			s.internalError(w, "Error inserting card", err)
			return
		}
		card.ID = id
		writeJSON(w, http.StatusCreated, card)
	}
}

func (s *Server) handleGetCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		card, err := s.db.FindCard(id)
		if err != nil {
			s.internalError(w, "Error finding card", err)
			return
		}
		if card == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("card %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

// handleUpdateCard applies a partial update; absent fields are kept.
func (s *Server) handleUpdateCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		var req cardPatch
		if !s.decode(w, r, &req) {
			return
		}
		for name, v := range map[string]*string{"title": req.Title, "question": req.Question} {
			if v != nil && strings.TrimSpace(*v) == "" {
				writeError(w, http.StatusBadRequest, name+" must not be empty")
				return
			}
		}
		patch := storage.CardPatch{Title: trimmed(req.Title), Question: trimmed(req.Question), Answer: req.Answer}
		if err := s.db.UpdateCard(id, patch); err != nil {
			s.mutationError(w, "card", id, err)
			return
		}
		card, err := s.db.FindCard(id)
		if err != nil || card == nil {
			s.internalError(w, "Error reloading card", err)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func (s *Server) handleDeleteCard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)
		if err := s.db.DeleteCard(id); err != nil {
			s.mutationError(w, "card", id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// decode reads a strict JSON body into v and validates it. It writes the
// error response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func (s *Server) mutationError(w http.ResponseWriter, kind string, id int64, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s %d not found", kind, id))
		return
	}
	s.internalError(w, "Error changing "+kind, err)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
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

func pathID(r *http.Request) int64 {
	// The route pattern only admits digits; overflow parses to 0 and 404s.
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error_msg": msg})
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
	}
}
