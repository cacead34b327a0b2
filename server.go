package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/skillsmap/internal/logger"
	"github.com/muhammadolammi/skillsmap/internal/pipeline"
	"github.com/muhammadolammi/skillsmap/internal/resume"
	usersession "github.com/muhammadolammi/skillsmap/internal/session"
	"github.com/muhammadolammi/skillsmap/internal/skills"
	"github.com/muhammadolammi/skillsmap/internal/store"
	"github.com/muhammadolammi/skillsmap/internal/visualize"
	"github.com/pkg/errors"
)

const (
	maxUploadBytes = 10 << 20
	headerUserID   = "X-User-ID"
	headerSession  = "X-Session-ID"
)

type ResumeProcessor interface {
	Process(ctx context.Context, sess *usersession.Context, doc resume.Document) pipeline.Result
}

type ProfileStore interface {
	FetchSkills(ctx context.Context, userID uuid.UUID) ([]string, error)
	FetchRatings(ctx context.Context, userID uuid.UUID) (skills.Ratings, error)
	SaveRatings(ctx context.Context, userID uuid.UUID, ratings skills.Ratings) (store.SaveResult, error)
}

type CareerAdvisor interface {
	Ask(ctx context.Context, sess *usersession.Context, question string) (string, error)
	Suggestions() []string
}

type Server struct {
	sessions  *usersession.Registry
	processor ResumeProcessor
	store     ProfileStore
	advisor   CareerAdvisor
}

// NewServer wires the HTTP surface. advisor may be nil, in which case chat
// requests get 503.
func NewServer(sessions *usersession.Registry, processor ResumeProcessor, st ProfileStore, advisor CareerAdvisor) *Server {
	return &Server{
		sessions:  sessions,
		processor: processor,
		store:     st,
		advisor:   advisor,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("POST /api/resume", s.withSession(s.handleResumeUpload))
	mux.HandleFunc("GET /api/skills", s.withSession(s.handleGetSkills))
	mux.HandleFunc("GET /api/competencies", s.withSession(s.handleGetCompetencies))
	mux.HandleFunc("POST /api/competencies", s.withSession(s.handleSaveCompetencies))
	mux.HandleFunc("GET /api/visualization", s.withSession(s.handleVisualization))
	mux.HandleFunc("GET /api/chat", s.withSession(s.handleChatHistory))
	mux.HandleFunc("POST /api/chat", s.withSession(s.handleChat))
	mux.HandleFunc("PUT /api/session/key", s.withSession(s.handleSetAPIKey))
	mux.HandleFunc("DELETE /api/session", s.handleEndSession)

	return logRequests(mux)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *usersession.Context)

func identity(r *http.Request) (sessionID string, userID uuid.UUID, err error) {
	userID, err = uuid.Parse(r.Header.Get(headerUserID))
	if err != nil {
		return "", uuid.Nil, errors.Errorf("missing or invalid %s header", headerUserID)
	}
	sessionID = r.Header.Get(headerSession)
	if sessionID == "" {
		sessionID = userID.String()
	}
	return sessionID, userID, nil
}

// withSession resolves the caller's identity headers into a session context.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, userID, err := identity(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next(w, r, s.sessions.GetOrCreate(sessionID, userID))
	}
}

// handleEndSession forgets the caller's session: API key, skills and chat.
// Stored skills and ratings are untouched.
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sessionID, userID, err := identity(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, ok := s.sessions.Get(sessionID)
	if !ok || sess.UserID != userID {
		writeError(w, http.StatusNotFound, "no such session")
		return
	}
	s.sessions.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResumeUpload(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1024)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse upload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = resume.MediaTypeFromFilename(header.Filename)
	}

	res := s.processor.Process(r.Context(), sess, resume.Document{
		Filename:  header.Filename,
		MediaType: mediaType,
		Data:      data,
	})
	writeJSON(w, http.StatusOK, res)
}

type skillsResponse struct {
	Skills  []string          `json:"skills"`
	Notices []pipeline.Notice `json:"notices,omitempty"`
}

func (s *Server) handleGetSkills(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	resp := skillsResponse{Skills: sess.Skills()}
	if len(resp.Skills) == 0 {
		stored, err := s.store.FetchSkills(r.Context(), sess.UserID)
		if err != nil {
			resp.Notices = append(resp.Notices, pipeline.Notice{Level: pipeline.LevelWarning, Message: "Could not load saved skills."})
		}
		resp.Skills = stored
		sess.SetSkills(stored)
	}
	writeJSON(w, http.StatusOK, resp)
}

type competenciesResponse struct {
	Competencies []skills.Competency `json:"competencies"`
	Ratings      skills.Ratings      `json:"ratings"`
	Notices      []pipeline.Notice   `json:"notices,omitempty"`
}

func (s *Server) handleGetCompetencies(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	ratings, err := s.store.FetchRatings(r.Context(), sess.UserID)
	resp := competenciesResponse{Competencies: skills.CoreCompetencies, Ratings: ratings}
	if err != nil {
		resp.Ratings = sess.Ratings()
		resp.Notices = append(resp.Notices, pipeline.Notice{Level: pipeline.LevelWarning, Message: "Could not load saved competencies."})
	} else {
		sess.SetRatings(ratings)
	}
	writeJSON(w, http.StatusOK, resp)
}

type saveCompetenciesResponse struct {
	store.SaveResult
	Notice pipeline.Notice `json:"notice"`
}

func (s *Server) handleSaveCompetencies(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	var ratings skills.Ratings
	if err := json.NewDecoder(r.Body).Decode(&ratings); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object of competency ratings")
		return
	}
	if err := skills.ValidateRatings(ratings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.store.SaveRatings(r.Context(), sess.UserID, ratings)
	resp := saveCompetenciesResponse{SaveResult: res, Notice: competencyNotice(res)}
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	merged := sess.Ratings()
	for name, rating := range ratings {
		merged[name] = rating
	}
	sess.SetRatings(merged)
	writeJSON(w, http.StatusOK, resp)
}

func competencyNotice(res store.SaveResult) pipeline.Notice {
	switch res.Status {
	case store.StatusUpdated:
		return pipeline.Notice{Level: pipeline.LevelSuccess, Message: fmt.Sprintf("%d competencies updated.", res.Count)}
	case store.StatusAlreadyExists:
		return pipeline.Notice{Level: pipeline.LevelInfo, Message: "All competencies already exist with the same ratings."}
	default:
		return pipeline.Notice{Level: pipeline.LevelError, Message: "Something went wrong while saving competencies."}
	}
}

func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	technical, err := s.store.FetchSkills(r.Context(), sess.UserID)
	if err != nil || len(technical) == 0 {
		technical = sess.Skills()
	}
	ratings, err := s.store.FetchRatings(r.Context(), sess.UserID)
	if err != nil {
		ratings = sess.Ratings()
	}
	sess.SetShowSkillsMap(true)

	svg := visualize.Render(visualize.Categorize(technical, ratings))
	if r.URL.Query().Get("embed") == "1" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, visualize.Embed(svg))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, svg)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply       string                `json:"reply,omitempty"`
	Messages    []usersession.Message `json:"messages,omitempty"`
	Suggestions []string              `json:"suggestions"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	resp := chatResponse{Messages: sess.Messages(), Suggestions: []string{}}
	if s.advisor != nil {
		resp.Suggestions = s.advisor.Suggestions()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	if s.advisor == nil {
		writeError(w, http.StatusServiceUnavailable, "career advisor is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sess.AppendMessage(usersession.Message{Role: "user", Content: req.Message})
	reply, err := s.advisor.Ask(r.Context(), sess, req.Message)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Str("user_id", sess.UserID.String()).Msg("advisor failed")
		writeError(w, http.StatusBadGateway, "career advisor failed to answer")
		return
	}
	sess.AppendMessage(usersession.Message{Role: "assistant", Content: reply})

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Suggestions: s.advisor.Suggestions()})
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (s *Server) handleSetAPIKey(w http.ResponseWriter, r *http.Request, sess *usersession.Context) {
	var req apiKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"api_key\": \"...\"}")
		return
	}
	sess.SetAPIKey(req.APIKey)
	w.WriteHeader(http.StatusNoContent)
}

// Serve runs srv until ctx is cancelled, then drains connections.
func Serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("API server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(logger.WithContext(r.Context())))
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
