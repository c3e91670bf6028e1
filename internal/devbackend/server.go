// Package devbackend is a local stand-in for the conversational backend. It
// serves the same three endpoints with canned replies and a keyword intent
// table so the client can be exercised without the real service.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/soyeahso/lively/internal/logging"
)

// Options configures a Server.
type Options struct {
	// AutoEnroll creates unknown users on their first /verify.
	AutoEnroll bool
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string
}

// Server serves /chat, /history and /verify.
type Server struct {
	store *Store
	opts  Options
	log   *logging.Logger
}

// NewServer creates a server over store.
func NewServer(store *Store, opts Options, log *logging.Logger) *Server {
	return &Server{store: store, opts: opts, log: log.Sub("devbackend")}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("POST /verify", s.handleVerify)
	return withMiddleware(mux, s.log, s.opts.CORSOrigins)
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Bool("autoEnroll", s.opts.AutoEnroll).Msg("dev backend listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type chatRequest struct {
	UserInput    string `json:"user_input"`
	Style        string `json:"style,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Intent   string `json:"intent,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		writeDetail(w, http.StatusBadRequest, "user_input is required")
		return
	}

	reply := cannedReply(req.UserInput, req.Style, req.SystemPrompt)
	// The intent describes the reply, the way the real backend labels it.
	intent := ClassifyIntent(reply)

	ctx := r.Context()
	if err := s.store.AppendMessage(ctx, SpeakerUser, req.UserInput, ""); err != nil {
		s.log.Error().Err(err).Msg("saving user turn")
		writeDetail(w, http.StatusInternalServerError, "서버 오류 발생")
		return
	}
	if err := s.store.AppendMessage(ctx, SpeakerAssistant, reply, intent); err != nil {
		s.log.Error().Err(err).Msg("saving assistant turn")
		writeDetail(w, http.StatusInternalServerError, "서버 오류 발생")
		return
	}

	s.log.Debug().Str("intent", intent).Str("style", req.Style).Msg("chat turn")
	writeJSON(w, http.StatusOK, chatResponse{Response: reply, Intent: intent})
}

type historyEntry struct {
	Speaker   string `json:"speaker"`
	Content   string `json:"content"`
	Intent    string `json:"intent,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.store.Messages(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("listing history")
		writeDetail(w, http.StatusInternalServerError, "대화 기록 조회 오류")
		return
	}

	out := make([]historyEntry, len(msgs))
	for i, m := range msgs {
		out[i] = historyEntry{
			Speaker:   m.Speaker,
			Content:   m.Content,
			Intent:    m.Intent,
			CreatedAt: m.CreatedAt.Format(time.DateTime),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type verifyRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

const reasonWrongPassword = "wrong_password"

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Username)
	if name == "" {
		writeJSON(w, http.StatusOK, verifyResponse{})
		return
	}

	ctx := r.Context()
	password, ok, err := s.store.Password(ctx, name)
	if err != nil {
		s.log.Error().Err(err).Msg("verify lookup")
		writeDetail(w, http.StatusInternalServerError, "서버 오류 발생")
		return
	}

	switch {
	case ok && password == req.Password:
		writeJSON(w, http.StatusOK, verifyResponse{Success: true})
	case ok:
		writeJSON(w, http.StatusOK, verifyResponse{Reason: reasonWrongPassword})
	case s.opts.AutoEnroll:
		if err := s.store.CreateUser(ctx, name, req.Password); err != nil {
			s.log.Error().Err(err).Msg("enrolling user")
			writeDetail(w, http.StatusInternalServerError, "서버 오류 발생")
			return
		}
		s.log.Info().Str("name", name).Msg("user enrolled")
		writeJSON(w, http.StatusOK, verifyResponse{Success: true})
	default:
		writeJSON(w, http.StatusOK, verifyResponse{})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
