package server

import (
	"encoding/json"
	"math/rand"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

type chatRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("chat request", zap.String("question", req.Question))
	response, err := s.chat.Answer(r.Context(), req.Question)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var input models.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := input.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	fb, err := s.feedback.Record(r.Context(), &input)
	if err != nil {
		s.logger.Error("recording feedback failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"id": fb.ID, "status": "recorded"})
}

// handleSuggestions returns up to three random starter questions.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	const sampleSize = 3
	pool := s.suggestions
	picked := pool
	if len(pool) > sampleSize {
		picked = make([]string, 0, sampleSize)
		for _, i := range rand.Perm(len(pool))[:sampleSize] {
			picked = append(picked, pool[i])
		}
	}
	if picked == nil {
		picked = []string{}
	}
	s.respondJSON(w, http.StatusOK, map[string][]string{"suggestions": picked})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	chunkCount, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := map[string]interface{}{
		"chunks": chunkCount,
		"config": map[string]interface{}{
			"collection":      s.config.Store.Collection,
			"embedding_model": s.config.Embedding.Model,
			"llm_model":       s.config.LLM.Model,
			"n_results":       s.config.Chat.NResults,
			"top_k":           s.config.Chat.TopK,
		},
	}
	if s.feedback != nil {
		fbCount, err := s.feedback.Count(ctx)
		if err != nil {
			s.logger.Warn("status: count feedback failed", zap.Error(err))
		} else {
			resp["feedback"] = fbCount
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
