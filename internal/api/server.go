package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"dbnc/pkg/debounce"
)

type RulesUpdateRequest struct {
	Rules []debounce.RuleSpec `json:"rules"`
}

type Server struct {
	addr          string
	verbose       bool
	updateChannel chan []debounce.RuleSpec
}

func NewServer(addr string, verbose bool, updateChannel chan []debounce.RuleSpec) *Server {
	return &Server{
		addr:          addr,
		verbose:       verbose,
		updateChannel: updateChannel,
	}
}

func (s *Server) Start() error {
	log.Info().Msgf("API server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.Routes())
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/rules", s.handleRulesUpdate)
	return mux
}

func (s *Server) handleRulesUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RulesUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	if len(req.Rules) == 0 {
		http.Error(w, "Rules cannot be empty", http.StatusBadRequest)
		return
	}

	if s.verbose {
		log.Info().Msgf("Received rules update request with %d rules", len(req.Rules))
	}

	s.updateChannel <- req.Rules

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "Rules updated successfully",
		"count":   len(req.Rules),
	})
}
