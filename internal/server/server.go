package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"dbnc/pkg/debounce"
)

// Server exposes the resolver endpoints backed by the active rule set.
type Server struct {
	ListenAddr string
	Engine     *debounce.AtomicEngine
	Verbose    bool
}

func New(listenAddr string, engine *debounce.AtomicEngine, verbose bool) *Server {
	return &Server{
		ListenAddr: listenAddr,
		Engine:     engine,
		Verbose:    verbose,
	}
}

func (s *Server) Start() error {
	log.Info().Msgf("Debounce resolver listening on %s", s.ListenAddr)
	return http.ListenAndServe(s.ListenAddr, s.Routes())
}

// Routes builds the resolver mux. Split out so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/resolve", s.handleResolve)
	mux.HandleFunc("/bounce", s.handleBounce)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
