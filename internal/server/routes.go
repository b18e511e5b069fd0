package server

import (
	"fmt"
	"net/http"

	"github.com/justinas/alice"
)

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	base := alice.New(s.recoverPanic, s.logRequest)
	mux.HandleFunc("GET /v1/healthcheck", s.healthcheckHandler)
	mux.HandleFunc("GET /v1/changes", s.ChangesHandler)
	return base.Then(mux)
}

func (s *Server) healthcheckHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"available","subscribers":%d}`, s.Subscribers())
}
