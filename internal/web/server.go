package web

import (
	"context"
	"fmt"
	"github.com/gorilla/mux"
	"github.com/liulifox233/tracker-collector/internal/core/config"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/liulifox233/tracker-collector/internal/core/trackers"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"net"
	"net/http"
)

type Server struct {
	store      *config.Store
	fetcher    trackers.IFetcher
	httpServer *http.Server
}

func NewServer(store *config.Store, fetcher trackers.IFetcher) *Server {
	return &Server{
		store:   store,
		fetcher: fetcher,
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	log := logs.GetLogger()
	conf := s.store.Get().Server

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", conf.Port))
	if err != nil {
		return errors.Wrapf(err, "failed to start listener on port %d", conf.Port)
	}

	s.httpServer = &http.Server{
		Handler:           cors.Default().Handler(s.router()),
		ReadTimeout:       conf.ReadTimeout,
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		WriteTimeout:      conf.WriteTimeout,
		IdleTimeout:       conf.IdleTimeout,
		MaxHeaderBytes:    conf.MaxHeaderBytes,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil {
			if err != http.ErrServerClosed {
				log.Error("http server has been closed", zap.Error(err))
			}
		}
	}()
	log.Info(fmt.Sprintf("web server: listening on port %d", conf.Port))
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	if s.httpServer == nil {
		return
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		_ = s.httpServer.Close()
	}
}

func (s *Server) router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// "/" serves the comma-joined list (what aria2's bt-tracker option
	// expects), any other path serves the blank-line-separated form
	// most torrent clients accept for pasting.
	router.PathPrefix("/").HandlerFunc(s.serveTrackers).Methods(http.MethodGet)
	return router
}

func (s *Server) serveTrackers(w http.ResponseWriter, r *http.Request) {
	log := logs.GetLogger()

	separator := "\n\n"
	if r.URL.Path == "/" {
		separator = ","
	}

	set, err := s.fetcher.Resolve(r.Context(), s.store.Trackers())
	if err != nil {
		log.Error("web server: failed to resolve trackers", zap.Error(err))
		http.Error(w, "failed to resolve trackers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(set.Join(separator)))
}
