package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	bannerservice "vitrine/contexts/merchandising/banner-service"
	mediauploadservice "vitrine/contexts/merchandising/media-upload-service"
	"vitrine/internal/platform/messaging"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "vitrine/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	banners bannerservice.Module
	uploads mediauploadservice.Module
	bus     *messaging.Broadcast
}

func New(
	banners bannerservice.Module,
	uploads mediauploadservice.Module,
	bus *messaging.Broadcast,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		banners: banners,
		uploads: uploads,
		bus:     bus,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /banners", s.handleListBanners)
	s.mux.HandleFunc("PUT /banners/{id}", s.handleUpdateBanner)

	s.mux.HandleFunc("POST /uploads", s.handleUpload)
	s.mux.HandleFunc("GET /media/{ref}", s.handleServeMedia)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	target any,
	writeError func(http.ResponseWriter, int, string, string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}
