package httpserver

import (
	"errors"
	"net/http"
	"strings"

	bannererrors "vitrine/contexts/merchandising/banner-service/domain/errors"
	bannerports "vitrine/contexts/merchandising/banner-service/ports"
	bannerhttp "vitrine/contexts/merchandising/banner-service/transport/http"

	"github.com/google/uuid"
)

func writeBannerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, bannerhttp.ErrorResponse{Code: code, Message: message})
}

func writeBannerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bannererrors.ErrInvalidSlot):
		writeBannerError(w, http.StatusBadRequest, "invalid_id", err.Error())
	case errors.Is(err, bannererrors.ErrInvalidPayload):
		writeBannerError(w, http.StatusBadRequest, "invalid_payload", err.Error())
	case errors.Is(err, bannererrors.ErrNotFound):
		writeBannerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, bannererrors.ErrVersionConflict):
		writeBannerError(w, http.StatusConflict, "version_conflict", err.Error())
	default:
		writeBannerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// handleListBanners returns the records for the requested slot ids. Unknown
// ids are omitted from the result, a missing ids parameter is an error.
func (s *Server) handleListBanners(w http.ResponseWriter, r *http.Request) {
	rawIDs := strings.TrimSpace(r.URL.Query().Get("ids"))
	if rawIDs == "" {
		writeBannerError(w, http.StatusBadRequest, "missing_ids", "ids query parameter is required")
		return
	}

	var ids []string
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	resp, err := s.banners.Handler.GetBannersHandler(r.Context(), ids)
	if err != nil {
		writeBannerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerhttp.UpdateBannerRequest
	if !s.decodeJSON(w, r, &req, writeBannerError) {
		return
	}

	id := r.PathValue("id")
	resp, err := s.banners.Handler.UpdateBannerHandler(r.Context(), id, req)
	if err != nil {
		writeBannerDomainError(w, err)
		return
	}

	s.notifyBannerUpdated(r, resp.Data.ID, resp.Data.Version)
	writeJSON(w, http.StatusOK, resp)
}

// notifyBannerUpdated fans the change out to live renderers. The update
// protocol itself stays channel-free; a publish failure is logged and does
// not fail the request because the outbox relay is the durable path.
func (s *Server) notifyBannerUpdated(r *http.Request, id string, version int64) {
	if s.bus == nil {
		return
	}
	envelope := bannerports.EventEnvelope{
		EventID:        uuid.NewString(),
		EventType:      bannerports.TopicBannerUpdated,
		SourceService:  "vitrine",
		EntityType:     "banner",
		EntityID:       id,
		PayloadVersion: 1,
		Payload: bannerports.BannerUpdatedPayload{
			ID:      id,
			Version: version,
		},
	}
	if err := s.bus.Publish(r.Context(), nil, bannerports.TopicBannerUpdated, envelope); err != nil {
		s.logger.Warn("banner update broadcast failed",
			"event", "banner_broadcast_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"banner_id", id,
			"version", version,
			"error", err.Error(),
		)
	}
}
