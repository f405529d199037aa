package httpserver

import (
	"errors"
	"io"
	"net/http"

	uploaderrors "vitrine/contexts/merchandising/media-upload-service/domain/errors"
	uploadhttp "vitrine/contexts/merchandising/media-upload-service/transport/http"
)

// multipartMemoryLimit bounds the multipart parse; the per-class size caps
// are enforced by the upload service itself.
const multipartMemoryLimit = 12 << 20

func writeUploadError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, uploadhttp.ErrorResponse{Code: code, Message: message})
}

func writeUploadDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, uploaderrors.ErrUploadRejected):
		writeUploadError(w, http.StatusBadRequest, "upload_rejected", err.Error())
	case errors.Is(err, uploaderrors.ErrInvalidRequest):
		writeUploadError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, uploaderrors.ErrMediaNotFound):
		writeUploadError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeUploadError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeUploadError(w, http.StatusBadRequest, "invalid_multipart", "request must be multipart form data with a file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeUploadError(w, http.StatusBadRequest, "missing_file", "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeUploadError(w, http.StatusBadRequest, "unreadable_file", "file part could not be read")
		return
	}

	resp, err := s.uploads.Handler.UploadHandler(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeUploadDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	blob, err := s.uploads.Handler.FetchMediaHandler(r.Context(), r.PathValue("ref"))
	if err != nil {
		writeUploadDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", blob.MIMEType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}
