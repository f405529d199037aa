package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"vitrine/contexts/merchandising/media-upload-service/application"
	"vitrine/contexts/merchandising/media-upload-service/ports"
	httptransport "vitrine/contexts/merchandising/media-upload-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) UploadHandler(ctx context.Context, filename, mimeType string, data []byte) (httptransport.UploadResponse, error) {
	result, err := h.Service.Upload(ctx, ports.UploadInput{
		Filename: strings.TrimSpace(filename),
		MIMEType: strings.TrimSpace(mimeType),
		Data:     data,
	})
	if err != nil {
		return httptransport.UploadResponse{}, err
	}
	resp := httptransport.UploadResponse{Status: "success"}
	resp.Data.URL = result.URL
	resp.Data.Width = result.Width
	resp.Data.Height = result.Height
	resp.Data.MIME = result.MIMEType
	resp.Data.Hash = result.Hash
	resp.Data.Size = result.Size
	return resp, nil
}

func (h Handler) FetchMediaHandler(ctx context.Context, ref string) (ports.Blob, error) {
	return h.Service.Fetch(ctx, strings.TrimSpace(ref))
}
