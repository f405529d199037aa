package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"vitrine/contexts/merchandising/banner-service/application"
	"vitrine/contexts/merchandising/banner-service/domain/entities"
	domainerrors "vitrine/contexts/merchandising/banner-service/domain/errors"
	"vitrine/contexts/merchandising/banner-service/domain/geometry"
	"vitrine/contexts/merchandising/banner-service/ports"
	httptransport "vitrine/contexts/merchandising/banner-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetBannersHandler(ctx context.Context, ids []string) (httptransport.ListBannersResponse, error) {
	records, err := h.Service.Get(ctx, ids)
	if err != nil {
		return httptransport.ListBannersResponse{}, err
	}
	resp := httptransport.ListBannersResponse{
		Status: "success",
		Data:   make([]httptransport.BannerData, 0, len(records)),
	}
	for _, record := range records {
		resp.Data = append(resp.Data, toBannerData(record))
	}
	return resp, nil
}

func (h Handler) UpdateBannerHandler(ctx context.Context, id string, req httptransport.UpdateBannerRequest) (httptransport.BannerResponse, error) {
	g, err := geometryFromRequest(req)
	if err != nil {
		return httptransport.BannerResponse{}, err
	}
	record, err := h.Service.Update(ctx, strings.TrimSpace(id), ports.UpdateInput{
		ImageRef:      strings.TrimSpace(req.ImageRef),
		MIMEType:      strings.TrimSpace(req.MIMEType),
		NaturalWidth:  req.NaturalWidth,
		NaturalHeight: req.NaturalHeight,
		Geometry:      g,
	})
	if err != nil {
		return httptransport.BannerResponse{}, err
	}
	return httptransport.BannerResponse{
		Status: "success",
		Data:   toBannerData(record),
	}, nil
}

func geometryFromRequest(req httptransport.UpdateBannerRequest) (entities.Geometry, error) {
	mode := entities.GeometryMode(strings.TrimSpace(req.GeometryMode))
	switch mode {
	case "":
		mode = entities.GeometryRelative
	case entities.GeometryRelative, entities.GeometryAbsolute:
	default:
		return entities.Geometry{}, domainerrors.ErrInvalidPayload
	}
	return entities.Geometry{
		Mode:       mode,
		Scale:      req.Scale,
		TranslateX: req.TranslateX,
		TranslateY: req.TranslateY,
		CropX:      req.CropX,
		CropY:      req.CropY,
		CropWidth:  req.CropWidth,
		CropHeight: req.CropHeight,
		Rotation:   req.Rotation,
	}, nil
}

func toBannerData(record entities.Record) httptransport.BannerData {
	return httptransport.BannerData{
		ID:            string(record.Slot),
		ImageRef:      record.ImageRef,
		MIMEType:      record.MIMEType,
		NaturalWidth:  record.NaturalWidth,
		NaturalHeight: record.NaturalHeight,
		GeometryMode:  string(record.Geometry.Mode),
		Scale:         record.Geometry.Scale,
		TranslateX:    record.Geometry.TranslateX,
		TranslateY:    record.Geometry.TranslateY,
		CropX:         record.Geometry.CropX,
		CropY:         record.Geometry.CropY,
		CropWidth:     record.Geometry.CropWidth,
		CropHeight:    record.Geometry.CropHeight,
		Rotation:      record.Geometry.Rotation,
		Transform:     geometry.Compute(record.Geometry).CSS(),
		Version:       record.Version,
		Published:     record.Published,
		UpdatedAt:     record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
