package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	bannertransport "vitrine/contexts/merchandising/banner-service/transport/http"
	"vitrine/contexts/merchandising/banner-viewer/ports"
)

const defaultTimeout = 5 * time.Second

// Source fetches canonical records over the banner HTTP API with a bounded
// timeout, so a renderer never blocks indefinitely on the network.
type Source struct {
	BaseURL string
	Client  *http.Client
}

func NewSource(baseURL string) *Source {
	return &Source{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (s *Source) FetchRecord(ctx context.Context, slot entities.Slot) (entities.Record, bool, error) {
	endpoint := s.BaseURL + "/banners?ids=" + url.QueryEscape(string(slot))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.Record{}, false, err
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return entities.Record{}, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entities.Record{}, false, fmt.Errorf("banner fetch returned status %d", resp.StatusCode)
	}

	var payload bannertransport.ListBannersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return entities.Record{}, false, err
	}
	for _, data := range payload.Data {
		if data.ID != string(slot) {
			continue
		}
		return recordFromData(data), true, nil
	}
	return entities.Record{}, false, nil
}

func recordFromData(data bannertransport.BannerData) entities.Record {
	updatedAt, _ := time.Parse(time.RFC3339, data.UpdatedAt)
	mode := entities.GeometryMode(data.GeometryMode)
	if mode != entities.GeometryAbsolute {
		mode = entities.GeometryRelative
	}
	return entities.Record{
		Slot:          entities.Slot(data.ID),
		ImageRef:      data.ImageRef,
		MIMEType:      data.MIMEType,
		NaturalWidth:  data.NaturalWidth,
		NaturalHeight: data.NaturalHeight,
		Geometry: entities.Geometry{
			Mode:       mode,
			Scale:      data.Scale,
			TranslateX: data.TranslateX,
			TranslateY: data.TranslateY,
			CropX:      data.CropX,
			CropY:      data.CropY,
			CropWidth:  data.CropWidth,
			CropHeight: data.CropHeight,
			Rotation:   data.Rotation,
		},
		Version:   data.Version,
		Published: data.Published,
		UpdatedAt: updatedAt,
	}
}

var _ ports.RecordSource = (*Source)(nil)
