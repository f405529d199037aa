package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
	bannertransport "vitrine/contexts/merchandising/banner-service/transport/http"
)

func TestFetchRecordDecodesListResponse(t *testing.T) {
	updatedAt := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/banners" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "hero" {
			t.Errorf("expected ids=hero, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bannertransport.ListBannersResponse{
			Status: "success",
			Data: []bannertransport.BannerData{{
				ID:            "hero",
				ImageRef:      "/media/abc123.jpg",
				MIMEType:      "image/jpeg",
				NaturalWidth:  1920,
				NaturalHeight: 1080,
				GeometryMode:  "relative",
				Scale:         1.2,
				TranslateX:    0.1,
				Version:       7,
				Published:     true,
				UpdatedAt:     updatedAt.Format(time.RFC3339),
			}},
		})
	}))
	defer server.Close()

	source := NewSource(server.URL + "/")
	record, found, err := source.FetchRecord(context.Background(), entities.SlotHero)
	if err != nil || !found {
		t.Fatalf("expected record, got found=%v err=%v", found, err)
	}
	if record.Slot != entities.SlotHero || record.Version != 7 {
		t.Fatalf("unexpected record %+v", record)
	}
	if record.Geometry.Mode != entities.GeometryRelative || record.Geometry.Scale != 1.2 {
		t.Fatalf("unexpected geometry %+v", record.Geometry)
	}
	if !record.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("expected updated at %v, got %v", updatedAt, record.UpdatedAt)
	}
}

func TestFetchRecordAbsentSlotIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bannertransport.ListBannersResponse{Status: "success", Data: []bannertransport.BannerData{}})
	}))
	defer server.Close()

	source := NewSource(server.URL)
	_, found, err := source.FetchRecord(context.Background(), entities.SlotHot)
	if err != nil {
		t.Fatalf("absence must not error: %v", err)
	}
	if found {
		t.Fatal("expected no record")
	}
}

func TestFetchRecordNon200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	source := NewSource(server.URL)
	_, _, err := source.FetchRecord(context.Background(), entities.SlotHero)
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestFetchRecordUnknownModeDefaultsToRelative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(bannertransport.ListBannersResponse{
			Status: "success",
			Data:   []bannertransport.BannerData{{ID: "hero", GeometryMode: "mystery", Scale: 1}},
		})
	}))
	defer server.Close()

	source := NewSource(server.URL)
	record, found, err := source.FetchRecord(context.Background(), entities.SlotHero)
	if err != nil || !found {
		t.Fatalf("expected record, got found=%v err=%v", found, err)
	}
	if record.Geometry.Mode != entities.GeometryRelative {
		t.Fatalf("expected relative default, got %q", record.Geometry.Mode)
	}
}
