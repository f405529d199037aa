package httpserver

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	bannerservice "vitrine/contexts/merchandising/banner-service"
	bannerports "vitrine/contexts/merchandising/banner-service/ports"
	bannerhttp "vitrine/contexts/merchandising/banner-service/transport/http"
	mediauploadservice "vitrine/contexts/merchandising/media-upload-service"
	"vitrine/internal/platform/messaging"
)

func newTestServer() (*Server, *messaging.Broadcast) {
	bus := messaging.NewBroadcast(nil)
	server := New(
		bannerservice.NewInMemoryModule(nil),
		mediauploadservice.NewInMemoryModule(nil),
		bus,
		nil,
		":0",
	)
	return server, bus
}

func doJSON(t *testing.T, server *Server, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response body %q: %v", rr.Body.String(), err)
	}
}

func updateRequest() bannerhttp.UpdateBannerRequest {
	return bannerhttp.UpdateBannerRequest{
		ImageRef:      "/media/abc123.jpg",
		MIMEType:      "image/jpeg",
		NaturalWidth:  1920,
		NaturalHeight: 1080,
		Scale:         1.2,
	}
}

func TestListBannersRequiresIDs(t *testing.T) {
	server, _ := newTestServer()

	rr := doJSON(t, server, http.MethodGet, "/banners", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without ids, got %d", rr.Code)
	}
	var errResp bannerhttp.ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Code != "missing_ids" {
		t.Fatalf("expected missing_ids code, got %q", errResp.Code)
	}
}

func TestListBannersOmitsUnknownIDs(t *testing.T) {
	server, _ := newTestServer()

	rr := doJSON(t, server, http.MethodGet, "/banners?ids=hero,sidebar,hot", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp bannerhttp.ListBannersResponse
	decodeBody(t, rr, &resp)
	if len(resp.Data) != 2 {
		t.Fatalf("expected hero and hot only, got %d records", len(resp.Data))
	}
	if resp.Data[0].ID != "hero" || resp.Data[1].ID != "hot" {
		t.Fatalf("unexpected ids %q, %q", resp.Data[0].ID, resp.Data[1].ID)
	}
	if resp.Data[0].Transform == "" {
		t.Fatal("expected computed transform in the response")
	}
}

func TestUpdateBannerAdvancesVersionAndClamps(t *testing.T) {
	server, _ := newTestServer()

	req := updateRequest()
	req.Scale = 0.1

	rr := doJSON(t, server, http.MethodPut, "/banners/hero", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp bannerhttp.BannerResponse
	decodeBody(t, rr, &resp)
	if resp.Data.Version != 2 {
		t.Fatalf("expected version 2 after updating the seed, got %d", resp.Data.Version)
	}
	want := 650.0 / 1080.0
	if math.Abs(resp.Data.Scale-want) > 1e-9 {
		t.Fatalf("expected scale clamped to %f, got %f", want, resp.Data.Scale)
	}
	if !resp.Data.Published {
		t.Fatal("expected updated banner to be published")
	}

	// The stored record reflects the update on the next read.
	rr = doJSON(t, server, http.MethodGet, "/banners?ids=hero", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on re-read, got %d", rr.Code)
	}
	var list bannerhttp.ListBannersResponse
	decodeBody(t, rr, &list)
	if len(list.Data) != 1 || list.Data[0].Version != 2 {
		t.Fatalf("expected re-read at version 2, got %+v", list.Data)
	}
}

func TestUpdateBannerRejectsUnknownSlot(t *testing.T) {
	server, _ := newTestServer()

	rr := doJSON(t, server, http.MethodPut, "/banners/sidebar", updateRequest())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var errResp bannerhttp.ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Code != "invalid_id" {
		t.Fatalf("expected invalid_id code, got %q", errResp.Code)
	}
}

func TestUpdateBannerRejectsBadPayload(t *testing.T) {
	server, _ := newTestServer()

	req := updateRequest()
	req.ImageRef = ""
	rr := doJSON(t, server, http.MethodPut, "/banners/hero", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var errResp bannerhttp.ErrorResponse
	decodeBody(t, rr, &errResp)
	if errResp.Code != "invalid_payload" {
		t.Fatalf("expected invalid_payload code, got %q", errResp.Code)
	}

	req = updateRequest()
	req.GeometryMode = "diagonal"
	rr = doJSON(t, server, http.MethodPut, "/banners/hero", req)
	decodeBody(t, rr, &errResp)
	if rr.Code != http.StatusBadRequest || errResp.Code != "invalid_payload" {
		t.Fatalf("expected 400 invalid_payload for unknown mode, got %d %q", rr.Code, errResp.Code)
	}
}

func TestUpdateBannerRejectsMalformedJSON(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPut, "/banners/hero", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rr.Code)
	}
}

func TestUpdateBannerBroadcastsChange(t *testing.T) {
	server, bus := newTestServer()

	var updates []bannerports.BannerUpdatedPayload
	bus.Subscribe(bannerports.TopicBannerUpdated, func(env bannerports.EventEnvelope) {
		if payload, ok := bannerports.DecodeBannerUpdated(env); ok {
			updates = append(updates, payload)
		}
	})

	rr := doJSON(t, server, http.MethodPut, "/banners/hot", updateRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	if len(updates) != 1 {
		t.Fatalf("expected one broadcast per successful update, got %d", len(updates))
	}
	if updates[0].ID != "hot" || updates[0].Version != 2 {
		t.Fatalf("unexpected payload %+v", updates[0])
	}
}

func TestFailedUpdateDoesNotBroadcast(t *testing.T) {
	server, bus := newTestServer()

	var published int
	bus.Subscribe(bannerports.TopicBannerUpdated, func(bannerports.EventEnvelope) { published++ })

	rr := doJSON(t, server, http.MethodPut, "/banners/sidebar", updateRequest())
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if published != 0 {
		t.Fatalf("rejected update must not broadcast, got %d events", published)
	}
}
