package broadcastfeed

import (
	bannerports "vitrine/contexts/merchandising/banner-service/ports"
	"vitrine/contexts/merchandising/banner-viewer/ports"
	"vitrine/internal/platform/messaging"
)

// Feed adapts the process-local broadcast bus to the viewer's sync feed
// port. A nil bus yields a no-op unsubscribe, which consumers treat as
// "no live sync" and fall back to manual refresh.
type Feed struct {
	Bus *messaging.Broadcast
}

func (f Feed) SubscribeBannerUpdates(handler func(ports.BannerUpdate)) func() {
	if f.Bus == nil {
		return func() {}
	}
	subscription := f.Bus.Subscribe(bannerports.TopicBannerUpdated, func(envelope bannerports.EventEnvelope) {
		payload, ok := bannerports.DecodeBannerUpdated(envelope)
		if !ok {
			return
		}
		handler(ports.BannerUpdate{
			ID:      payload.ID,
			Version: payload.Version,
		})
	})
	return subscription.Close
}

var _ ports.SyncFeed = Feed{}
