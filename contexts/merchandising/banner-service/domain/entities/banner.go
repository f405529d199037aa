package entities

import (
	"strings"
	"time"
)

// Fixed logical viewport every banner is cropped to fit.
const (
	ViewportWidth  = 1920
	ViewportHeight = 650
)

// Slot is one of the fixed homepage banner placements. Slots are seeded at
// startup and never created through the API.
type Slot string

const (
	SlotHero   Slot = "hero"
	SlotHot    Slot = "hot"
	SlotFooter Slot = "footer"
)

// AllSlots lists the seeded placements in display order.
func AllSlots() []Slot {
	return []Slot{SlotHero, SlotHot, SlotFooter}
}

// ParseSlot validates a raw slot identifier.
func ParseSlot(raw string) (Slot, bool) {
	switch Slot(strings.TrimSpace(raw)) {
	case SlotHero:
		return SlotHero, true
	case SlotHot:
		return SlotHot, true
	case SlotFooter:
		return SlotFooter, true
	default:
		return "", false
	}
}

// GeometryMode tags which crop representation a Geometry carries. The tag is
// persisted with the record; consumers never infer the mode from value ranges.
type GeometryMode string

const (
	// GeometryRelative carries a zoom factor plus offsets normalized to
	// [-1, 1] as fractions of half the scaled image dimension.
	GeometryRelative GeometryMode = "relative"
	// GeometryAbsolute carries a legacy pixel-space crop box with optional
	// rotation. Only pre-migration records use it.
	GeometryAbsolute GeometryMode = "absolute"
)

// Geometry describes which part of the source media is visible in the
// viewport, in one of the two tagged representations.
type Geometry struct {
	Mode GeometryMode

	// Relative representation.
	Scale      float64
	TranslateX float64
	TranslateY float64

	// Absolute pixel representation.
	CropX      float64
	CropY      float64
	CropWidth  float64
	CropHeight float64
	Rotation   float64
}

// Record is the canonical server-held banner for one slot.
type Record struct {
	Slot          Slot
	ImageRef      string
	MIMEType      string
	NaturalWidth  int
	NaturalHeight int
	Geometry      Geometry
	Version       int64
	Published     bool
	UpdatedAt     time.Time
}

// CropConfig is the client-side cache entity mirroring the crop geometry of
// one slot. It may exist as a local override without a fetched Record and is
// resolved last-write-wins on SavedAt.
type CropConfig struct {
	Slot           Slot
	ImageRef       string
	Geometry       Geometry
	NaturalWidth   int
	NaturalHeight  int
	ViewportWidth  int
	ViewportHeight int
	SavedAt        time.Time
}
