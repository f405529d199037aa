package geometry

import (
	"fmt"
	"math"
	"strings"

	"vitrine/contexts/merchandising/banner-service/domain/entities"
)

// minRenderScale floors the relative-mode zoom so a degenerate stored scale
// can never collapse the transform to zero.
const minRenderScale = 0.1

// Unit is the length unit of a computed transform's translation.
type Unit string

const (
	UnitPercent Unit = "%"
	UnitPixel   Unit = "px"
)

// Transform is the affine transform a renderer applies to the source media.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
	Rotation   float64
	Unit       Unit
}

// CSS renders the transform as a CSS transform value.
func (t Transform) CSS() string {
	var b strings.Builder
	switch t.Unit {
	case UnitPixel:
		fmt.Fprintf(&b, "translate(%.2fpx, %.2fpx) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale)
	default:
		fmt.Fprintf(&b, "translate(%.4f%%, %.4f%%) scale(%.4f)", t.TranslateX, t.TranslateY, t.Scale)
	}
	if t.Rotation != 0 {
		fmt.Fprintf(&b, " rotate(%.2fdeg)", t.Rotation)
	}
	return b.String()
}

// MinScale returns the smallest zoom at which media of the given natural size
// still covers the full viewport. Non-positive dimensions yield 1 so callers
// always get a usable factor.
func MinScale(naturalWidth, naturalHeight int) float64 {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return 1
	}
	return math.Min(
		float64(entities.ViewportWidth)/float64(naturalWidth),
		float64(entities.ViewportHeight)/float64(naturalHeight),
	)
}

// ClampScale raises scale to the viewport-cover floor for the given media.
func ClampScale(scale float64, naturalWidth, naturalHeight int) float64 {
	return math.Max(scale, MinScale(naturalWidth, naturalHeight))
}

// MaxTranslate returns the largest |offset| (as a fraction of half the scaled
// dimension) that keeps the crop window inside the scaled image. Zero when the
// scaled image does not exceed the viewport along this axis.
func MaxTranslate(scale float64, natural, viewport int) float64 {
	scaled := scale * float64(natural)
	if scaled <= float64(viewport) || scaled <= 0 {
		return 0
	}
	return (scaled - float64(viewport)) / scaled
}

// ClampTranslate clamps a normalized offset into [-max, max].
func ClampTranslate(translate, max float64) float64 {
	if translate > max {
		return max
	}
	if translate < -max {
		return -max
	}
	return translate
}

// Clamp silently corrects a relative geometry into the valid range for the
// given media: the scale is raised to the cover floor first, then both offsets
// are clamped against the corrected scale. Absolute geometries pass through
// untouched; their crop box is already pixel-exact.
func Clamp(g entities.Geometry, naturalWidth, naturalHeight int) entities.Geometry {
	if g.Mode != entities.GeometryRelative {
		return g
	}
	g.Scale = ClampScale(g.Scale, naturalWidth, naturalHeight)
	g.TranslateX = ClampTranslate(g.TranslateX, MaxTranslate(g.Scale, naturalWidth, entities.ViewportWidth))
	g.TranslateY = ClampTranslate(g.TranslateY, MaxTranslate(g.Scale, naturalHeight, entities.ViewportHeight))
	return g
}

// Compute maps a geometry onto the affine transform the renderer applies.
// Pure and deterministic: identical inputs always yield identical output.
func Compute(g entities.Geometry) Transform {
	if g.Mode == entities.GeometryAbsolute {
		return computeAbsolute(g)
	}
	return Transform{
		TranslateX: g.TranslateX * 50,
		TranslateY: g.TranslateY * 50,
		Scale:      math.Max(minRenderScale, g.Scale),
		Unit:       UnitPercent,
	}
}

func computeAbsolute(g entities.Geometry) Transform {
	effective := math.Max(minRenderScale, g.Scale)
	if g.CropWidth > 0 && g.CropHeight > 0 {
		cover := math.Max(
			float64(entities.ViewportWidth)/g.CropWidth,
			float64(entities.ViewportHeight)/g.CropHeight,
		)
		effective = cover * g.Scale
	}
	return Transform{
		TranslateX: -g.CropX * effective,
		TranslateY: -g.CropY * effective,
		Scale:      effective,
		Rotation:   g.Rotation,
		Unit:       UnitPixel,
	}
}
