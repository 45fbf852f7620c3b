// Package avatar models the circular profile picture crop: an optional source image plus a
// scale/translate transform applied to it when rendered.
package avatar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	MinScale  = 1.0
	MaxScale  = 4.0
	MinOffset = -100.0
	MaxOffset = 100.0

	// ZoomStep is the scale change applied per wheel event.
	ZoomStep = 0.1
	// DefaultSensitivity converts pointer pixels into offset percent while dragging.
	DefaultSensitivity = 0.5
)

var ErrNoImage = errors.New("avatar has no image")

// Transform is the crop framing, rendered as `scale(s) translate(x%, y%)`.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Identity is the transform every new image starts with.
func Identity() Transform {
	return Transform{Scale: MinScale}
}

// Clamp forces every component into range. Out-of-range values are pulled to the nearest
// bound; NaN falls back to the identity component.
func Clamp(t Transform) Transform {
	return Transform{
		Scale: clamp(t.Scale, MinScale, MaxScale, MinScale),
		X:     clamp(t.X, MinOffset, MaxOffset, 0),
		Y:     clamp(t.Y, MinOffset, MaxOffset, 0),
	}
}

func clamp(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// SetScale is the scale slider.
func (t Transform) SetScale(s float64) Transform {
	t.Scale = s
	return Clamp(t)
}

// SetOffset is the pair of x/y sliders.
func (t Transform) SetOffset(x, y float64) Transform {
	t.X, t.Y = x, y
	return Clamp(t)
}

// Zoom applies one wheel event. A negative delta (scrolling up) zooms in.
func (t Transform) Zoom(wheelDelta float64) Transform {
	switch {
	case wheelDelta < 0:
		t.Scale += ZoomStep
	case wheelDelta > 0:
		t.Scale -= ZoomStep
	}
	// drop float noise so ten steps from 1 land exactly on 2
	t.Scale = math.Round(t.Scale*1e9) / 1e9
	return Clamp(t)
}

func (t Transform) IsIdentity() bool {
	return t == Identity()
}

func (t Transform) CSS() string {
	return fmt.Sprintf("scale(%s) translate(%s%%, %s%%)", formatFloat(t.Scale), formatFloat(t.X), formatFloat(t.Y))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Avatar is either NoImage or Image.
type Avatar interface {
	isAvatar()
}

type NoImage struct{}

// Image is an avatar with a source (external URL or inline data: URI) and its framing.
type Image struct {
	Source    string
	Transform Transform
}

func (NoImage) isAvatar() {}
func (Image) isAvatar()   {}

// New starts an avatar from a freshly provided image. The transform always resets to identity.
func New(source string) Avatar {
	if source == "" {
		return NoImage{}
	}
	return Image{Source: source, Transform: Identity()}
}

// Replace swaps the image. A different source resets the framing; re-submitting the same source
// keeps it.
func Replace(a Avatar, source string) Avatar {
	if img, ok := a.(Image); ok && img.Source == source {
		return img
	}
	return New(source)
}

// TransformOf returns the framing of a, or identity when there is no image.
func TransformOf(a Avatar) Transform {
	if img, ok := a.(Image); ok {
		return img.Transform
	}
	return Identity()
}

// WithTransform reframes the image. It fails with ErrNoImage when there is nothing to frame.
func WithTransform(a Avatar, t Transform) (Avatar, error) {
	img, ok := a.(Image)
	if !ok {
		return a, ErrNoImage
	}
	img.Transform = Clamp(t)
	return img, nil
}

// Source returns the image location or "" for NoImage.
func Source(a Avatar) string {
	if img, ok := a.(Image); ok {
		return img.Source
	}
	return ""
}
