package render

import (
	"math"

	"github.com/aretw0/canopy/pkg/domain"
)

// Host defaults for absent style fields.
const (
	DefaultFontSize     = 16.0
	DefaultForeground   = "#000000"
	DefaultBackground   = "#FFFFFF"
	DefaultPadding      = 0.0
	DefaultCornerRadius = 0.0
	DefaultAlignment    = domain.AlignCenter

	// MaxLength bounds every resolved length, in points.
	MaxLength = 4096.0
)

// Resolved is a Style with every default applied.
type Resolved struct {
	FontSize     float64
	Weight       domain.FontWeight
	Foreground   domain.Color
	Background   domain.Color
	Padding      float64
	Spacing      float64
	CornerRadius float64
	Width        *float64
	Height       *float64
	Alignment    domain.Alignment

	// HasForeground and HasBackground report whether the colour was explicit.
	HasForeground bool
	HasBackground bool
}

// Resolve fills in host defaults. A nil style resolves to the defaults.
func Resolve(s *domain.Style) Resolved {
	r := Resolved{
		FontSize:     DefaultFontSize,
		Weight:       s.Weight(),
		Foreground:   domain.ParseColor(DefaultForeground),
		Background:   domain.ParseColor(DefaultBackground),
		Padding:      DefaultPadding,
		CornerRadius: DefaultCornerRadius,
		Alignment:    DefaultAlignment,
	}
	if s == nil {
		return r
	}
	if s.FontSize != nil {
		r.FontSize = length(*s.FontSize)
	}
	if s.ForegroundColor != nil {
		r.Foreground = domain.ParseColor(*s.ForegroundColor)
		r.HasForeground = true
	}
	if s.BackgroundColor != nil {
		r.Background = domain.ParseColor(*s.BackgroundColor)
		r.HasBackground = true
	}
	if s.Padding != nil {
		r.Padding = length(*s.Padding)
	}
	if s.Spacing != nil {
		r.Spacing = length(*s.Spacing)
	}
	if s.CornerRadius != nil {
		r.CornerRadius = length(*s.CornerRadius)
	}
	if s.Alignment != nil {
		r.Alignment = *s.Alignment
	}
	r.Width, r.Height = s.Width, s.Height
	return r
}

// length clamps a decoded length into [0, MaxLength]. Negative and
// non-finite values collapse to 0.
func length(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, MaxLength)
}

// IsHeavy reports whether the weight should be drawn bold on devices with
// only two weights.
func (r Resolved) IsHeavy() bool {
	switch r.Weight {
	case domain.FontWeightSemibold, domain.FontWeightBold, domain.FontWeightHeavy, domain.FontWeightBlack:
		return true
	}
	return false
}

// IsLight reports whether the weight should be drawn faint.
func (r Resolved) IsLight() bool {
	switch r.Weight {
	case domain.FontWeightUltraLight, domain.FontWeightThin, domain.FontWeightLight:
		return true
	}
	return false
}
