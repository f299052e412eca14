package domain

// Style holds optional presentation attributes. A nil field means the host
// default applies, never the zero value.
type Style struct {
	Padding         *float64   `json:"padding,omitempty" yaml:"padding,omitempty"`
	Spacing         *float64   `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	BackgroundColor *string    `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	ForegroundColor *string    `json:"foregroundColor,omitempty" yaml:"foregroundColor,omitempty"`
	CornerRadius    *float64   `json:"cornerRadius,omitempty" yaml:"cornerRadius,omitempty"`
	FontSize        *float64   `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontWeight      *int       `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty"`
	Width           *float64   `json:"width,omitempty" yaml:"width,omitempty"`
	Height          *float64   `json:"height,omitempty" yaml:"height,omitempty"`
	Alignment       *Alignment `json:"alignment,omitempty" yaml:"alignment,omitempty"`
}

// Weight maps the numeric font weight to its named weight.
func (s *Style) Weight() FontWeight {
	if s == nil {
		return FontWeightRegular
	}
	return FontWeightFor(s.FontWeight)
}

// FontWeight is a named font weight.
type FontWeight string

const (
	FontWeightUltraLight FontWeight = "ultraLight"
	FontWeightThin       FontWeight = "thin"
	FontWeightLight      FontWeight = "light"
	FontWeightRegular    FontWeight = "regular"
	FontWeightMedium     FontWeight = "medium"
	FontWeightSemibold   FontWeight = "semibold"
	FontWeightBold       FontWeight = "bold"
	FontWeightHeavy      FontWeight = "heavy"
	FontWeightBlack      FontWeight = "black"
)

var numericWeights = map[int]FontWeight{
	100: FontWeightUltraLight,
	200: FontWeightThin,
	300: FontWeightLight,
	400: FontWeightRegular,
	500: FontWeightMedium,
	600: FontWeightSemibold,
	700: FontWeightBold,
	800: FontWeightHeavy,
	900: FontWeightBlack,
}

// FontWeightFor maps 100..900 in steps of 100 to a named weight.
// Absent and unmapped values fall back to regular.
func FontWeightFor(w *int) FontWeight {
	if w == nil {
		return FontWeightRegular
	}
	if fw, ok := numericWeights[*w]; ok {
		return fw
	}
	return FontWeightRegular
}

// IsMappedFontWeight reports whether w has an exact entry in the weight table.
func IsMappedFontWeight(w int) bool {
	_, ok := numericWeights[w]
	return ok
}

// ParseFontWeightName maps a weight name such as "bold" to a FontWeight.
// Unknown names fall back to regular.
func ParseFontWeightName(name string) FontWeight {
	fw := FontWeight(name)
	for _, known := range numericWeights {
		if known == fw {
			return fw
		}
	}
	return FontWeightRegular
}
