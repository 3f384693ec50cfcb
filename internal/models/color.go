package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is the canonical average color of an image
type Color struct {
	R uint8
	G uint8
	B uint8
}

type colorForm int

const (
	formUnknown colorForm = iota
	formBracket           // [r,g,b]
	formRGB               // RGB(r,g,b)
)

// ParseColor normalizes the textual color forms sent by the analysis service.
// "RGB(10,20,30)" and "[10,20,30]" yield the same Color. Anything that is not
// one of the two forms with exactly three numeric components yields black.
func ParseColor(s string) Color {
	form, body := classifyColor(s)
	if form == formUnknown {
		return Color{}
	}

	parts := strings.Split(body, ",")
	if len(parts) != 3 {
		return Color{}
	}

	var c [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || math.IsNaN(v) {
			return Color{}
		}
		c[i] = clampChannel(v)
	}

	return Color{R: c[0], G: c[1], B: c[2]}
}

func classifyColor(s string) (colorForm, string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		return formBracket, s[1 : len(s)-1]
	case len(s) >= 5 && strings.EqualFold(s[:4], "rgb(") && strings.HasSuffix(s, ")"):
		return formRGB, s[4 : len(s)-1]
	default:
		return formUnknown, ""
	}
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// String returns the canonical RGB(r, g, b) form
func (c Color) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the #rrggbb form
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalJSON writes the canonical string form
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either textual form or a bare array of three numbers.
// Unrecognized values decode to black instead of failing the whole payload.
func (c *Color) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = ParseColor(s)
		return nil
	}

	var triple []float64
	if err := json.Unmarshal(data, &triple); err == nil && len(triple) == 3 {
		*c = Color{R: clampChannel(triple[0]), G: clampChannel(triple[1]), B: clampChannel(triple[2])}
		return nil
	}

	*c = Color{}
	return nil
}
