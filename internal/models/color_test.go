package models

import (
	"encoding/json"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Color
	}{
		{
			name:     "rgb form",
			input:    "RGB(10,20,30)",
			expected: Color{R: 10, G: 20, B: 30},
		},
		{
			name:     "bracket form",
			input:    "[10,20,30]",
			expected: Color{R: 10, G: 20, B: 30},
		},
		{
			name:     "whitespace and lowercase",
			input:    "  rgb( 10 , 20 , 30 ) ",
			expected: Color{R: 10, G: 20, B: 30},
		},
		{
			name:     "fractional components are rounded",
			input:    "[10.4, 19.6, 30]",
			expected: Color{R: 10, G: 20, B: 30},
		},
		{
			name:     "out of range components are clamped",
			input:    "[-5, 300, 128]",
			expected: Color{R: 0, G: 255, B: 128},
		},
		{
			name:     "two components",
			input:    "[10,20]",
			expected: Color{},
		},
		{
			name:     "four components",
			input:    "RGB(1,2,3,4)",
			expected: Color{},
		},
		{
			name:     "not a color",
			input:    "purple",
			expected: Color{},
		},
		{
			name:     "empty",
			input:    "",
			expected: Color{},
		},
		{
			name:     "non numeric component",
			input:    "[a,b,c]",
			expected: Color{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseColor(tt.input)
			if result != tt.expected {
				t.Errorf("ParseColor(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseColorFormsAgree(t *testing.T) {
	for _, c := range []Color{{}, {R: 255, G: 255, B: 255}, {R: 75, G: 0, B: 130}} {
		bracket := ParseColor("[" + itoa(c.R) + "," + itoa(c.G) + "," + itoa(c.B) + "]")
		rgb := ParseColor("RGB(" + itoa(c.R) + "," + itoa(c.G) + "," + itoa(c.B) + ")")
		if bracket != rgb || bracket != c {
			t.Errorf("forms disagree for %v: bracket=%v rgb=%v", c, bracket, rgb)
		}
		if again := ParseColor(c.String()); again != c {
			t.Errorf("canonical form of %v parsed as %v", c, again)
		}
	}
}

func TestColorHex(t *testing.T) {
	c := Color{R: 75, G: 0, B: 130}
	if c.Hex() != "#4b0082" {
		t.Errorf("Expected #4b0082, got %s", c.Hex())
	}
}

func TestColorUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Color
	}{
		{name: "rgb string", input: `"RGB(1,2,3)"`, expected: Color{R: 1, G: 2, B: 3}},
		{name: "bracket string", input: `"[1,2,3]"`, expected: Color{R: 1, G: 2, B: 3}},
		{name: "number array", input: `[1,2,3]`, expected: Color{R: 1, G: 2, B: 3}},
		{name: "garbage string", input: `"nope"`, expected: Color{}},
		{name: "object", input: `{"r":1}`, expected: Color{}},
		{name: "null", input: `null`, expected: Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Color{R: 9, G: 9, B: 9}
			if err := json.Unmarshal([]byte(tt.input), &c); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if c != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, c)
			}
		})
	}
}

func TestAnalysisResultDecoding(t *testing.T) {
	payload := `{
		"id": 3,
		"filename": "eggplant.png",
		"original_image": "b3JpZw==",
		"processed_image": "cHJvYw==",
		"avg_color": "[75, 0, 130]",
		"color_percentages": {"Black": 12.5, "Dark Purple": 40, "Light Purple": 30.25, "Brown": 5}
	}`

	var r AnalysisResult
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if r.ID != 3 || r.Filename != "eggplant.png" {
		t.Errorf("unexpected identity: %d %s", r.ID, r.Filename)
	}
	if r.AvgColor != (Color{R: 75, G: 0, B: 130}) {
		t.Errorf("unexpected avg color: %v", r.AvgColor)
	}
	if r.ColorPercentages.Get(CategoryDarkPurple) != 40 || r.ColorPercentages.LightPurple != 30.25 {
		t.Errorf("unexpected percentages: %+v", r.ColorPercentages)
	}
	if r.ColorPercentages.Get("Green") != 0 {
		t.Error("unknown category should read as zero")
	}
}

func itoa(v uint8) string {
	b, _ := json.Marshal(v)
	return string(b)
}
