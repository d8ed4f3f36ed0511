// Package symbols maps a component's free-form subType to the glyph drawn
// for it. The mapping is an ordered table of substring predicates; the
// first matching entry wins.
package symbols

import (
	"fmt"
	"strings"
)

// Glyph identifies a schematic symbol.
type Glyph string

const (
	GlyphSource         Glyph = "source"
	GlyphResistorZigZag Glyph = "resistor_zigzag"
	GlyphResistorBox    Glyph = "resistor_box"
	GlyphLED            Glyph = "led"
	GlyphSwitch         Glyph = "switch"
	GlyphFuse           Glyph = "fuse"
	GlyphGround         Glyph = "ground"
	GlyphPlaceholder    Glyph = "placeholder"
)

// ResistorStyle selects between the two resistor drawing conventions.
type ResistorStyle string

const (
	StyleIEEE ResistorStyle = "IEEE_ZIGZAG"
	StyleIEC  ResistorStyle = "IEC_BOX"
)

// ParseStyle accepts the canonical names plus the short forms "ieee" and "iec".
func ParseStyle(s string) (ResistorStyle, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "IEEE", string(StyleIEEE):
		return StyleIEEE, nil
	case "IEC", string(StyleIEC):
		return StyleIEC, nil
	}
	return "", fmt.Errorf("symbols: unknown resistor style %q", s)
}

// Standard names the drawing standard for display.
func (s ResistorStyle) Standard() string {
	if s == StyleIEC {
		return "IEC 60617"
	}
	return "IEEE 315"
}

// Entry is one row of the glyph table.
type Entry struct {
	Keywords []string
	Glyph    func(ResistorStyle) Glyph
}

func fixed(g Glyph) func(ResistorStyle) Glyph {
	return func(ResistorStyle) Glyph { return g }
}

func resistor(s ResistorStyle) Glyph {
	if s == StyleIEC {
		return GlyphResistorBox
	}
	return GlyphResistorZigZag
}

// Table is evaluated top to bottom. New part families are added as rows.
var Table = []Entry{
	{Keywords: []string{"battery", "source"}, Glyph: fixed(GlyphSource)},
	{Keywords: []string{"resistor"}, Glyph: resistor},
	{Keywords: []string{"led", "light"}, Glyph: fixed(GlyphLED)},
	{Keywords: []string{"switch", "relay"}, Glyph: fixed(GlyphSwitch)},
	{Keywords: []string{"fuse", "breaker"}, Glyph: fixed(GlyphFuse)},
	{Keywords: []string{"ground"}, Glyph: fixed(GlyphGround)},
}

// For returns the glyph for subType under the given resistor style.
func For(subType string, style ResistorStyle) Glyph {
	return lookup(Table, subType, style)
}

func lookup(table []Entry, subType string, style ResistorStyle) Glyph {
	st := strings.ToLower(subType)
	for _, e := range table {
		for _, kw := range e.Keywords {
			if strings.Contains(st, kw) {
				return e.Glyph(style)
			}
		}
	}
	return GlyphPlaceholder
}
