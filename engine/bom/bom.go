// Package bom projects a schematic into a bill of materials and writes it as
// CSV. Fields are quoted per RFC 4180 (encoding/csv), so labels or
// descriptions containing commas, quotes or newlines survive a round trip.
package bom

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// Filename is the suggested download name for the CSV export.
const Filename = "bill_of_materials.csv"

// Header is the fixed first CSV row.
var Header = []string{"Part Name", "Type", "Specification", "Description"}

const (
	missingSpecCSV   = "N/A"
	missingSpecTable = "-"
)

// Row is one component in the bill of materials.
type Row struct {
	PartName      string `json:"partName"`
	Type          string `json:"type"`
	Specification string `json:"specification"`
	Description   string `json:"description"`
}

// Rows returns one row per component in graph order. An unspecified value
// becomes "N/A".
func Rows(g schematic.Graph) []Row {
	rows := make([]Row, 0, len(g.Components))
	for _, c := range g.Components {
		spec := c.Value
		if spec == "" {
			spec = missingSpecCSV
		}
		rows = append(rows, Row{
			PartName:      c.Label,
			Type:          c.SubType,
			Specification: spec,
			Description:   c.Description,
		})
	}
	return rows
}

// TableRows is the on-screen projection (Ref, Component, Spec) where an
// unspecified value is shown as "-".
func TableRows(g schematic.Graph) [][3]string {
	out := make([][3]string, 0, len(g.Components))
	for _, c := range g.Components {
		spec := c.Value
		if spec == "" {
			spec = missingSpecTable
		}
		out = append(out, [3]string{c.Label, c.SubType, spec})
	}
	return out
}

// WriteCSV writes the header and one record per component.
func WriteCSV(w io.Writer, g schematic.Graph) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("bom: write header: %w", err)
	}
	for _, r := range Rows(g) {
		if err := cw.Write([]string{r.PartName, r.Type, r.Specification, r.Description}); err != nil {
			return fmt.Errorf("bom: write row %q: %w", r.PartName, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("bom: flush: %w", err)
	}
	return nil
}
