package producer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// hclCircuit is the shape of a circuit file:
//
//	component "bat" {
//	  type     = "SOURCE"
//	  sub_type = "Battery"
//	  label    = "B1"
//	  value    = "12V"
//	  position = [50, 150]
//	}
//	connection "c1" {
//	  from = "bat"
//	  to   = "fuse"
//	}
type hclCircuit struct {
	Components  []hclComponent  `hcl:"component,block"`
	Connections []hclConnection `hcl:"connection,block"`
}

type hclComponent struct {
	ID          string    `hcl:"id,label"`
	Type        string    `hcl:"type"`
	SubType     string    `hcl:"sub_type"`
	Label       string    `hcl:"label,optional"`
	Value       string    `hcl:"value,optional"`
	Description string    `hcl:"description,optional"`
	Position    []float64 `hcl:"position,optional"`
}

type hclConnection struct {
	ID   string `hcl:"id,label"`
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

// evalContext exposes the default layout grid to circuit files, so
// positions can be written as [layout.origin_x + 2 * layout.step_x, layout.row_y].
var evalContext = &hcl.EvalContext{
	Variables: map[string]cty.Value{
		"layout": cty.ObjectVal(map[string]cty.Value{
			"origin_x": cty.NumberIntVal(schematic.LayoutOriginX),
			"step_x":   cty.NumberIntVal(schematic.LayoutStepX),
			"row_y":    cty.NumberIntVal(schematic.LayoutRowY),
		}),
	},
}

// DecodeHCL parses circuit source. filename selects the syntax by
// extension (.hcl or .json) and is used in diagnostics.
func DecodeHCL(filename string, src []byte) (schematic.Graph, error) {
	var c hclCircuit
	if err := hclsimple.Decode(filename, src, evalContext, &c); err != nil {
		return schematic.Graph{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	g := schematic.Graph{
		Components:  make([]schematic.Component, 0, len(c.Components)),
		Connections: make([]schematic.Connection, 0, len(c.Connections)),
	}
	for _, hc := range c.Components {
		comp := schematic.Component{
			ID:          hc.ID,
			Type:        schematic.Role(hc.Type),
			SubType:     hc.SubType,
			Label:       hc.Label,
			Value:       hc.Value,
			Description: hc.Description,
		}
		switch len(hc.Position) {
		case 0:
		case 2:
			comp.Position = &schematic.Position{X: hc.Position[0], Y: hc.Position[1]}
		default:
			return schematic.Graph{}, fmt.Errorf("%w: component %q: position needs 2 coordinates, got %d",
				ErrMalformed, hc.ID, len(hc.Position))
		}
		g.Components = append(g.Components, comp)
	}
	for _, hc := range c.Connections {
		g.Connections = append(g.Connections, schematic.Connection{ID: hc.ID, FromID: hc.From, ToID: hc.To})
	}
	g = schematic.Normalize(g)
	if err := schematic.Validate(g); err != nil {
		return schematic.Graph{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return g, nil
}

// ErrOutsideDir rejects circuit paths that would leave HCLFile.Dir.
var ErrOutsideDir = errors.New("producer: path escapes circuit directory")

// HCLFile is an offline producer: the description names a circuit file.
// With Dir set, the name must be a local path under Dir and is opened
// through an os.Root, so neither ".." nor symlinks can leave it. An empty
// Dir reads any path.
type HCLFile struct {
	Dir string
}

func (h HCLFile) Generate(ctx context.Context, description string) (schematic.Graph, error) {
	if err := CheckDescription(description); err != nil {
		return schematic.Graph{}, permanent("hcl", err)
	}
	if err := ctx.Err(); err != nil {
		return schematic.Graph{}, permanent("hcl", err)
	}
	src, err := h.read(description)
	if err != nil {
		return schematic.Graph{}, permanent("hcl", err)
	}
	g, err := DecodeHCL(description, src)
	if err != nil {
		return schematic.Graph{}, permanent("hcl", err)
	}
	return g, nil
}

func (h HCLFile) read(name string) ([]byte, error) {
	if h.Dir == "" {
		return os.ReadFile(name)
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: %q", ErrOutsideDir, name)
	}
	root, err := os.OpenRoot(h.Dir)
	if err != nil {
		return nil, err
	}
	defer root.Close()
	f, err := root.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
