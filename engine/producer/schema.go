package producer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"
)

// SystemPrompt frames the model as the circuit parser.
const SystemPrompt = "You are an expert electrical engineer. Convert natural language into a directed graph schematic. " +
	"Explicitly identify series and parallel nodes. Assign unique IDs to everything."

// Prompt builds the user turn for a description.
func Prompt(description string) string {
	return fmt.Sprintf(`Parse this electrical circuit description into a structured JSON format.
Description: %q

IMPORTANT:
1. Support PARALLEL CONFIGURATIONS. If the user says "two LEDs in parallel", create two separate parallel paths from the previous node to the next.
2. Ensure every connection has a unique 'id'.
3. Ensure standard component classifications (SOURCE, PROTECTION, CONTROL, LOAD, GROUND).
Respond with a single JSON object of the form {"components": [...], "connections": [...]}.`, description)
}

// ResponseSchema is the JSON schema a model reply must satisfy.
var ResponseSchema = mustSchema()

func mustSchema() json.RawMessage {
	roles := make([]string, len(schematic.Roles))
	for i, r := range schematic.Roles {
		roles[i] = string(r)
	}
	str := func(desc string) map[string]any {
		m := map[string]any{"type": "string"}
		if desc != "" {
			m["description"] = desc
		}
		return m
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"components": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          str(""),
						"type":        map[string]any{"type": "string", "enum": roles},
						"subType":     str("Specific part like Battery, Fuse, Switch, LED, Resistor"),
						"label":       str(""),
						"value":       str("Electrical value like 12V, 330 ohm, 10A"),
						"description": str("Short educational explanation of the component"),
					},
					"required": []string{"id", "type", "subType", "label", "description"},
				},
			},
			"connections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":     str(""),
						"fromId": str(""),
						"toId":   str(""),
					},
					"required": []string{"id", "fromId", "toId"},
				},
			},
		},
		"required": []string{"components", "connections"},
	}
	b, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return b
}

type wireGraph struct {
	Components  *[]wireComponent  `json:"components"`
	Connections *[]wireConnection `json:"connections"`
}

type wireComponent struct {
	ID          string              `json:"id"`
	Type        string              `json:"type"`
	SubType     string              `json:"subType"`
	Label       string              `json:"label"`
	Value       string              `json:"value"`
	Description string              `json:"description"`
	Position    *schematic.Position `json:"position"`
}

type wireConnection struct {
	ID     string `json:"id"`
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// DecodeResponse parses a model reply into a validated graph. Models
// sometimes wrap JSON in a markdown fence; that is stripped first.
func DecodeResponse(content string) (schematic.Graph, error) {
	var w wireGraph
	if err := json.Unmarshal([]byte(stripFence(content)), &w); err != nil {
		return schematic.Graph{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if w.Components == nil || w.Connections == nil {
		return schematic.Graph{}, fmt.Errorf("%w: components and connections are required", ErrMalformed)
	}

	g := schematic.Graph{
		Components:  make([]schematic.Component, 0, len(*w.Components)),
		Connections: make([]schematic.Connection, 0, len(*w.Connections)),
	}
	for _, c := range *w.Components {
		g.Components = append(g.Components, schematic.Component{
			ID:          c.ID,
			Type:        schematic.Role(c.Type),
			SubType:     c.SubType,
			Label:       c.Label,
			Value:       strings.TrimSpace(c.Value),
			Description: c.Description,
			Position:    c.Position,
		})
	}
	for _, c := range *w.Connections {
		g.Connections = append(g.Connections, schematic.Connection{ID: c.ID, FromID: c.FromID, ToID: c.ToID})
	}

	g = schematic.Normalize(g)
	if err := schematic.Validate(g); err != nil {
		return schematic.Graph{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return g, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
