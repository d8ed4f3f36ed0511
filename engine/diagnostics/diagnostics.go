// Package diagnostics runs the advisory rule set over a schematic. Rules are
// presence checks on component roles only; they do not look at wiring.
package diagnostics

import "github.com/salarkhan2003/SchematicFlow-Advanced-Electrical-CAD/engine/schematic"

// Status is the severity of a finding.
type Status string

const (
	StatusError   Status = "ERROR"
	StatusWarning Status = "WARNING"
	StatusSafe    Status = "SAFE"
)

// Stable finding codes.
const (
	CodeMissingSource = "MISSING_SOURCE"
	CodeMissingGround = "MISSING_GROUND"
	CodeSafetyRisk    = "SAFETY_RISK"
	CodeValidated     = "VALIDATED"
)

// Finding is the output of one rule.
type Finding struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type presence struct {
	source, ground, protection bool
}

type rule func(presence) (Finding, bool)

// rules run in this order; each one is independent of the others.
var rules = []rule{
	func(p presence) (Finding, bool) {
		return Finding{
			Status:  StatusError,
			Message: "No power source detected. Circuit will not function.",
			Code:    CodeMissingSource,
		}, !p.source
	},
	func(p presence) (Finding, bool) {
		return Finding{
			Status:  StatusWarning,
			Message: "No ground return detected. Ensure a return path to the negative terminal is established.",
			Code:    CodeMissingGround,
		}, !p.ground
	},
	func(p presence) (Finding, bool) {
		return Finding{
			Status:  StatusWarning,
			Message: "No over-current protection (Fuse/Breaker). Safety hazard if a short occurs.",
			Code:    CodeSafetyRisk,
		}, !p.protection
	},
	func(p presence) (Finding, bool) {
		return Finding{
			Status:  StatusSafe,
			Message: "Continuity loop verified. Core components present.",
			Code:    CodeValidated,
		}, p.source && p.ground && p.protection
	},
}

// Run evaluates every rule against g. An empty graph yields no findings at
// all, which is distinct from a passing graph (one VALIDATED finding).
func Run(g schematic.Graph) []Finding {
	if g.IsEmpty() {
		return []Finding{}
	}
	p := presence{
		source:     g.HasRole(schematic.RoleSource),
		ground:     g.HasRole(schematic.RoleGround),
		protection: g.HasRole(schematic.RoleProtection),
	}
	out := make([]Finding, 0, len(rules))
	for _, r := range rules {
		if f, fired := r(p); fired {
			out = append(out, f)
		}
	}
	return out
}

// Worst returns the most severe status among findings, or "" for none.
func Worst(findings []Finding) Status {
	worst := Status("")
	for _, f := range findings {
		switch {
		case f.Status == StatusError:
			return StatusError
		case f.Status == StatusWarning:
			worst = StatusWarning
		case worst == "":
			worst = f.Status
		}
	}
	return worst
}
