package workload

import "encoding/json"

// Action mirrors one decoded workload object (spec §4.4, §6.2). Not every
// field is populated for every action: Checks is used by newcheck/removecheck,
// Vars only by changevars.
// Time is signed so that a negative time (spec §8 scenario S6) fails as a
// schema violation rather than tripping Go's own unsigned-overflow decode
// error first — the validator is meant to be what rejects it.
type Action struct {
	Name   string                     `json:"action"`
	Time   int64                      `json:"time"`
	Checks []CheckSpec                `json:"checks,omitempty"`
	Vars   map[string]json.RawMessage `json:"vars,omitempty"`
}

// CheckSpec is one element of a newcheck or removecheck action's "checks"
// array. Cost and Priority are meaningless (and ignored) for removecheck.
// Misc is accepted by the schema but carries no scheduling behavior.
type CheckSpec struct {
	Group    string          `json:"group"`
	Name     string          `json:"name"`
	Cost     int64           `json:"cost,omitempty"`
	Priority int             `json:"priority,omitempty"`
	Misc     json.RawMessage `json:"misc,omitempty"`
}

const (
	actionEndSim      = "endsim"
	actionNewCheck    = "newcheck"
	actionRemoveCheck = "removecheck"
	actionChangeVars  = "changevars"
)

// rawToVarString converts one "vars" value to the string form state.UpdateVar
// expects. JSON string values are unquoted; everything else (numbers,
// booleans) is passed through as its literal wire text, so integers never
// take a detour through float64 and risk losing precision or picking up
// scientific notation.
func rawToVarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
