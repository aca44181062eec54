package entities

// LookupResult is the assembled response payload for one code lookup.
// NotFound distinguishes the synthesized "unknown code" payload from a real
// record; it is kept out of the JSON body and drives the HTTP status instead.
type LookupResult struct {
	Code           string `json:"code"`
	Summary        string `json:"summary"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Source         string `json:"source"`
	AILastUpdated  string `json:"ai_last_updated,omitempty"`

	NotFound bool `json:"-"`
}

// NewNotFoundResult returns the fixed payload served for unknown codes.
func NewNotFoundResult(code string) *LookupResult {
	return &LookupResult{
		Code:           code,
		Summary:        "Code not found.",
		Description:    "No data available.",
		Recommendation: "• Try another OBD II code.",
		Source:         "N/A",
		NotFound:       true,
	}
}
