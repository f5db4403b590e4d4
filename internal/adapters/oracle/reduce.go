package oracle

import "encoding/json"

// essential is the reduced form of an oversized JSON input
// only the fields the oracle needs to keep context survive reduction
type essential struct {
	Spread   string `json:"spread,omitempty"`
	Question string `json:"question"`
	N        *int   `json:"n,omitempty"`
	Sig      string `json:"sig,omitempty"`
}

// ReduceInput deterministically shrinks input to at most max characters.
// JSON inputs are reduced to their essential fields with the question capped
// at 200 characters; anything still over budget is hard truncated with a
// trailing "..." marker. Inputs within budget pass through unchanged
func ReduceInput(input string, max int) string {
	if max <= 3 || len(input) <= max {
		return input
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(input), &parsed); err == nil {
		ess := essential{}
		if v, ok := parsed["spread"].(string); ok {
			ess.Spread = v
		}
		if v, ok := parsed["question"].(string); ok {
			if len(v) > 200 {
				v = v[:200]
			}
			ess.Question = v
		}
		if v, ok := parsed["n"].(float64); ok {
			n := int(v)
			ess.N = &n
		}
		if v, ok := parsed["sig"].(string); ok {
			ess.Sig = v
		}
		if b, err := json.Marshal(ess); err == nil {
			input = string(b)
			if len(input) <= max {
				return input
			}
		}
	}

	return input[:max-3] + "..."
}
