package oracle

// ExtractText walks the known oracle response shapes in a fixed priority
// order and returns the first text it finds. It never stringifies objects;
// a shape with no recognized text yields ok=false
func ExtractText(v any) (string, bool) {
	switch o := v.(type) {
	case string:
		return o, o != ""
	case map[string]any:
		return extractFromObject(o)
	default:
		return "", false
	}
}

func extractFromObject(o map[string]any) (string, bool) {
	// deep search through the nested outputs array structure first
	if outputs, ok := o["outputs"].([]any); ok {
		for _, out := range outputs {
			om, ok := out.(map[string]any)
			if !ok {
				continue
			}
			if nested, ok := om["outputs"].([]any); ok {
				for _, n := range nested {
					nm, ok := n.(map[string]any)
					if !ok {
						continue
					}
					if s, ok := messageText(nm); ok {
						return s, true
					}
				}
			}
			// also check direct results on the outer output
			if s, ok := messageText(om); ok {
				return s, true
			}
		}
	}

	if s, ok := str(o["text"]); ok {
		return s, true
	}
	if s, ok := str(o["output"]); ok {
		return s, true
	}
	if s, ok := str(o["result"]); ok {
		return s, true
	}
	if s, ok := str(o["data"]); ok {
		return s, true
	}
	if data, ok := o["data"].(map[string]any); ok {
		if s, ok := str(data["text"]); ok {
			return s, true
		}
		if s, ok := str(data["output"]); ok {
			return s, true
		}
		if s, ok := str(data["result"]); ok {
			return s, true
		}
	}
	// nested results.message.data.text at the top level
	if s, ok := messageText(o); ok {
		return s, true
	}
	return "", false
}

// messageText digs results.message.{data.text, text} out of a node
func messageText(node map[string]any) (string, bool) {
	results, ok := node["results"].(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := results["message"].(map[string]any)
	if !ok {
		return "", false
	}
	if data, ok := msg["data"].(map[string]any); ok {
		if s, ok := str(data["text"]); ok {
			return s, true
		}
	}
	if s, ok := str(msg["text"]); ok {
		return s, true
	}
	return "", false
}

func str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
