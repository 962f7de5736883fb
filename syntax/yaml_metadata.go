package syntax

import "gopkg.in/yaml.v3"

// parseYAMLMetadata parses the joined metadata lines as YAML into a
// string-keyed map. An empty set of lines yields an empty map, not an
// error — a block with no metadata content is not itself a syntax error.
func parseYAMLMetadata(lines []string) (map[string]any, error) {
	if len(lines) == 0 {
		return map[string]any{}, nil
	}
	joined := ""
	for i, l := range lines {
		if i > 0 {
			joined += "\n"
		}
		joined += l
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(joined), &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
