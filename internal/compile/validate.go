package compile

import "fmt"

// MergeDefaults overlays a node's data on the definition's defaults, data
// winning. The input maps are not modified.
func MergeDefaults(def NodeDefinition, data map[string]any) map[string]any {
	merged := make(map[string]any, len(def.Defaults)+len(data))
	for k, v := range def.Defaults {
		merged[k] = v
	}
	for _, p := range def.Properties {
		if p.Default != nil {
			if _, ok := merged[p.Name]; !ok {
				merged[p.Name] = p.Default
			}
		}
	}
	for k, v := range data {
		if v != nil {
			merged[k] = v
		}
	}
	return merged
}

// ValidateProperties checks a merged value bag against the definition's
// property specs and returns human-readable violations, one per offending
// property. An empty result means the node is valid.
func ValidateProperties(def NodeDefinition, merged map[string]any) []string {
	var violations []string

	for _, p := range def.Properties {
		value, present := merged[p.Name]
		if !present || value == nil || value == "" {
			if p.Required {
				violations = append(violations, fmt.Sprintf("%s is required", p.Name))
			}
			continue
		}

		switch p.Kind {
		case PropertyNumber:
			f, ok := toFloat(value)
			if !ok {
				violations = append(violations, fmt.Sprintf("%s must be a number", p.Name))
				continue
			}
			if p.Min != nil && f < *p.Min {
				violations = append(violations, fmt.Sprintf("%s must be >= %v", p.Name, *p.Min))
			}
			if p.Max != nil && f > *p.Max {
				violations = append(violations, fmt.Sprintf("%s must be <= %v", p.Name, *p.Max))
			}

		case PropertySelect:
			s, ok := value.(string)
			if !ok || !contains(p.Options, s) {
				violations = append(violations, fmt.Sprintf("%s must be one of %v", p.Name, p.Options))
			}

		case PropertyBool:
			if _, ok := value.(bool); !ok {
				violations = append(violations, fmt.Sprintf("%s must be a boolean", p.Name))
			}
		}
	}

	return violations
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}
