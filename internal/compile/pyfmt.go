package compile

import (
	"fmt"
	"strconv"
	"strings"
)

// Python literal formatting for generated scripts. Every generator goes
// through these helpers; user-supplied values (file paths, column names,
// fill values) are never concatenated into the script raw.

// PyString renders s as a single-quoted Python string literal.
func PyString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// PyValue renders an arbitrary property value as a Python literal.
func PyValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case bool:
		if t {
			return "True"
		}
		return "False"
	case string:
		return PyString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []string:
		return PyStringList(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = PyValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return PyString(fmt.Sprintf("%v", t))
	}
}

// PyStringList renders a slice as a Python list of string literals.
func PyStringList(items []string) string {
	parts := make([]string, len(items))
	for i, s := range items {
		parts[i] = PyString(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SafeName turns an arbitrary id into a usable Python identifier fragment.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "_"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "_" + out
	}
	return out
}
