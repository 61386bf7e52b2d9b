package internal

import "regexp"

var macroRe = regexp.MustCompile(`\$\{([A-Za-z0-9_.\-]+)\}`)

// ContainsMacro reports whether s references a ${name} macro.
func ContainsMacro(s string) bool {
	return macroRe.MatchString(s)
}

// expandMacros substitutes ${name} from args and returns the names it could
// not resolve. Unresolved references are left in place.
func expandMacros(s string, args map[string]string) (string, []string) {
	var missing []string
	out := macroRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := args[name]; ok {
			return v
		}
		missing = append(missing, name)
		return m
	})
	return out, missing
}
