package sms

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// FormatTemplate fills named {placeholder} markers from values. A marker
// with no matching value is an error: the category template and the data
// the dispatcher recorded are out of sync, and a half-formatted SMS must
// not go out.
func FormatTemplate(template string, values map[string]string) (string, error) {
	var missing []string
	out := placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := values[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("sms template: missing placeholder value(s): %s", strings.Join(missing, ", "))
	}
	return out, nil
}
