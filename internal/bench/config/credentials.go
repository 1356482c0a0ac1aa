package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingCredential is returned when a scenario requires a variable that
// is empty or still holds a placeholder.
var ErrMissingCredential = errors.New("missing credential")

// placeholders are values shipped in sample files that never authenticate.
var placeholders = []string{
	"SEU_TOKEN_AQUI",
	"YOUR_TOKEN_HERE",
	"CHANGE_ME",
	"CHANGEME",
}

// IsPlaceholder reports whether v is empty or a known placeholder.
// Values wrapped in angle brackets, like <token>, count as placeholders.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	if len(v) > 2 && strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return true
	}
	for _, p := range placeholders {
		if strings.EqualFold(v, p) {
			return true
		}
	}
	return false
}

// MissingCredentials returns the variables required by sc that are unset or
// placeholders, in declared order.
func MissingCredentials(sc *Scenario, vars map[string]string) []string {
	var missing []string
	for _, name := range sc.Requires {
		if IsPlaceholder(vars[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckCredentials returns an error wrapping ErrMissingCredential when sc
// cannot run with vars.
func CheckCredentials(sc *Scenario, vars map[string]string) error {
	missing := MissingCredentials(sc, vars)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("scenario %q requires %s: %w", sc.Name, strings.Join(missing, ", "), ErrMissingCredential)
}
