// Package envsubst implements the $NAME / $(NAME) / ${NAME} environment
// substitution used by Dynamic variable cache-key computation.
package envsubst

import "regexp"

// pattern matches the three supported forms. Unset variables are left
// untouched: no replacement is performed for a name with no entry in env.
var pattern = regexp.MustCompile(`\$\{(\w+)\}|\$\((\w+)\)|\$(\w+)`)

// Substitute replaces every $NAME / $(NAME) / ${NAME} occurrence in s with
// its value from env, leaving unset names as the original literal text.
func Substitute(s string, env map[string]string) string {
	return pattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := pattern.FindStringSubmatch(match)
		name := firstNonEmpty(sub[1], sub[2], sub[3])
		if v, ok := env[name]; ok {
			return v
		}
		return match
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
