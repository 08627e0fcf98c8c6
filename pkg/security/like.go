package security

import "strings"

// LikeEscapeChar is the escape character expected by queries built from EscapeLike.
const LikeEscapeChar = `\`

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// EscapeLike escapes LIKE wildcards so user input is matched literally.
// The resulting pattern must be used with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeReplacer.Replace(s)
}

// ContainsPattern returns a "%s%" pattern for substring matching. Case folding
// is left to the database so that both sides of the comparison fold alike.
func ContainsPattern(s string) string {
	if s == "" {
		return "%"
	}
	return "%" + EscapeLike(s) + "%"
}
