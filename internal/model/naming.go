package model

import "strings"

// Characters that may never appear in names or aliases. Both delimiters
// the legacy encoding used at different points are banned outright so
// encoded exports stay unambiguous.
const forbiddenNameChars = ",|"

// ValidTagName reports whether s is acceptable as a primary tag name.
func ValidTagName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= MaxNameLength && !strings.ContainsAny(s, forbiddenNameChars)
}

// ValidAliasName reports whether s is acceptable as an alias.
func ValidAliasName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && len(s) <= MaxAliasLength && !strings.ContainsAny(s, forbiddenNameChars)
}
