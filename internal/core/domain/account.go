package domain

import "regexp"

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// IsValidAccountID reports whether id is a well-formed account identifier:
// lowercase alphanumeric parts joined by single '-' or '_', optionally
// separated by '.', between 2 and 64 characters long.
func IsValidAccountID(id string) bool {
	if len(id) < MinAccountIDLen || len(id) > MaxAccountIDLen {
		return false
	}
	return accountIDPattern.MatchString(id)
}
