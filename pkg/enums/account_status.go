package enums

import "fmt"

// AccountStatus is the standing axis orthogonal to role. Archived and banned
// profiles keep their stored role flags; authorization treats them as plain
// users until the status returns to active.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusArchived AccountStatus = "archived"
	AccountStatusBanned   AccountStatus = "banned"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusActive,
	AccountStatusArchived,
	AccountStatusBanned,
}

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AccountStatus.
func (s AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseAccountStatus converts raw input into an AccountStatus.
func ParseAccountStatus(value string) (AccountStatus, error) {
	for _, candidate := range validAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
