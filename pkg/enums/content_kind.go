package enums

import "fmt"

// ContentKind labels the moderated content surfaces that share one
// authorization gate.
type ContentKind string

const (
	ContentKindScholarship  ContentKind = "scholarship"
	ContentKindAnnouncement ContentKind = "announcement"
	ContentKindAd           ContentKind = "ad"
)

var validContentKinds = []ContentKind{
	ContentKindScholarship,
	ContentKindAnnouncement,
	ContentKindAd,
}

// String implements fmt.Stringer.
func (c ContentKind) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContentKind.
func (c ContentKind) IsValid() bool {
	for _, candidate := range validContentKinds {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContentKind converts raw input into a ContentKind.
func ParseContentKind(value string) (ContentKind, error) {
	for _, candidate := range validContentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid content kind %q", value)
}
