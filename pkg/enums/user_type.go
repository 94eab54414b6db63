package enums

import "fmt"

// UserType categorizes the kind of person behind a profile. The admin and
// super_admin values mirror the role flags and are rewritten whenever a role
// mutation runs, so drifted rows self-heal.
type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeParent     UserType = "parent"
	UserTypeMentor     UserType = "mentor"
	UserTypeSchool     UserType = "school"
	UserTypeAdmin      UserType = "admin"
	UserTypeSuperAdmin UserType = "super_admin"
)

var validUserTypes = []UserType{
	UserTypeStudent,
	UserTypeParent,
	UserTypeMentor,
	UserTypeSchool,
	UserTypeAdmin,
	UserTypeSuperAdmin,
}

// String implements fmt.Stringer.
func (u UserType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserType.
func (u UserType) IsValid() bool {
	for _, candidate := range validUserTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the type mirrors an elevated role.
func (u UserType) IsPrivileged() bool {
	return u == UserTypeAdmin || u == UserTypeSuperAdmin
}

// ParseUserType converts raw input into a UserType.
func ParseUserType(value string) (UserType, error) {
	for _, candidate := range validUserTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user type %q", value)
}
