package accesscontrol

import (
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// SetStatusRequest changes a profile's standing. The target comes from the
// request path.
type SetStatusRequest struct {
	Status enums.AccountStatus `json:"status" validate:"required"`
}

// ListUsersRequest filters the admin directory.
type ListUsersRequest struct {
	Status   string `json:"status"`
	UserType string `json:"user_type"`
	Limit    int    `json:"limit"`
	Cursor   string `json:"cursor"`
}
