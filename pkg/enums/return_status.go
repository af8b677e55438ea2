package enums

import "fmt"

// ReturnStatus tracks the lifecycle of a return request.
type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "pending"
	ReturnStatusApproved ReturnStatus = "approved"
	ReturnStatusDenied   ReturnStatus = "denied"
	ReturnStatusReturned ReturnStatus = "returned"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusPending,
	ReturnStatusApproved,
	ReturnStatusDenied,
	ReturnStatusReturned,
}

// String implements fmt.Stringer.
func (s ReturnStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReturnStatus.
func (s ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the request can no longer be transitioned.
// Only returned is terminal; approved and denied requests may still be
// moved to returned by an admin.
func (s ReturnStatus) IsTerminal() bool {
	return s == ReturnStatusReturned
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}
