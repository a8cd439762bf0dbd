package session

// MemberType is the account classification carried in the token claims.
type MemberType = string

const (
	// MemberTypeUser is a regular attendee account
	MemberTypeUser MemberType = "USER"
	// MemberTypeOrganizer can create and manage events and groups
	MemberTypeOrganizer MemberType = "ORGANIZER"
	// MemberTypeAdmin has platform-wide management access
	MemberTypeAdmin MemberType = "ADMIN"
)

// MemberStatus is the account standing carried in the token claims.
type MemberStatus = string

const (
	// MemberStatusActive is a member in good standing
	MemberStatusActive MemberStatus = "ACTIVE"
	// MemberStatusBlocked is a member banned by moderation
	MemberStatusBlocked MemberStatus = "BLOCKED"
	// MemberStatusInactive is a deactivated or withdrawn member
	MemberStatusInactive MemberStatus = "INACTIVE"
)

// IsValidMemberType checks the type against the known classifications.
func IsValidMemberType(t MemberType) bool {
	switch t {
	case MemberTypeUser, MemberTypeOrganizer, MemberTypeAdmin:
		return true
	default:
		return false
	}
}

// CanOrganize reports whether the member type may create events and groups.
func CanOrganize(t MemberType) bool {
	switch t {
	case MemberTypeOrganizer, MemberTypeAdmin:
		return true
	default:
		return false
	}
}

// CanAdminister reports whether the member type has platform management
// access.
func CanAdminister(t MemberType) bool {
	return t == MemberTypeAdmin
}

// statusAuthError maps a member status to the structured error blocking a
// session, or nil when the status allows one. Unknown statuses are allowed;
// the backend is the authority and new statuses must not lock members out.
func statusAuthError(status MemberStatus) error {
	switch status {
	case MemberStatusBlocked:
		return ErrMemberBlocked
	case MemberStatusInactive:
		return ErrMemberInactive
	default:
		return nil
	}
}
