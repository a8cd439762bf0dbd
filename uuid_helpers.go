package session

import (
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// MemberUUID derives a stable UUID from the member identifier. Eventify ids
// are opaque strings; downstream stores that key on UUIDs get a
// deterministic mapping.
func MemberUUID(a Account) (uuid.UUID, error) {
	if a.ID == "" {
		return uuid.Nil, ErrUnableToDecodeClaims
	}

	if id, err := uuid.Parse(a.ID); err == nil {
		return id, nil
	}

	return hashid.NewUUID(a.ID)
}

// HasMemberUUID reports whether MemberUUID will succeed.
func HasMemberUUID(a Account) bool {
	_, err := MemberUUID(a)
	return err == nil
}
