package session

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// MemberClaims is the decoded payload of an Eventify bearer token. Identity
// fields (`id`, `username`) are mandatory; profile attributes and counters
// are optional and defaulted when the session is projected into an Account.
type MemberClaims struct {
	jwt.RegisteredClaims
	ID              string       `json:"id,omitempty"`
	Username        string       `json:"username,omitempty"`
	Name            string       `json:"name,omitempty"`
	Email           string       `json:"email,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	ProfileImage    string       `json:"profileImage,omitempty"`
	Description     string       `json:"description,omitempty"`
	MemberType      MemberType   `json:"memberType,omitempty"`
	MemberStatus    MemberStatus `json:"memberStatus,omitempty"`
	EmailVerified   bool         `json:"emailVerified,omitempty"`
	LikesCount      int          `json:"likesCount,omitempty"`
	FollowersCount  int          `json:"followersCount,omitempty"`
	FollowingsCount int          `json:"followingsCount,omitempty"`
	ViewsCount      int          `json:"viewsCount,omitempty"`
	Points          int          `json:"points,omitempty"`
	EventsOrganized int          `json:"eventsOrganizedCount,omitempty"`
	GroupsJoined    int          `json:"groupsJoinedCount,omitempty"`
	CreatedAt       string       `json:"createdAt,omitempty"`
	UpdatedAt       string       `json:"updatedAt,omitempty"`
}

// MemberID returns the member identifier, falling back to the subject claim.
func (c *MemberClaims) MemberID() string {
	if c.ID != "" {
		return c.ID
	}
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time, zero when the claim is absent.
func (c *MemberClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAtTime returns the issuance time, zero when the claim is absent.
func (c *MemberClaims) IssuedAtTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Validate will run validation rules for publishable claims: identity fields
// must be present and the email, when carried, must be well formed.
func (c *MemberClaims) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(c,
			validation.Field(&c.ID, validation.Required),
			validation.Field(&c.Username, validation.Required),
			validation.Field(&c.Email, is.Email),
		)
	}, "Claims are missing required identity fields")
}

// Account is the normalized projection of MemberClaims held by SessionHub.
// The zero value (empty ID) means "no session".
type Account struct {
	ID              string       `json:"id"`
	Username        string       `json:"username"`
	Name            string       `json:"name"`
	Email           string       `json:"email"`
	Phone           string       `json:"phone"`
	ProfileImage    string       `json:"profile_image"`
	Description     string       `json:"description"`
	MemberType      MemberType   `json:"member_type"`
	MemberStatus    MemberStatus `json:"member_status"`
	EmailVerified   bool         `json:"email_verified"`
	LikesCount      int          `json:"likes_count"`
	FollowersCount  int          `json:"followers_count"`
	FollowingsCount int          `json:"followings_count"`
	ViewsCount      int          `json:"views_count"`
	Points          int          `json:"points"`
	EventsOrganized int          `json:"events_organized_count"`
	GroupsJoined    int          `json:"groups_joined_count"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// LoggedIn reports whether the account represents an authenticated member.
func (a Account) LoggedIn() bool {
	return a.ID != ""
}

func emptyAccount() Account {
	return Account{}
}

// accountFromClaims normalizes claims into an Account. Missing optional
// fields default to empty/zero/false; date fields fall back to now.
func accountFromClaims(claims *MemberClaims, now time.Time) Account {
	return Account{
		ID:              claims.MemberID(),
		Username:        claims.Username,
		Name:            claims.Name,
		Email:           claims.Email,
		Phone:           normalizePhone(claims.Phone),
		ProfileImage:    claims.ProfileImage,
		Description:     claims.Description,
		MemberType:      claims.MemberType,
		MemberStatus:    claims.MemberStatus,
		EmailVerified:   claims.EmailVerified,
		LikesCount:      claims.LikesCount,
		FollowersCount:  claims.FollowersCount,
		FollowingsCount: claims.FollowingsCount,
		ViewsCount:      claims.ViewsCount,
		Points:          claims.Points,
		EventsOrganized: claims.EventsOrganized,
		GroupsJoined:    claims.GroupsJoined,
		CreatedAt:       parseClaimTime(claims.CreatedAt, now),
		UpdatedAt:       parseClaimTime(claims.UpdatedAt, now),
	}
}

// normalizePhone formats international numbers to E.164. Numbers without a
// country prefix pass through untouched; the backend owns their semantics.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "+") {
		return raw
	}

	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}

	return phonenumbers.Format(parsed, phonenumbers.E164)
}

func parseClaimTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return fallback
}
