package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's forum role
type UserRole = string

const (
	// RoleGuest is an anonymous visitor (i.e. view)
	RoleGuest UserRole = "guest"
	// RoleMember is a registered user (i.e. view, post)
	RoleMember UserRole = "member"
	// RoleModerator can moderate the communities it is assigned to
	RoleModerator UserRole = "moderator"
	// RoleAdmin administers the whole forum
	RoleAdmin UserRole = "admin"
)

// User is the account model. Email is unique and stored case-sensitive;
// EmailVerifiedAt nil means the account never completed verification.
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role            UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	Username        string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone           string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash    string     `bun:"password_hash" json:"-"`
	EmailVerifiedAt *time.Time `bun:"email_verified_at,nullzero" json:"email_verified_at,omitempty"`
	LoginAttempts   int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt  *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt      *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt       *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsVerified reports whether the account completed email verification
func (u *User) IsVerified() bool {
	return u != nil && u.EmailVerifiedAt != nil
}

// MarkEmailAsVerified stamps the verification timestamp. Returns false
// when the account was already verified, so callers can skip re-emitting
// the verified event.
func (u *User) MarkEmailAsVerified(now time.Time) bool {
	if u.EmailVerifiedAt != nil {
		return false
	}
	u.EmailVerifiedAt = &now
	return true
}

// PasswordReset is the ledger row for an outstanding reset request.
// At most one row exists per email; a new accepted request replaces the
// previous row, and consumption deletes it.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets,alias:pwdr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        *uuid.UUID `bun:"user_id,notnull" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// AuthToken is a persisted bearer session. The wire handle is
// "<id>|<secret>"; only the sha256 of the full handle is stored.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	TokenHash     string     `bun:"token_hash,notnull,unique" json:"-"`
	LastUsedAt    *time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
