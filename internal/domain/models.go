// Package domain defines the persistence models for users, invites,
// confirmations, and acceptances. These types are mapped with GORM and form
// the core data layer of the referral-tracking application.
package domain

import "time"

// Confirmation status values. A confirmation starts pending and transitions
// exactly once to confirmed or denied.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusDenied    = "denied"
)

// User represents a messaging-platform user who interacted with the bot.
// The primary key is the platform-assigned numeric user id, not an
// auto-increment column, so rows are naturally idempotent per platform user.
//
// Fields:
//   - ID: stable platform user id (int64, primary key).
//   - Username: platform handle; nil when the user has not set one.
//   - FullName: display name assembled from first/last name; optional.
//   - Phone: phone number if the user shared one; optional.
//   - IsOwner / IsAdmin: bot role flags, granted manually.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM; UpdatedAt is
//     refreshed on every mutation.
type User struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement:false"`
	Username  *string   `json:"username"   gorm:"type:varchar(64)"`
	FullName  *string   `json:"full_name"  gorm:"type:varchar(255)"`
	Phone     *string   `json:"phone"      gorm:"type:varchar(32)"`
	IsOwner   bool      `json:"is_owner"   gorm:"not null;default:false"`
	IsAdmin   bool      `json:"is_admin"   gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Invite is a group invite link owned by exactly one issuing user. A user can
// hold at most one invite: user_id carries a unique index so concurrent
// requests cannot mint two links for the same issuer. Rows are never updated
// or deleted after creation.
//
// Fields:
//   - ID: auto-increment primary key.
//   - UserID: issuing user (unique; one invite per user).
//   - Code: full invite link text; unique and indexed for exact lookup.
//   - CreatedAt: when the link was minted and stored.
type Invite struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	UserID    int64     `json:"user_id"    gorm:"not null;uniqueIndex:ux_invites_user"`
	Code      string    `json:"code"       gorm:"type:varchar(255);not null;uniqueIndex:ux_invites_code"`
	CreatedAt time.Time `json:"created_at"`

	// User is the issuing owner of the link.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Invite.
func (Invite) TableName() string { return "invites" }

// Confirmation is a claim by a user that a specific invite brought them into
// the group. It starts pending and is resolved exactly once to confirmed or
// denied. Multiple rows per (user, invite) pair may accumulate over time;
// the workflow, not the schema, enforces at most one confirmed row per
// claiming user.
//
// Fields:
//   - ID: auto-increment primary key, used as the callback parameter.
//   - UserID: claiming user.
//   - InviteID: claimed invite.
//   - Status: pending | confirmed | denied (enforced by DB constraint).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Confirmation struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	UserID    int64     `json:"user_id"   gorm:"not null;index"`
	InviteID  uint      `json:"invite_id" gorm:"not null;index"`
	Status    string    `json:"status"    gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','confirmed','denied')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Invite is the claimed link. Confirmations are cascade-deleted if the
	// underlying invite is removed.
	Invite Invite `json:"-" gorm:"foreignKey:InviteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Confirmation.
func (Confirmation) TableName() string { return "confirmations" }

// Acceptance is the durable "who invited whom" edge, created only when a
// confirmation transitions to confirmed. Append-only; never updated or
// deleted. Reporting reads exclusively from this table.
//
// Fields:
//   - ID: auto-increment primary key.
//   - InviterID: user who issued the invite.
//   - InvitedID: user who confirmed the invite.
//   - InviteID: the invite through which the relationship was formed.
//   - JoinedAt: UTC time the relationship was confirmed.
type Acceptance struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	InviterID int64     `json:"inviter_id" gorm:"not null;index"`
	InvitedID int64     `json:"invited_id" gorm:"not null;index"`
	InviteID  uint      `json:"invite_id"  gorm:"not null;index"`
	JoinedAt  time.Time `json:"joined_at"`

	// Invite is the link that produced this edge.
	Invite Invite `json:"-" gorm:"foreignKey:InviteID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Acceptance.
func (Acceptance) TableName() string { return "acceptances" }
