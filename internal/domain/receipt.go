package domain

import "time"

// CallbackReceipt records a processed confirm/deny callback so that a rapid
// double-tap on the same button replays the recorded outcome instead of
// re-running the resolution. Rows expire after a TTL and are unique per
// (user_id, confirmation_id, key).
type CallbackReceipt struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID         int64     `json:"user_id"         gorm:"not null;uniqueIndex:ux_receipt_user_conf_key,priority:1"`
	ConfirmationID uint      `json:"confirmation_id" gorm:"not null;uniqueIndex:ux_receipt_user_conf_key,priority:2"`
	Key            string    `json:"key"             gorm:"type:varchar(32);not null;uniqueIndex:ux_receipt_user_conf_key,priority:3"`
	Outcome        string    `json:"outcome"         gorm:"type:varchar(32);not null"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"      gorm:"index"`
}

// TableName returns the database table name for CallbackReceipt.
func (CallbackReceipt) TableName() string { return "callback_receipts" }
