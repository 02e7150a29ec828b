package model

import (
	"database/sql"
	"time"
)

// Space holds per-space settings. Premium is written by the billing
// collaborator and read-only here.
type Space struct {
	SpaceID          int64          `db:"space_id" json:"space_id"`
	Premium          bool           `db:"premium" json:"premium"`
	ModLogChannel    sql.NullInt64  `db:"mod_log_channel" json:"mod_log_channel"`
	MemberLogChannel sql.NullInt64  `db:"member_log_channel" json:"member_log_channel"`
	CaseID           int64          `db:"case_id" json:"case_id"`
	WelcomeMessage   sql.NullString `db:"welcome_message" json:"welcome_message"`
}

// AFK marks a user as away in one space.
type AFK struct {
	UserID  int64     `db:"user_id" json:"user_id"`
	SpaceID int64     `db:"space_id" json:"space_id"`
	Start   time.Time `db:"start" json:"start"`
	Reason  string    `db:"reason" json:"reason"`
}
