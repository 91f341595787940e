package models

import (
	"time"

	"gorm.io/gorm"
)

type Member struct {
	gorm.Model
	Email           string `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash    string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Nickname        string `gorm:"column:nickname;size:50;not null" json:"nickname"`
	ProfileImageURL string `gorm:"column:profile_image_url;size:512" json:"profile_image_url,omitempty"`
}

type RefreshToken struct {
	gorm.Model
	MemberID  uint      `gorm:"column:member_id;not null;index" json:"member_id"`
	Token     string    `gorm:"column:token;size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null" json:"expires_at"`
}

// Block is one directed blocklist entry: the blocker no longer sees
// content authored by the blocked member.
type Block struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"column:blocker_id;not null;uniqueIndex:idx_block_pair" json:"blocker_id"`
	BlockedID uint      `gorm:"column:blocked_id;not null;uniqueIndex:idx_block_pair" json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}
