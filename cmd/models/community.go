package models

import (
	"time"
)

// Post is the contended aggregate of the feed: its counters are caches
// over the Like/Comment rows and every write goes through the version
// column.
type Post struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	AuthorID     uint        `gorm:"column:author_id;not null;index" json:"author_id"`
	Content      string      `gorm:"column:content;type:varchar(2000);not null" json:"content"`
	LikeCount    int         `gorm:"column:like_count;not null;default:0" json:"like_count"`
	CommentCount int         `gorm:"column:comment_count;not null;default:0" json:"comment_count"`
	Version      int64       `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt    time.Time   `gorm:"index:idx_posts_created_at,sort:desc" json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Author       *Member     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Images       []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Comments     []Comment   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Likes        []Like      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// PostImage holds an opaque image reference. Position keeps the order
// the author supplied.
type PostImage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PostID   uint   `gorm:"column:post_id;not null;index" json:"post_id"`
	URL      string `gorm:"column:url;size:512;not null" json:"url"`
	Position int    `gorm:"column:position;not null;default:0" json:"position"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"column:post_id;not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"column:author_id;not null" json:"author_id"`
	Content   string    `gorm:"column:content;type:varchar(500);not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Member   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Like records that a member liked a post. The composite unique index
// is the source of truth for "is liked"; Post.LikeCount is derived
// from the cardinality of these rows.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"column:post_id;not null;uniqueIndex:idx_like_post_member" json:"post_id"`
	MemberID  uint      `gorm:"column:member_id;not null;uniqueIndex:idx_like_post_member" json:"member_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IncreaseLikes and friends are the only way counters move. Decrements
// clamp at zero so a misordered delete can never persist a negative
// cache.

func (p *Post) IncreaseLikes() { p.LikeCount++ }

func (p *Post) DecreaseLikes() {
	if p.LikeCount > 0 {
		p.LikeCount--
	}
}

func (p *Post) IncreaseComments() { p.CommentCount++ }

func (p *Post) DecreaseComments() {
	if p.CommentCount > 0 {
		p.CommentCount--
	}
}
