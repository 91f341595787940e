package community

import (
	"time"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

// AuthorView is the author placeholder embedded in post and comment
// views. Profile data is filled in when the row was loaded with its
// member; otherwise only the id is set.
type AuthorView struct {
	ID              uint   `json:"id"`
	Nickname        string `json:"nickname,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

type PostView struct {
	ID           uint       `json:"id"`
	Author       AuthorView `json:"author"`
	Content      string     `json:"content"`
	Images       []string   `json:"images"`
	LikeCount    int        `json:"like_count"`
	CommentCount int        `json:"comment_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FeedItem is a post view plus the requesting actor's liked flag.
type FeedItem struct {
	PostView
	Liked bool `json:"liked"`
}

type CommentView struct {
	ID        uint       `json:"id"`
	Author    AuthorView `json:"author"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}

type PostDetail struct {
	PostView
	Liked    bool          `json:"liked"`
	Comments []CommentView `json:"comments"`
}

// LikeResult is the outcome of a toggle, read after the transition
// completed.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

func newAuthorView(id uint, member *models.Member) AuthorView {
	view := AuthorView{ID: id}
	if member != nil {
		view.Nickname = member.Nickname
		view.ProfileImageURL = member.ProfileImageURL
	}
	return view
}

func newPostView(post *models.Post) PostView {
	images := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		images = append(images, img.URL)
	}
	return PostView{
		ID:           post.ID,
		Author:       newAuthorView(post.AuthorID, post.Author),
		Content:      post.Content,
		Images:       images,
		LikeCount:    post.LikeCount,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt,
	}
}

func newCommentView(comment *models.Comment) CommentView {
	return CommentView{
		ID:        comment.ID,
		Author:    newAuthorView(comment.AuthorID, comment.Author),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
