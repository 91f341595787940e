package community

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

const (
	maxPostContentLength    = 2000
	maxCommentContentLength = 500
	maxImageCount           = 5

	// maxWriteAttempts bounds the retry loop around versioned counter
	// writes. Toggle and comment transitions are recomputed from a
	// fresh read on each attempt, so redoing them is safe.
	maxWriteAttempts = 3
)

// ContentService orchestrates every public content operation: it loads
// the target aggregate, applies validation and ownership rules, and
// persists through a single versioned write.
type ContentService struct {
	store     ContentStore
	blocklist BlocklistGateway
}

func NewContentService(store ContentStore, blocklist BlocklistGateway) *ContentService {
	return &ContentService{store: store, blocklist: blocklist}
}

// ListFeed returns one slice of the feed, newest first, with posts by
// blocked authors removed and the actor's liked flag on each item.
// Actor id 0 is an anonymous reader: empty blocklist, liked=false.
func (s *ContentService) ListFeed(ctx context.Context, actorID uint, page PageRequest) (*FeedSlice, error) {
	page = page.normalize()

	var blocked []uint
	if actorID != 0 {
		var err error
		blocked, err = s.blocklist.BlockedAuthorIDs(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("resolving blocklist: %w", err)
		}
	}

	// One extra row decides hasNext without a count query.
	posts, err := s.store.ListPosts(ctx, blocked, page.offset(), page.Size+1)
	if err != nil {
		return nil, err
	}

	hasNext := len(posts) > page.Size
	if hasNext {
		posts = posts[:page.Size]
	}

	liked := map[uint]bool{}
	if actorID != 0 && len(posts) > 0 {
		ids := make([]uint, 0, len(posts))
		for i := range posts {
			ids = append(ids, posts[i].ID)
		}
		liked, err = s.store.LikedPostIDs(ctx, actorID, ids)
		if err != nil {
			return nil, err
		}
	}

	items := make([]FeedItem, 0, len(posts))
	for i := range posts {
		items = append(items, FeedItem{
			PostView: newPostView(&posts[i]),
			Liked:    liked[posts[i].ID],
		})
	}
	return newFeedSlice(items, page, hasNext), nil
}

// GetDetail returns a post with its comments oldest first, minus
// comments by authors the actor has blocked.
func (s *ContentService) GetDetail(ctx context.Context, actorID, postID uint) (*PostDetail, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	likedByActor := false
	blocked := map[uint]bool{}
	if actorID != 0 {
		like, err := s.store.GetLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}
		likedByActor = like != nil

		blockedIDs, err := s.blocklist.BlockedAuthorIDs(ctx, actorID)
		if err != nil {
			return nil, fmt.Errorf("resolving blocklist: %w", err)
		}
		for _, id := range blockedIDs {
			blocked[id] = true
		}
	}

	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		if blocked[comments[i].AuthorID] {
			continue
		}
		views = append(views, newCommentView(&comments[i]))
	}

	return &PostDetail{
		PostView: newPostView(post),
		Liked:    likedByActor,
		Comments: views,
	}, nil
}

// CreatePost validates and persists a new post with counters at zero.
func (s *ContentService) CreatePost(ctx context.Context, actorID uint, content string, images []string) (*PostView, error) {
	trimmed, err := validatePostContent(content)
	if err != nil {
		return nil, err
	}
	imageRows, err := validateImages(images)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID: actorID,
		Content:  trimmed,
		Images:   imageRows,
	}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	view := newPostView(post)
	return &view, nil
}

// UpdatePost replaces a post's content and images. Nil means "keep the
// current value"; a non-nil image list fully replaces the old one. The
// write is conditional on the version read here, and a concurrent
// modification surfaces as ErrWriteConflict rather than a silent
// overwrite.
func (s *ContentService) UpdatePost(ctx context.Context, actorID, postID uint, content *string, images *[]string) (*PostView, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrNotPostOwner
	}

	newContent := post.Content
	if content != nil {
		newContent = *content
	}
	newImages := make([]string, 0, len(post.Images))
	for _, img := range post.Images {
		newImages = append(newImages, img.URL)
	}
	if images != nil {
		newImages = *images
	}

	trimmed, err := validatePostContent(newContent)
	if err != nil {
		return nil, err
	}
	imageRows, err := validateImages(newImages)
	if err != nil {
		return nil, err
	}

	post.Content = trimmed
	post.Images = imageRows
	if err := s.store.UpdatePost(ctx, post, post.Version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, ErrWriteConflict
		}
		return nil, err
	}

	view := newPostView(post)
	return &view, nil
}

// DeletePost removes a post and everything hanging off it.
func (s *ContentService) DeletePost(ctx context.Context, actorID, postID uint) error {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return ErrNotPostOwner
	}
	return s.store.DeletePost(ctx, postID)
}

func validatePostContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxPostContentLength {
		return "", ErrInvalidContentLength
	}
	return trimmed, nil
}

func validateCommentContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxCommentContentLength {
		return "", ErrInvalidContentLength
	}
	return trimmed, nil
}

func validateImages(images []string) ([]models.PostImage, error) {
	if len(images) > maxImageCount {
		return nil, ErrExceededImageCount
	}
	rows := make([]models.PostImage, 0, len(images))
	for i, url := range images {
		rows = append(rows, models.PostImage{URL: url, Position: i})
	}
	return rows, nil
}
