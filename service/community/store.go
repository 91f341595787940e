package community

import (
	"context"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

// ContentStore is the durable row storage behind the content engine.
// Every method that changes a post's counters takes the version read
// when the post was loaded and applies the row change and the counter
// update as one atomic unit; a compare-and-swap miss returns
// ErrVersionConflict and leaves the store untouched.
type ContentStore interface {
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost loads a post with its images, or ErrPostNotFound.
	GetPost(ctx context.Context, postID uint) (*models.Post, error)

	// UpdatePost persists content, images and counters if the stored
	// version still equals expectedVersion, incrementing it by one.
	UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error

	// DeletePost removes the post and all of its comment, like and
	// image rows in one transaction.
	DeletePost(ctx context.Context, postID uint) error

	// ListPosts returns a feed window ordered by created_at desc with
	// id desc as tiebreak, excluding the given author ids.
	ListPosts(ctx context.Context, excludeAuthors []uint, offset, limit int) ([]models.Post, error)

	// GetLike returns the like row for (post, member), or nil when the
	// member has not liked the post.
	GetLike(ctx context.Context, postID, memberID uint) (*models.Like, error)

	// CreateLike inserts the like row and writes the post's counters.
	// A duplicate (post, member) pair returns ErrDuplicateLike.
	CreateLike(ctx context.Context, like *models.Like, post *models.Post, expectedVersion int64) error

	// DeleteLike removes the like row and writes the post's counters.
	// A vanished like row counts as a version conflict so the caller
	// re-reads state.
	DeleteLike(ctx context.Context, postID, memberID uint, post *models.Post, expectedVersion int64) error

	// LikedPostIDs reports which of the given posts the member liked.
	LikedPostIDs(ctx context.Context, memberID uint, postIDs []uint) (map[uint]bool, error)

	GetComment(ctx context.Context, commentID uint) (*models.Comment, error)

	// ListComments returns a post's comments ordered oldest first.
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)

	// CreateComment inserts the comment row and writes the post's counters.
	CreateComment(ctx context.Context, comment *models.Comment, post *models.Post, expectedVersion int64) error

	// DeleteComment removes the comment row and writes the post's counters.
	DeleteComment(ctx context.Context, commentID uint, post *models.Post, expectedVersion int64) error
}

// BlocklistGateway resolves the set of authors an actor has blocked.
// Owned by the member module; consumed here as an injected capability.
type BlocklistGateway interface {
	BlockedAuthorIDs(ctx context.Context, actorID uint) ([]uint, error)
}
