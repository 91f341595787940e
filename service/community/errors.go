package community

import "errors"

// Sentinel errors for the content engine. Handlers map these onto HTTP
// statuses; anything not in this list is an infrastructure failure.
var (
	// ErrPostNotFound is returned when the referenced post has no row
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound is returned when the referenced comment has no row
	ErrCommentNotFound = errors.New("comment not found")

	// ErrNotPostOwner is returned when a non-author tries to update or delete a post
	ErrNotPostOwner = errors.New("only the post author can modify this post")

	// ErrNotCommentOwner is returned when a non-author tries to delete a comment
	ErrNotCommentOwner = errors.New("only the comment author can delete this comment")

	// ErrInvalidContentLength is returned for blank content or content
	// over the type-specific maximum (2000 for posts, 500 for comments)
	ErrInvalidContentLength = errors.New("content is blank or exceeds the maximum length")

	// ErrExceededImageCount is returned when more than 5 image references are supplied
	ErrExceededImageCount = errors.New("a post can carry at most 5 images")

	// ErrWriteConflict is returned when an optimistic version conflict
	// persists after the bounded retries are exhausted
	ErrWriteConflict = errors.New("post was modified concurrently, try again")

	// ErrVersionConflict is the store-level compare-and-swap miss. The
	// service retries it on counter writes; it only escapes this
	// package wrapped in ErrWriteConflict.
	ErrVersionConflict = errors.New("post version mismatch")

	// ErrDuplicateLike is returned by the store when the (post, member)
	// unique index rejects a second like row. The toggle treats it as
	// "already liked" and re-reads.
	ErrDuplicateLike = errors.New("member already liked this post")
)
