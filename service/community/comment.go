package community

import (
	"context"
	"errors"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

// AddComment creates a comment on a post and bumps the post's comment
// counter through the same versioned-write discipline as the like
// toggle.
func (s *ContentService) AddComment(ctx context.Context, actorID, postID uint, content string) (*CommentView, error) {
	trimmed, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		post, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return nil, err
		}

		comment := &models.Comment{
			PostID:   postID,
			AuthorID: actorID,
			Content:  trimmed,
		}
		version := post.Version
		post.IncreaseComments()

		err = s.store.CreateComment(ctx, comment, post, version)
		switch {
		case err == nil:
			view := newCommentView(comment)
			return &view, nil
		case errors.Is(err, ErrVersionConflict):
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrWriteConflict
}

// DeleteComment removes the actor's own comment and decrements the
// post's comment counter.
func (s *ContentService) DeleteComment(ctx context.Context, actorID, postID, commentID uint) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		// The post load comes first: the counter lives there.
		post, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return err
		}

		comment, err := s.store.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.PostID != postID {
			return ErrCommentNotFound
		}
		if comment.AuthorID != actorID {
			return ErrNotCommentOwner
		}

		version := post.Version
		post.DecreaseComments()

		err = s.store.DeleteComment(ctx, commentID, post, version)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrVersionConflict):
			continue
		default:
			return err
		}
	}
	return ErrWriteConflict
}
