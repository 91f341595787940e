package community

import (
	"context"
	"errors"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

// likeTransition is the toggle state machine: liked/not-liked is the
// whole state, the event is always "toggle", and the side effect is a
// row create or delete plus a counter delta on the post.
type likeTransition struct {
	liked bool
	delta int
}

func nextLikeTransition(currentlyLiked bool) likeTransition {
	if currentlyLiked {
		return likeTransition{liked: false, delta: -1}
	}
	return likeTransition{liked: true, delta: +1}
}

// ToggleLike flips the actor's like on a post and returns the
// resulting state. Each attempt re-reads the post and the like row, so
// a version conflict or a duplicate-insert race just means another
// writer got there first; the transition is recomputed against the
// fresh state and retried up to maxWriteAttempts times.
func (s *ContentService) ToggleLike(ctx context.Context, actorID, postID uint) (*LikeResult, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		post, err := s.store.GetPost(ctx, postID)
		if err != nil {
			return nil, err
		}

		existing, err := s.store.GetLike(ctx, postID, actorID)
		if err != nil {
			return nil, err
		}

		transition := nextLikeTransition(existing != nil)
		version := post.Version

		if transition.liked {
			like := &models.Like{PostID: postID, MemberID: actorID}
			post.IncreaseLikes()
			err = s.store.CreateLike(ctx, like, post, version)
		} else {
			post.DecreaseLikes()
			err = s.store.DeleteLike(ctx, postID, actorID, post, version)
		}

		switch {
		case err == nil:
			return &LikeResult{Liked: transition.liked, LikeCount: post.LikeCount}, nil
		case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrDuplicateLike):
			// Lost a race on this post; re-read and recompute.
			continue
		default:
			return nil, err
		}
	}
	return nil, ErrWriteConflict
}
