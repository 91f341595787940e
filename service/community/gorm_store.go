package community

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawfeed/pawfeed-server/cmd/models"
	"gorm.io/gorm"
)

// GormContentStore implements ContentStore on postgres. Counter writes
// use an explicit compare-and-swap on the posts.version column inside
// the same transaction as the child-row change, so a failing operation
// leaves no partial state behind.
type GormContentStore struct {
	db *gorm.DB
}

func NewGormContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func (s *GormContentStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	return nil
}

func (s *GormContentStore) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Author").
		First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading post %d: %w", postID, err)
	}
	return &post, nil
}

func (s *GormContentStore) UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Post{}).
			Where("id = ? AND version = ?", post.ID, expectedVersion).
			Updates(map[string]interface{}{
				"content":       post.Content,
				"like_count":    post.LikeCount,
				"comment_count": post.CommentCount,
				"version":       expectedVersion + 1,
			})
		if result.Error != nil {
			return fmt.Errorf("updating post %d: %w", post.ID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrVersionConflict
		}

		// Full image replacement, not a merge.
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostImage{}).Error; err != nil {
			return fmt.Errorf("clearing post %d images: %w", post.ID, err)
		}
		for i := range post.Images {
			post.Images[i].ID = 0
			post.Images[i].PostID = post.ID
			if err := tx.Create(&post.Images[i]).Error; err != nil {
				return fmt.Errorf("saving post %d image: %w", post.ID, err)
			}
		}

		post.Version = expectedVersion + 1
		return nil
	})
}

func (s *GormContentStore) DeletePost(ctx context.Context, postID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("deleting likes for post %d: %w", postID, err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("deleting comments for post %d: %w", postID, err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostImage{}).Error; err != nil {
			return fmt.Errorf("deleting images for post %d: %w", postID, err)
		}
		if err := tx.Delete(&models.Post{}, postID).Error; err != nil {
			return fmt.Errorf("deleting post %d: %w", postID, err)
		}
		return nil
	})
}

func (s *GormContentStore) ListPosts(ctx context.Context, excludeAuthors []uint, offset, limit int) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Author")
	if len(excludeAuthors) > 0 {
		query = query.Where("author_id NOT IN ?", excludeAuthors)
	}

	var posts []models.Post
	// id desc as tiebreak keeps pages stable when timestamps collide.
	err := query.Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

func (s *GormContentStore) GetLike(ctx context.Context, postID, memberID uint) (*models.Like, error) {
	var like models.Like
	err := s.db.WithContext(ctx).
		Where("post_id = ? AND member_id = ?", postID, memberID).
		First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading like for post %d: %w", postID, err)
	}
	return &like, nil
}

func (s *GormContentStore) CreateLike(ctx context.Context, like *models.Like, post *models.Post, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
			// The unique index resolves the race to like twice.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateLike
			}
			return fmt.Errorf("creating like: %w", err)
		}
		return casUpdateCounters(tx, post, expectedVersion)
	})
}

func (s *GormContentStore) DeleteLike(ctx context.Context, postID, memberID uint, post *models.Post, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND member_id = ?", postID, memberID).Delete(&models.Like{})
		if result.Error != nil {
			return fmt.Errorf("deleting like: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Someone already untoggled; force a fresh read.
			return ErrVersionConflict
		}
		return casUpdateCounters(tx, post, expectedVersion)
	})
}

func (s *GormContentStore) LikedPostIDs(ctx context.Context, memberID uint, postIDs []uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("member_id = ? AND post_id IN ?", memberID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("loading liked posts: %w", err)
	}
	liked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (s *GormContentStore) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading comment %d: %w", commentID, err)
	}
	return &comment, nil
}

func (s *GormContentStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

func (s *GormContentStore) CreateComment(ctx context.Context, comment *models.Comment, post *models.Post, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("creating comment: %w", err)
		}
		return casUpdateCounters(tx, post, expectedVersion)
	})
}

func (s *GormContentStore) DeleteComment(ctx context.Context, commentID uint, post *models.Post, expectedVersion int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Comment{}, commentID)
		if result.Error != nil {
			return fmt.Errorf("deleting comment %d: %w", commentID, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCommentNotFound
		}
		return casUpdateCounters(tx, post, expectedVersion)
	})
}

// casUpdateCounters writes the post's counters only if nobody else has
// touched the row since it was read. RowsAffected == 0 means the
// version moved; the whole transaction rolls back and the caller
// retries from a fresh read.
func casUpdateCounters(tx *gorm.DB, post *models.Post, expectedVersion int64) error {
	result := tx.Model(&models.Post{}).
		Where("id = ? AND version = ?", post.ID, expectedVersion).
		Updates(map[string]interface{}{
			"like_count":    post.LikeCount,
			"comment_count": post.CommentCount,
			"version":       expectedVersion + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("updating counters for post %d: %w", post.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	post.Version = expectedVersion + 1
	return nil
}
