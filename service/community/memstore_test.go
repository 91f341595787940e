package community

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pawfeed/pawfeed-server/cmd/models"
)

// memStore is an in-memory ContentStore with the same compare-and-swap
// semantics as the postgres adapter. It is safe for concurrent use so
// the lost-update properties can be exercised with real goroutines.
// conflictsToInject forces the next N counter writes to miss their CAS,
// which lets tests drive the retry path deterministically.
type memStore struct {
	mu sync.Mutex

	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	likes    map[likeKey]*models.Like

	nextPostID    uint
	nextCommentID uint
	nextLikeID    uint
	clock         time.Time

	conflictsToInject int
	beforeCreateLike  func()
}

type likeKey struct {
	postID   uint
	memberID uint
}

func newMemStore() *memStore {
	return &memStore{
		posts:    map[uint]*models.Post{},
		comments: map[uint]*models.Comment{},
		likes:    map[likeKey]*models.Like{},
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Images = append([]models.PostImage(nil), p.Images...)
	return &cp
}

// cas applies the caller's counters when the stored version still
// matches, mirroring casUpdateCounters in the gorm adapter.
func (m *memStore) cas(post *models.Post, expectedVersion int64) error {
	if m.conflictsToInject > 0 {
		m.conflictsToInject--
		return ErrVersionConflict
	}
	stored, ok := m.posts[post.ID]
	if !ok {
		return ErrPostNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	stored.LikeCount = post.LikeCount
	stored.CommentCount = post.CommentCount
	stored.Version = expectedVersion + 1
	post.Version = stored.Version
	return nil
}

func (m *memStore) CreatePost(ctx context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPostID++
	post.ID = m.nextPostID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = m.tick()
	}
	for i := range post.Images {
		post.Images[i].PostID = post.ID
	}
	m.posts[post.ID] = copyPost(post)
	return nil
}

func (m *memStore) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	return copyPost(stored), nil
}

func (m *memStore) UpdatePost(ctx context.Context, post *models.Post, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cas(post, expectedVersion); err != nil {
		return err
	}
	stored := m.posts[post.ID]
	stored.Content = post.Content
	stored.Images = append([]models.PostImage(nil), post.Images...)
	return nil
}

func (m *memStore) DeletePost(ctx context.Context, postID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.posts[postID]; !ok {
		return ErrPostNotFound
	}
	delete(m.posts, postID)
	for id, c := range m.comments {
		if c.PostID == postID {
			delete(m.comments, id)
		}
	}
	for key := range m.likes {
		if key.postID == postID {
			delete(m.likes, key)
		}
	}
	return nil
}

func (m *memStore) ListPosts(ctx context.Context, excludeAuthors []uint, offset, limit int) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	excluded := map[uint]bool{}
	for _, id := range excludeAuthors {
		excluded[id] = true
	}

	var posts []models.Post
	for _, p := range m.posts {
		if excluded[p.AuthorID] {
			continue
		}
		posts = append(posts, *copyPost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})

	if offset >= len(posts) {
		return nil, nil
	}
	posts = posts[offset:]
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (m *memStore) GetLike(ctx context.Context, postID, memberID uint) (*models.Like, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	like, ok := m.likes[likeKey{postID, memberID}]
	if !ok {
		return nil, nil
	}
	cp := *like
	return &cp, nil
}

func (m *memStore) CreateLike(ctx context.Context, like *models.Like, post *models.Post, expectedVersion int64) error {
	if m.beforeCreateLike != nil {
		hook := m.beforeCreateLike
		m.beforeCreateLike = nil
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := likeKey{like.PostID, like.MemberID}
	if _, ok := m.likes[key]; ok {
		return ErrDuplicateLike
	}
	if err := m.cas(post, expectedVersion); err != nil {
		return err
	}
	m.nextLikeID++
	like.ID = m.nextLikeID
	like.CreatedAt = m.tick()
	cp := *like
	m.likes[key] = &cp
	return nil
}

func (m *memStore) DeleteLike(ctx context.Context, postID, memberID uint, post *models.Post, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := likeKey{postID, memberID}
	if _, ok := m.likes[key]; !ok {
		return ErrVersionConflict
	}
	if err := m.cas(post, expectedVersion); err != nil {
		return err
	}
	delete(m.likes, key)
	return nil
}

func (m *memStore) LikedPostIDs(ctx context.Context, memberID uint, postIDs []uint) (map[uint]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	liked := map[uint]bool{}
	for _, id := range postIDs {
		if _, ok := m.likes[likeKey{id, memberID}]; ok {
			liked[id] = true
		}
	}
	return liked, nil
}

func (m *memStore) GetComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment, ok := m.comments[commentID]
	if !ok {
		return nil, ErrCommentNotFound
	}
	cp := *comment
	return &cp, nil
}

func (m *memStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var comments []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (m *memStore) CreateComment(ctx context.Context, comment *models.Comment, post *models.Post, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cas(post, expectedVersion); err != nil {
		return err
	}
	m.nextCommentID++
	comment.ID = m.nextCommentID
	comment.CreatedAt = m.tick()
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *memStore) DeleteComment(ctx context.Context, commentID uint, post *models.Post, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[commentID]; !ok {
		return ErrCommentNotFound
	}
	if err := m.cas(post, expectedVersion); err != nil {
		return err
	}
	delete(m.comments, commentID)
	return nil
}

func (m *memStore) likeRowCount(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key := range m.likes {
		if key.postID == postID {
			count++
		}
	}
	return count
}

func (m *memStore) commentRowCount(postID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count
}

// stubBlocklist is a fixed BlocklistGateway.
type stubBlocklist struct {
	blocked map[uint][]uint
}

func (s *stubBlocklist) BlockedAuthorIDs(ctx context.Context, actorID uint) ([]uint, error) {
	return s.blocked[actorID], nil
}
