package community

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is the slice cursor: a zero-based page number and a page
// size. The feed never runs a count query; it fetches size+1 rows and
// derives hasNext from the overflow row.
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) offset() int {
	return p.Page * p.Size
}

// FeedSlice is the slice envelope for the infinite-scroll feed.
type FeedSlice struct {
	Content    []FeedItem `json:"content"`
	PageNumber int        `json:"page_number"`
	PageSize   int        `json:"page_size"`
	First      bool       `json:"first"`
	Last       bool       `json:"last"`
	HasNext    bool       `json:"has_next"`
}

func newFeedSlice(items []FeedItem, page PageRequest, hasNext bool) *FeedSlice {
	return &FeedSlice{
		Content:    items,
		PageNumber: page.Page,
		PageSize:   page.Size,
		First:      page.Page == 0,
		Last:       !hasNext,
		HasNext:    hasNext,
	}
}
