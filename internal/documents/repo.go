package documents

import "context"

// SortKey selects the ordering for List.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortTitle     SortKey = "title"
	SortRelevance SortKey = "relevance"
)

// ListFilter narrows and orders a document listing.
type ListFilter struct {
	Query        string
	FileType     string
	FavoriteOnly bool
	Sort         SortKey
	Page         int
	Limit        int
}

// FieldPatch is a partial update of the user-editable fields. Nil fields are
// left untouched; content and owner are never patchable.
type FieldPatch struct {
	Title      *string
	Tags       *[]string
	IsFavorite *bool
}

// Repo defines persistence operations for documents. Every method takes the
// owner id and treats another owner's document as not found; the repo is the
// only path to document data.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, ownerID, documentID string) (Document, error)
	// List returns a page of documents (content omitted) plus the total count
	// matching the filter.
	List(ctx context.Context, ownerID string, filter ListFilter) ([]Document, int, error)
	// Search runs the full-text query over title, content, summary and tags,
	// ordered by relevance, content included for snippet building.
	Search(ctx context.Context, ownerID, query string, limit int) ([]Document, error)
	// ListRecent returns the newest documents with content included.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]Document, error)
	UpdateFields(ctx context.Context, ownerID, documentID string, patch FieldPatch) (Document, error)
	SetSummary(ctx context.Context, ownerID, documentID, summary string) error
	SetKeyPoints(ctx context.Context, ownerID, documentID string, points []string) error
	Delete(ctx context.Context, ownerID, documentID string) error
}
