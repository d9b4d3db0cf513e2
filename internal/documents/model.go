package documents

import "time"

// Document represents an uploaded document owned by a user. Content is always
// present: extraction failures store a placeholder instead of failing the
// upload. Summary and KeyPoints stay empty until the enrichment service
// computes them.
type Document struct {
	ID               string
	OwnerID          string
	Title            string
	OriginalFilename string
	FileType         string
	FileSize         int64
	StorageKey       string
	Content          string
	Summary          string
	KeyPoints        []string
	IsFavorite       bool
	Tags             []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AllowedFileTypes is the upload allow-list, keyed by lower-cased extension.
var AllowedFileTypes = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"ppt":  {},
	"pptx": {},
}
