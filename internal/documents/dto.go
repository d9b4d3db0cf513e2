package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"originalFilename"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	Content          string    `json:"content"`
	Summary          *string   `json:"summary"`
	KeyPoints        []string  `json:"keyPoints"`
	IsFavorite       bool      `json:"isFavorite"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DocumentListItem is the list representation; content is excluded to keep
// list payloads small.
type DocumentListItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	OriginalFilename string    `json:"originalFilename"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	Summary          *string   `json:"summary"`
	IsFavorite       bool      `json:"isFavorite"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Pagination describes a list page.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:               doc.ID,
		Title:            doc.Title,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		Content:          doc.Content,
		Summary:          nullableString(doc.Summary),
		KeyPoints:        emptyIfNil(doc.KeyPoints),
		IsFavorite:       doc.IsFavorite,
		Tags:             emptyIfNil(doc.Tags),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func toListItem(doc Document) DocumentListItem {
	return DocumentListItem{
		ID:               doc.ID,
		Title:            doc.Title,
		OriginalFilename: doc.OriginalFilename,
		FileType:         doc.FileType,
		FileSize:         doc.FileSize,
		Summary:          nullableString(doc.Summary),
		IsFavorite:       doc.IsFavorite,
		Tags:             emptyIfNil(doc.Tags),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
