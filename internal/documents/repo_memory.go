package documents

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

func nowUTC() time.Time { return time.Now().UTC() }

// MemoryRepo is an in-memory Repo used for local development and tests when
// no database is configured. Search falls back to naive term counting.
type MemoryRepo struct {
	mu   sync.RWMutex
	docs map[string]Document // keyed by document ID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[string]Document)}
}

func (r *MemoryRepo) Create(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, ownerID, documentID string) (Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (r *MemoryRepo) List(_ context.Context, ownerID string, filter ListFilter) ([]Document, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	fileType := strings.ToLower(strings.TrimSpace(filter.FileType))

	r.mu.RLock()
	var matched []Document
	for _, doc := range r.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		if fileType != "" && doc.FileType != fileType {
			continue
		}
		if filter.FavoriteOnly && !doc.IsFavorite {
			continue
		}
		if query != "" && termScore(doc, query) == 0 {
			continue
		}
		matched = append(matched, cloneDocument(doc))
	}
	r.mu.RUnlock()

	sortDocuments(matched, filter.Sort, query)

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []Document{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	pageDocs := matched[start:end]
	for i := range pageDocs {
		pageDocs[i].Content = ""
	}
	return pageDocs, total, nil
}

func (r *MemoryRepo) Search(_ context.Context, ownerID, query string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 10
	}
	lowered := strings.ToLower(strings.TrimSpace(query))

	r.mu.RLock()
	var matched []Document
	for _, doc := range r.docs {
		if doc.OwnerID != ownerID {
			continue
		}
		if lowered == "" || termScore(doc, lowered) == 0 {
			continue
		}
		matched = append(matched, cloneDocument(doc))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		si, sj := termScore(matched[i], lowered), termScore(matched[j], lowered)
		if si != sj {
			return si > sj
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryRepo) ListRecent(_ context.Context, ownerID string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	var out []Document
	for _, doc := range r.docs {
		if doc.OwnerID == ownerID {
			out = append(out, cloneDocument(doc))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) UpdateFields(_ context.Context, ownerID, documentID string, patch FieldPatch) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return Document{}, ErrNotFound
	}
	if patch.Title != nil {
		doc.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Tags != nil {
		doc.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.IsFavorite != nil {
		doc.IsFavorite = *patch.IsFavorite
	}
	doc.UpdatedAt = nowUTC()
	r.docs[documentID] = doc
	return cloneDocument(doc), nil
}

func (r *MemoryRepo) SetSummary(_ context.Context, ownerID, documentID, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return ErrNotFound
	}
	doc.Summary = summary
	doc.UpdatedAt = nowUTC()
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) SetKeyPoints(_ context.Context, ownerID, documentID string, points []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return ErrNotFound
	}
	doc.KeyPoints = append([]string(nil), points...)
	doc.UpdatedAt = nowUTC()
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, ownerID, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(r.docs, documentID)
	return nil
}

// termScore counts how many query terms occur in the document's searchable text.
func termScore(doc Document, loweredQuery string) int {
	haystack := strings.ToLower(doc.Title + " " + doc.Content + " " + doc.Summary + " " + strings.Join(doc.Tags, " "))
	score := 0
	for _, term := range strings.Fields(loweredQuery) {
		if strings.Contains(haystack, term) {
			score++
		}
	}
	return score
}

func sortDocuments(docs []Document, key SortKey, loweredQuery string) {
	sort.SliceStable(docs, func(i, j int) bool {
		switch key {
		case SortOldest:
			return docs[i].CreatedAt.Before(docs[j].CreatedAt)
		case SortTitle:
			return strings.ToLower(docs[i].Title) < strings.ToLower(docs[j].Title)
		case SortRelevance:
			if loweredQuery != "" {
				si, sj := termScore(docs[i], loweredQuery), termScore(docs[j], loweredQuery)
				if si != sj {
					return si > sj
				}
			}
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		default:
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
	})
}

func cloneDocument(doc Document) Document {
	doc.KeyPoints = append([]string(nil), doc.KeyPoints...)
	doc.Tags = append([]string(nil), doc.Tags...)
	return doc
}

var _ Repo = (*MemoryRepo)(nil)
