package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PGRepo implements Repo using Postgres. Full-text search relies on the
// documents_search_vector function installed by the migrations, which indexes
// title, content, summary and tags jointly.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, owner_id, title, original_filename, file_type, file_size, storage_key, content, summary, key_points, is_favorite, tags, created_at, updated_at`

const documentColumnsNoContent = `id, owner_id, title, original_filename, file_type, file_size, storage_key, '', summary, key_points, is_favorite, tags, created_at, updated_at`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, owner_id, title, original_filename, file_type, file_size,
    storage_key, content, summary, key_points, is_favorite, tags,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	keyPoints, err := marshalStrings(doc.KeyPoints)
	if err != nil {
		return err
	}
	tags, err := marshalStrings(doc.Tags)
	if err != nil {
		return err
	}

	var summary sql.NullString
	if doc.Summary != "" {
		summary = sql.NullString{String: doc.Summary, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.OriginalFilename,
		doc.FileType,
		doc.FileSize,
		doc.StorageKey,
		doc.Content,
		summary,
		keyPoints,
		doc.IsFavorite,
		tags,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, documentID string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1 AND id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, ownerID, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// List returns a page of documents (content omitted) and the total matching count.
func (r *PGRepo) List(ctx context.Context, ownerID string, filter ListFilter) ([]Document, int, error) {
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
	offset := (page - 1) * limit

	conds := []string{"owner_id = $1"}
	args := []any{ownerID}
	queryArg := 0

	if q := strings.TrimSpace(filter.Query); q != "" {
		ts := orTSQuery(q)
		if ts == "" {
			return []Document{}, 0, nil
		}
		args = append(args, ts)
		queryArg = len(args)
		conds = append(conds, fmt.Sprintf(
			"documents_search_vector(title, content, summary, tags) @@ to_tsquery('english', $%d)", queryArg))
	}
	if ft := strings.TrimSpace(filter.FileType); ft != "" {
		args = append(args, strings.ToLower(ft))
		conds = append(conds, fmt.Sprintf("file_type = $%d", len(args)))
	}
	if filter.FavoriteOnly {
		conds = append(conds, "is_favorite = TRUE")
	}

	where := strings.Join(conds, " AND ")

	orderBy := "created_at DESC"
	switch filter.Sort {
	case SortOldest:
		orderBy = "created_at ASC"
	case SortTitle:
		orderBy = "title ASC"
	case SortRelevance:
		if queryArg > 0 {
			orderBy = fmt.Sprintf(
				"ts_rank(documents_search_vector(title, content, summary, tags), to_tsquery('english', $%d)) DESC", queryArg)
		}
	}

	countQuery := "SELECT count(*) FROM documents WHERE " + where
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(
		"SELECT %s FROM documents WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		documentColumnsNoContent, where, orderBy, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs, err := collectDocuments(rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// Search runs the relevance-ranked full-text query with content included.
// Terms are OR-joined so a document matching any of them counts as a hit.
func (r *PGRepo) Search(ctx context.Context, ownerID, query string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 10
	}
	ts := orTSQuery(query)
	if ts == "" {
		return nil, nil
	}
	sqlQuery := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1
  AND documents_search_vector(title, content, summary, tags) @@ to_tsquery('english', $2)
ORDER BY ts_rank(documents_search_vector(title, content, summary, tags), to_tsquery('english', $2)) DESC
LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, sqlQuery, ownerID, ts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ListRecent returns the newest documents with content included.
func (r *PGRepo) ListRecent(ctx context.Context, ownerID string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// UpdateFields applies a partial patch of the user-editable fields.
func (r *PGRepo) UpdateFields(ctx context.Context, ownerID, documentID string, patch FieldPatch) (Document, error) {
	sets := []string{"updated_at = now()"}
	args := []any{ownerID, documentID}

	if patch.Title != nil {
		args = append(args, strings.TrimSpace(*patch.Title))
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Tags != nil {
		tags, err := marshalStrings(*patch.Tags)
		if err != nil {
			return Document{}, err
		}
		args = append(args, tags)
		sets = append(sets, fmt.Sprintf("tags = $%d", len(args)))
	}
	if patch.IsFavorite != nil {
		args = append(args, *patch.IsFavorite)
		sets = append(sets, fmt.Sprintf("is_favorite = $%d", len(args)))
	}

	query := fmt.Sprintf(
		"UPDATE documents SET %s WHERE owner_id = $1 AND id = $2 RETURNING %s",
		strings.Join(sets, ", "), documentColumns)

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// SetSummary stores the computed summary.
func (r *PGRepo) SetSummary(ctx context.Context, ownerID, documentID, summary string) error {
	const query = `
UPDATE documents
SET summary = $3, updated_at = now()
WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, documentID, summary)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetKeyPoints stores the computed key points.
func (r *PGRepo) SetKeyPoints(ctx context.Context, ownerID, documentID string, points []string) error {
	encoded, err := marshalStrings(points)
	if err != nil {
		return err
	}
	const query = `
UPDATE documents
SET key_points = $3, updated_at = now()
WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, documentID, encoded)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes the document record.
func (r *PGRepo) Delete(ctx context.Context, ownerID, documentID string) error {
	const query = `DELETE FROM documents WHERE owner_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, ownerID, documentID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var summary sql.NullString
	var keyPoints, tags []byte
	err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.OriginalFilename,
		&doc.FileType,
		&doc.FileSize,
		&doc.StorageKey,
		&doc.Content,
		&summary,
		&keyPoints,
		&doc.IsFavorite,
		&tags,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	if doc.KeyPoints, err = unmarshalStrings(keyPoints); err != nil {
		return Document{}, err
	}
	if doc.Tags, err = unmarshalStrings(tags); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func collectDocuments(rows *sql.Rows) ([]Document, error) {
	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// orTSQuery turns free text into an OR-joined to_tsquery expression so a
// document matching any single term is returned. Terms are stripped to
// letters and digits to keep tsquery syntax characters out of the input.
func orTSQuery(query string) string {
	var terms []string
	for _, field := range strings.Fields(query) {
		term := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return strings.Join(terms, " | ")
}

func marshalStrings(ss []string) ([]byte, error) {
	if ss == nil {
		ss = []string{}
	}
	return json.Marshal(ss)
}

func unmarshalStrings(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
