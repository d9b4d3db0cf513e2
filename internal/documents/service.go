package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"aidocs-backend/internal/extract"
	"aidocs-backend/internal/shared/metrics"
	"aidocs-backend/internal/shared/storage/object"
	"aidocs-backend/internal/shared/telemetry"
	"aidocs-backend/internal/shared/util"
)

// MaxUploadBytes caps a single uploaded file at 10 MiB.
const MaxUploadBytes = 10 << 20

// UploadInput carries the multipart form fields for a new document.
type UploadInput struct {
	FileName string
	Size     int64
	Reader   io.Reader
	Title    string
	Tags     string // comma separated
}

// Service implements document lifecycle on top of a Repo and an object store.
type Service struct {
	repo    Repo
	store   object.Store
	metrics *metrics.Metrics
}

func NewService(repo Repo, store object.Store, m *metrics.Metrics) *Service {
	return &Service{repo: repo, store: store, metrics: m}
}

// Upload validates, stores and indexes a new document. Text extraction never
// fails the upload: unsupported or corrupt files get a placeholder content.
func (s *Service) Upload(ctx context.Context, ownerID string, in UploadInput) (Document, error) {
	fileName, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		s.metrics.IncUpload("rejected")
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	fileType := util.FileTypeFromName(fileName)
	if _, ok := AllowedFileTypes[fileType]; !ok {
		s.metrics.IncUpload("rejected")
		return Document{}, fmt.Errorf("%w: .%s", ErrFileType, fileType)
	}
	if in.Size > MaxUploadBytes {
		s.metrics.IncUpload("rejected")
		return Document{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(in.Reader, MaxUploadBytes+1))
	if err != nil {
		s.metrics.IncUpload("error")
		return Document{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		s.metrics.IncUpload("rejected")
		return Document{}, ErrFileTooLarge
	}

	storageKey, size, err := s.store.Save(ctx, ownerID, fileName, bytes.NewReader(data))
	if err != nil {
		s.metrics.IncUpload("error")
		return Document{}, fmt.Errorf("store file: %w", err)
	}

	content := extract.Text(data, fileType)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = fileName
	}

	now := time.Now().UTC()
	doc := Document{
		ID:               uuid.NewString(),
		OwnerID:          ownerID,
		Title:            title,
		OriginalFilename: fileName,
		FileType:         fileType,
		FileSize:         size,
		StorageKey:       storageKey,
		Content:          content,
		KeyPoints:        []string{},
		Tags:             parseTags(in.Tags),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// The stored file is orphaned here; deletion is best effort so a
		// failed insert does not also hide the storage error.
		if delErr := s.store.Delete(ctx, storageKey); delErr != nil {
			telemetry.Warn("orphaned upload cleanup failed", map[string]any{
				"storage_key": storageKey,
				"err":         delErr.Error(),
			})
		}
		s.metrics.IncUpload("error")
		return Document{}, fmt.Errorf("persist document: %w", err)
	}

	s.metrics.IncUpload("ok")
	telemetry.Info("document uploaded", map[string]any{
		"document_id": doc.ID,
		"file_type":   fileType,
		"size_bytes":  size,
	})
	return doc, nil
}

// Get returns a single document with its extracted content.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	return s.repo.GetByID(ctx, ownerID, documentID)
}

// List returns a filtered, sorted page of the owner's documents.
func (s *Service) List(ctx context.Context, ownerID string, filter ListFilter) ([]Document, int, error) {
	return s.repo.List(ctx, ownerID, filter)
}

// Update applies a partial patch to a document's editable fields.
func (s *Service) Update(ctx context.Context, ownerID, documentID string, patch FieldPatch) (Document, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return Document{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if patch.Tags != nil {
		cleaned := cleanTags(*patch.Tags)
		patch.Tags = &cleaned
	}
	return s.repo.UpdateFields(ctx, ownerID, documentID, patch)
}

// Delete removes the record and then the stored file. A missing file is not
// an error; a failing store only gets logged since the record is already gone.
func (s *Service) Delete(ctx context.Context, ownerID, documentID string) error {
	doc, err := s.repo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, documentID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		telemetry.Warn("stored file removal failed", map[string]any{
			"document_id": documentID,
			"storage_key": doc.StorageKey,
			"err":         err.Error(),
		})
	}
	return nil
}

func parseTags(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}
	return cleanTags(strings.Split(csv, ","))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
