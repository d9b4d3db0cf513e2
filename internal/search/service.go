package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/llm"
	"aidocs-backend/internal/shared/metrics"
	"aidocs-backend/internal/shared/util"
)

const (
	lexicalLimit    = 10
	semanticLimit   = 20
	semanticContent = 1000
	relevanceTokens = 300
)

// ErrNoQuery signals a missing or blank search query.
var ErrNoQuery = errors.New("search query is required")

// Result is one search hit with a contextual snippet.
type Result struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FileType  string    `json:"fileType"`
	CreatedAt time.Time `json:"createdAt"`
	Snippet   string    `json:"snippet"`
}

// Service runs the two-tier search: lexical full-text first, then an
// LLM relevance pass over recent documents when the first tier is empty.
type Service struct {
	repo    documents.Repo
	client  llm.Client
	metrics *metrics.Metrics
}

func NewService(repo documents.Repo, client llm.Client, m *metrics.Metrics) *Service {
	return &Service{repo: repo, client: client, metrics: m}
}

// Search returns relevance-ordered hits for the lexical tier, or
// recency-ordered hits from the semantic tier. An empty slice means no match.
func (s *Service) Search(ctx context.Context, ownerID, query string) ([]Result, error) {
	if query == "" {
		return nil, ErrNoQuery
	}

	docs, err := s.repo.Search(ctx, ownerID, query, lexicalLimit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	if len(docs) > 0 {
		results := make([]Result, 0, len(docs))
		for _, doc := range docs {
			results = append(results, Result{
				ID:        doc.ID,
				Title:     doc.Title,
				FileType:  doc.FileType,
				CreatedAt: doc.CreatedAt,
				Snippet:   buildSnippet(doc.Content, query),
			})
		}
		return results, nil
	}

	return s.semanticSearch(ctx, ownerID, query)
}

// semanticSearch asks the model, per document, whether the document answers
// the query. Documents are judged in parallel but reported in recency order.
func (s *Service) semanticSearch(ctx context.Context, ownerID, query string) ([]Result, error) {
	docs, err := s.repo.ListRecent(ctx, ownerID, semanticLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	if len(docs) == 0 {
		return []Result{}, nil
	}

	verdicts := make([]relevanceVerdict, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	for i, doc := range docs {
		prefix := util.TruncateUTF8(doc.Content, semanticContent)
		g.Go(func() error {
			response, err := s.client.Complete(gctx, llm.CompletionRequest{
				System: "You are a helpful assistant that determines if a document is relevant to a query and extracts the most relevant snippet.",
				User: fmt.Sprintf(
					"Query: %s\n\nDocument: %s\n\nIs this document relevant to the query? If yes, extract the most relevant snippet (up to 200 characters). Respond in JSON format with 'relevant' (boolean) and 'snippet' (string).",
					query, prefix),
				MaxTokens: relevanceTokens,
			})
			if err != nil {
				s.metrics.IncLLMCall("search_relevance", "error")
				return err
			}
			s.metrics.IncLLMCall("search_relevance", "ok")
			verdicts[i] = parseRelevance(response, prefix)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("relevance check: %w", err)
	}

	results := make([]Result, 0, len(docs))
	for i, doc := range docs {
		if !verdicts[i].Relevant {
			continue
		}
		results = append(results, Result{
			ID:        doc.ID,
			Title:     doc.Title,
			FileType:  doc.FileType,
			CreatedAt: doc.CreatedAt,
			Snippet:   verdicts[i].Snippet,
		})
	}
	return results, nil
}
