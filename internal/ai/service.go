package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/llm"
	"aidocs-backend/internal/shared/metrics"
	"aidocs-backend/internal/shared/telemetry"
	"aidocs-backend/internal/shared/util"
)

// maxPromptChars limits how much document content is sent to the model.
const maxPromptChars = 10000

const (
	summarizeTokens = 500
	keyPointsTokens = 1000
	answerTokens    = 500
)

// ErrNoQuestion signals a missing or blank question.
var ErrNoQuestion = errors.New("question is required")

// Service runs LLM enrichment over stored documents. Summaries and key
// points are computed once and cached on the document; answers are never
// cached.
type Service struct {
	repo    documents.Repo
	client  llm.Client
	metrics *metrics.Metrics
}

func NewService(repo documents.Repo, client llm.Client, m *metrics.Metrics) *Service {
	return &Service{repo: repo, client: client, metrics: m}
}

// Summarize returns the cached summary, or computes and stores one. When two
// requests race the cache check, both compute and the later write wins; the
// stored value is still a valid summary.
func (s *Service) Summarize(ctx context.Context, ownerID, documentID string) (string, error) {
	doc, err := s.repo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		return "", err
	}
	if doc.Summary != "" {
		return doc.Summary, nil
	}

	summary, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:    "You are a helpful assistant that summarizes documents.",
		User:      "Please provide a concise summary of the following document: " + truncate(doc.Content),
		MaxTokens: summarizeTokens,
	})
	if err != nil {
		s.metrics.IncLLMCall("summarize", "error")
		return "", fmt.Errorf("summarize: %w", err)
	}
	s.metrics.IncLLMCall("summarize", "ok")

	if err := s.repo.SetSummary(ctx, ownerID, documentID, summary); err != nil {
		return "", err
	}
	return summary, nil
}

// ExtractKeyPoints returns cached key points, or computes and stores them.
func (s *Service) ExtractKeyPoints(ctx context.Context, ownerID, documentID string) ([]string, error) {
	doc, err := s.repo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if len(doc.KeyPoints) > 0 {
		return doc.KeyPoints, nil
	}

	response, err := s.client.Complete(ctx, llm.CompletionRequest{
		System:    "You are a helpful assistant that extracts key points from documents.",
		User:      "Please extract 5-10 key points from the following document and format them as a JSON array of strings: " + truncate(doc.Content),
		MaxTokens: keyPointsTokens,
	})
	if err != nil {
		s.metrics.IncLLMCall("key_points", "error")
		return nil, fmt.Errorf("extract key points: %w", err)
	}
	s.metrics.IncLLMCall("key_points", "ok")

	points, fallback := parseKeyPoints(response)
	if fallback {
		telemetry.Warn("key points response was not a JSON array", map[string]any{
			"document_id": documentID,
		})
	}

	if err := s.repo.SetKeyPoints(ctx, ownerID, documentID, points); err != nil {
		return nil, err
	}
	return points, nil
}

// AskQuestion answers a question using only the document's content.
func (s *Service) AskQuestion(ctx context.Context, ownerID, documentID, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrNoQuestion
	}
	doc, err := s.repo.GetByID(ctx, ownerID, documentID)
	if err != nil {
		return "", err
	}

	answer, err := s.client.Complete(ctx, llm.CompletionRequest{
		System: "You are a helpful assistant that answers questions about documents based only on their content.",
		User: fmt.Sprintf(
			"Document: %s\n\nQuestion: %s\n\nPlease answer the question based only on the information provided in the document. If the answer cannot be found in the document, say so.",
			truncate(doc.Content), question),
		MaxTokens: answerTokens,
	})
	if err != nil {
		s.metrics.IncLLMCall("ask", "error")
		return "", fmt.Errorf("answer question: %w", err)
	}
	s.metrics.IncLLMCall("ask", "ok")
	return answer, nil
}

func truncate(content string) string {
	return util.TruncateUTF8(content, maxPromptChars)
}
