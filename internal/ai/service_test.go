package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"aidocs-backend/internal/documents"
	"aidocs-backend/internal/llm"
)

// fakeClient returns canned responses and counts calls.
type fakeClient struct {
	response string
	err      error
	calls    int
	lastReq  llm.CompletionRequest
}

func (f *fakeClient) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func seedDocument(t *testing.T, repo *documents.MemoryRepo, content string) documents.Document {
	t.Helper()
	doc := documents.Document{
		ID:        "doc-1",
		OwnerID:   "user-1",
		Title:     "Doc",
		FileType:  "txt",
		Content:   content,
		KeyPoints: []string{},
		Tags:      []string{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return doc
}

func TestSummarizeComputesOnceAndCaches(t *testing.T) {
	repo := documents.NewMemoryRepo()
	client := &fakeClient{response: "a concise summary"}
	svc := NewService(repo, client, nil)
	seedDocument(t, repo, "long body")

	first, err := svc.Summarize(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if first != "a concise summary" {
		t.Fatalf("unexpected summary: %q", first)
	}

	second, err := svc.Summarize(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("Summarize (cached): %v", err)
	}
	if second != first {
		t.Fatalf("cached summary differs: %q vs %q", second, first)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 completion call, got %d", client.calls)
	}
}

func TestSummarizeTruncatesContent(t *testing.T) {
	repo := documents.NewMemoryRepo()
	client := &fakeClient{response: "summary"}
	svc := NewService(repo, client, nil)
	seedDocument(t, repo, strings.Repeat("x", maxPromptChars+500))

	if _, err := svc.Summarize(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(client.lastReq.User) > maxPromptChars+100 {
		t.Fatalf("prompt was not truncated: %d chars", len(client.lastReq.User))
	}
	if client.lastReq.MaxTokens != summarizeTokens {
		t.Fatalf("unexpected max tokens: %d", client.lastReq.MaxTokens)
	}
}

func TestSummarizeTruncationKeepsValidUTF8(t *testing.T) {
	repo := documents.NewMemoryRepo()
	client := &fakeClient{response: "summary"}
	svc := NewService(repo, client, nil)
	// 3-byte runes so the byte limit lands inside a rune.
	seedDocument(t, repo, strings.Repeat("語", maxPromptChars))

	if _, err := svc.Summarize(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !utf8.ValidString(client.lastReq.User) {
		t.Fatal("truncated prompt is not valid UTF-8")
	}
}

func TestExtractKeyPointsCaches(t *testing.T) {
	repo := documents.NewMemoryRepo()
	client := &fakeClient{response: `["point one", "point two"]`}
	svc := NewService(repo, client, nil)
	seedDocument(t, repo, "body")

	points, err := svc.ExtractKeyPoints(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("ExtractKeyPoints: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("unexpected points: %v", points)
	}

	if _, err := svc.ExtractKeyPoints(context.Background(), "user-1", "doc-1"); err != nil {
		t.Fatalf("ExtractKeyPoints (cached): %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected 1 completion call, got %d", client.calls)
	}
}

func TestAskQuestionRequiresQuestion(t *testing.T) {
	repo := documents.NewMemoryRepo()
	svc := NewService(repo, &fakeClient{}, nil)
	seedDocument(t, repo, "body")

	if _, err := svc.AskQuestion(context.Background(), "user-1", "doc-1", "  "); !errors.Is(err, ErrNoQuestion) {
		t.Fatalf("expected ErrNoQuestion, got %v", err)
	}
}

func TestAskQuestionIsNeverCached(t *testing.T) {
	repo := documents.NewMemoryRepo()
	client := &fakeClient{response: "the answer"}
	svc := NewService(repo, client, nil)
	seedDocument(t, repo, "body")

	for i := 0; i < 2; i++ {
		answer, err := svc.AskQuestion(context.Background(), "user-1", "doc-1", "what is it?")
		if err != nil {
			t.Fatalf("AskQuestion: %v", err)
		}
		if answer != "the answer" {
			t.Fatalf("unexpected answer: %q", answer)
		}
	}
	if client.calls != 2 {
		t.Fatalf("expected 2 completion calls, got %d", client.calls)
	}
}

func TestEnrichmentScopedToOwner(t *testing.T) {
	repo := documents.NewMemoryRepo()
	svc := NewService(repo, &fakeClient{response: "x"}, nil)
	seedDocument(t, repo, "body")

	if _, err := svc.Summarize(context.Background(), "user-2", "doc-1"); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarizeSurfacesProviderError(t *testing.T) {
	repo := documents.NewMemoryRepo()
	svc := NewService(repo, &fakeClient{err: llm.ErrNotConfigured}, nil)
	seedDocument(t, repo, "body")

	_, err := svc.Summarize(context.Background(), "user-1", "doc-1")
	if !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
