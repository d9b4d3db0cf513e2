package search

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestParseRelevanceStrictJSON(t *testing.T) {
	verdict := parseRelevance(`{"relevant": true, "snippet": "the part that matters"}`, "prefix")
	if !verdict.Relevant {
		t.Fatalf("expected relevant")
	}
	if verdict.Snippet != "the part that matters" {
		t.Fatalf("unexpected snippet: %q", verdict.Snippet)
	}
}

func TestParseRelevanceStrictJSONNegative(t *testing.T) {
	verdict := parseRelevance(`{"relevant": false, "snippet": ""}`, "prefix")
	if verdict.Relevant {
		t.Fatalf("expected not relevant")
	}
}

func TestParseRelevanceHeuristicYes(t *testing.T) {
	prefix := strings.Repeat("c", 500)
	verdict := parseRelevance("Yes, this document discusses the topic.", prefix)
	if !verdict.Relevant {
		t.Fatalf("expected heuristic match")
	}
	if verdict.Snippet != prefix[:snippetFallback]+"..." {
		t.Fatalf("expected prefix snippet, got %q", verdict.Snippet)
	}
}

func TestParseRelevanceHeuristicSnippetKeepsValidUTF8(t *testing.T) {
	verdict := parseRelevance("yes", strings.Repeat("語", 150))
	if !verdict.Relevant {
		t.Fatalf("expected heuristic match")
	}
	if !utf8.ValidString(verdict.Snippet) {
		t.Fatalf("snippet is not valid UTF-8: %q", verdict.Snippet)
	}
	if !strings.HasSuffix(verdict.Snippet, "...") {
		t.Fatalf("snippet must end with ellipsis: %q", verdict.Snippet)
	}
}

func TestParseRelevanceHeuristicMiss(t *testing.T) {
	verdict := parseRelevance("This document does not cover the topic.", "prefix")
	if verdict.Relevant {
		t.Fatalf("expected not relevant")
	}
	if verdict.Snippet != "" {
		t.Fatalf("expected empty snippet, got %q", verdict.Snippet)
	}
}
