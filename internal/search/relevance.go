package search

import (
	"encoding/json"
	"strings"

	"aidocs-backend/internal/shared/util"
)

// relevanceVerdict is the model's judgement for one document.
type relevanceVerdict struct {
	Relevant bool   `json:"relevant"`
	Snippet  string `json:"snippet"`
}

// parseRelevance interprets a model response as a relevance verdict. A strict
// JSON object is preferred; otherwise a response mentioning "yes" or
// "relevant" counts as a match, with the document prefix standing in for the
// snippet the model failed to produce.
func parseRelevance(response, contentPrefix string) relevanceVerdict {
	var verdict relevanceVerdict
	if err := json.Unmarshal([]byte(response), &verdict); err == nil {
		return verdict
	}

	lowered := strings.ToLower(response)
	if strings.Contains(lowered, "yes") || strings.Contains(lowered, "relevant") {
		snippet := util.TruncateUTF8(contentPrefix, snippetFallback)
		return relevanceVerdict{Relevant: true, Snippet: snippet + "..."}
	}
	return relevanceVerdict{}
}
