package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/repository"
	"github.com/thebardchat/angel-cloud/pkg/utils/logging"
)

// KnowledgeResult summarizes one knowledge import run.
type KnowledgeResult struct {
	Imported   int            `json:"imported"`
	Failed     int            `json:"failed"`
	ByCategory map[string]int `json:"by_category"`
}

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{"family", []string{"family", "sons", "wife", "tiffany"}},
	{"faith", []string{"faith", "god", "christian"}},
	{"technical", []string{"technical", "code", "project", "tools"}},
	{"philosophy", []string{"philosophy", "message", "mission"}},
}

// categorize maps a section heading to a category by keyword.
func categorize(heading string) string {
	folded := strings.ToLower(heading)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(folded, w) {
				return ck.category
			}
		}
	}
	return model.DefaultCategory
}

// ImportKnowledge splits a knowledge base markdown file into sections and
// inserts each as a knowledge item. The heading stays part of the stored
// content so relevance search can match on it. A failed insert is logged
// and counted; the run continues with the remaining sections.
func (u *UseCase) ImportKnowledge(ctx context.Context, path string) (*KnowledgeResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge file",
			goerr.V("path", path), goerr.T(model.ErrTagConfig))
	}

	source := filepath.Base(path)
	result := &KnowledgeResult{ByCategory: map[string]int{}}

	for _, sec := range splitSections(string(raw)) {
		if len(sec.Body) < minBodyLen {
			continue
		}

		category := categorize(sec.Heading)
		_, err := u.store.Insert(ctx, repository.CollectionKnowledge, map[string]any{
			"content":  "## " + sec.Heading + "\n" + sec.Body,
			"category": category,
			"source":   source,
		})
		if err != nil {
			logging.From(ctx).Warn("failed to import knowledge section",
				"section", sec.Heading, "error", err)
			result.Failed++
			continue
		}

		result.Imported++
		result.ByCategory[category]++
	}

	logging.From(ctx).Info("knowledge import finished",
		"source", source, "imported", result.Imported, "failed", result.Failed)

	return result, nil
}

// CategorizeForTest is a test helper that exposes categorize
func CategorizeForTest(heading string) string {
	return categorize(heading)
}
