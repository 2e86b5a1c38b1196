package brain

import (
	"fmt"
	"strings"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

const (
	// DefaultBudget is the packing budget in estimated size units
	DefaultBudget = 2000

	// sizeDivisor converts characters to estimated size units
	sizeDivisor = 4

	chunkSeparator = "\n---\n"
)

// PackOptions tunes context packing
type PackOptions struct {
	Budget              int // 0 means DefaultBudget
	IncludeConversation bool
}

// EstimateSize returns the estimated size of s in budget units. The
// estimate is deliberately cheap: character count over a constant divisor,
// no tokenizer involved.
func EstimateSize(s string) int {
	return len(s) / sizeDivisor
}

// Pack greedily assembles a context block from rs in priority order:
// knowledge first, then session memory, then conversation turns when
// enabled. The first chunk that would overflow the budget stops packing
// entirely; later smaller chunks are not considered. An empty result set
// packs to an empty block, never an error.
func Pack(rs *model.ResultSet, opts PackOptions) model.ContextBlock {
	budget := opts.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	chunks := renderChunks(rs, opts.IncludeConversation)

	var (
		packed    []string
		used      int
		truncated bool
	)
	for _, chunk := range chunks {
		size := EstimateSize(chunk)
		if used+size > budget {
			truncated = true
			break
		}
		packed = append(packed, chunk)
		used += size
	}

	return model.ContextBlock{
		Text:      strings.Join(packed, chunkSeparator),
		Chunks:    len(packed),
		Size:      used,
		Truncated: truncated,
	}
}

func renderChunks(rs *model.ResultSet, includeConversation bool) []string {
	if rs == nil {
		return nil
	}

	chunks := make([]string, 0, rs.Total())
	for _, item := range rs.Knowledge {
		chunks = append(chunks, renderKnowledge(item))
	}
	for _, item := range rs.Memory {
		chunks = append(chunks, renderMemory(item))
	}
	if includeConversation {
		for _, turn := range rs.Conversation {
			chunks = append(chunks, renderTurn(turn))
		}
	}
	return chunks
}

func renderKnowledge(item model.KnowledgeItem) string {
	category := item.Category
	if category == "" {
		category = model.DefaultCategory
	}
	return fmt.Sprintf("[Knowledge - %s]\n%s\n", category, item.Content)
}

func renderMemory(item model.MemoryItem) string {
	section := item.Section
	if section == "" {
		section = model.DefaultSection
	}
	return fmt.Sprintf("[Session - %s]\n%s\n", section, item.Content)
}

func renderTurn(turn model.ConversationTurn) string {
	return fmt.Sprintf("[Previous %s message]\n%s\n", turn.Role, turn.Message)
}
