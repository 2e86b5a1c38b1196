package mcp

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/thebardchat/angel-cloud/pkg/model"
	"github.com/thebardchat/angel-cloud/pkg/usecase/brain"
	"github.com/thebardchat/angel-cloud/pkg/usecase/journal"
)

// Searcher retrieves context candidates across the corpora.
type Searcher interface {
	Search(ctx context.Context, input brain.SearchInput) *model.ResultSet
}

// Classifier screens text for crisis indicators and sentiment.
type Classifier interface {
	Classify(ctx context.Context, text string) model.Classification
}

// TurnLogger records conversation turns.
type TurnLogger interface {
	LogTurn(ctx context.Context, input journal.TurnInput) (model.RecordID, model.SessionID, error)
}

// Handler holds the tool implementations behind the MCP surface.
type Handler struct {
	searcher   Searcher
	classifier Classifier
	turns      TurnLogger
}

// NewHandler creates the tool handler set
func NewHandler(searcher Searcher, classifier Classifier, turns TurnLogger) *Handler {
	return &Handler{
		searcher:   searcher,
		classifier: classifier,
		turns:      turns,
	}
}

// New builds an MCP server exposing retrieval, context packing,
// classification, and turn logging as tools.
func New(searcher Searcher, classifier Classifier, turns TurnLogger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "angel-cloud",
		Version: "1.0.0",
	}, nil)

	h := NewHandler(searcher, classifier, turns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_brain",
		Description: "Search the knowledge base, session memories, and conversation history for items relevant to a query",
	}, h.SearchBrain)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_context",
		Description: "Search all sources and pack the results into a size-bounded context block for prompt injection",
	}, h.BuildContext)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify",
		Description: "Screen text for crisis indicators and sentiment polarity; detected crises are logged durably as a side effect",
	}, h.Classify)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_turn",
		Description: "Append one conversation turn to the durable conversation log",
	}, h.LogTurn)

	return server
}

// SearchBrainParams selects the sources and filters for one search.
type SearchBrainParams struct {
	Query          string `json:"query" jsonschema:"The text to search for"`
	Limit          int    `json:"limit,omitempty" jsonschema:"Maximum results per source (default 5)"`
	SkipKnowledge  bool   `json:"skip_knowledge,omitempty" jsonschema:"Skip the knowledge base"`
	SkipMemory     bool   `json:"skip_memory,omitempty" jsonschema:"Skip session memories"`
	IncludeHistory bool   `json:"include_history,omitempty" jsonschema:"Also search conversation history"`
	Category       string `json:"category,omitempty" jsonschema:"Restrict knowledge results to one category"`
}

// SearchBrainResult is the structured output of search_brain.
type SearchBrainResult struct {
	Knowledge    []model.KnowledgeItem    `json:"knowledge"`
	Memory       []model.MemoryItem       `json:"memory"`
	Conversation []model.ConversationTurn `json:"conversation"`
	Total        int                      `json:"total"`
}

func (h *Handler) SearchBrain(ctx context.Context, req *mcp.CallToolRequest, params *SearchBrainParams) (*mcp.CallToolResult, any, error) {
	if params.Query == "" {
		return nil, nil, goerr.New("query is required")
	}

	rs := h.searcher.Search(ctx, brain.SearchInput{
		Query:            params.Query,
		Limit:            params.Limit,
		SkipKnowledge:    params.SkipKnowledge,
		SkipMemory:       params.SkipMemory,
		SkipConversation: !params.IncludeHistory,
		Category:         params.Category,
	})

	result := SearchBrainResult{
		Knowledge:    rs.Knowledge,
		Memory:       rs.Memory,
		Conversation: rs.Conversation,
		Total:        rs.Total(),
	}

	text := fmt.Sprintf("Found %d results (knowledge: %d, memory: %d, conversation: %d)",
		result.Total, len(rs.Knowledge), len(rs.Memory), len(rs.Conversation))

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, result, nil
}

// BuildContextParams configures one context assembly call.
type BuildContextParams struct {
	Query          string `json:"query" jsonschema:"The text to retrieve context for"`
	Budget         int    `json:"budget,omitempty" jsonschema:"Context size budget in estimator units (default 2000)"`
	IncludeHistory bool   `json:"include_history,omitempty" jsonschema:"Also pack conversation history"`
}

// BuildContextResult is the structured output of build_context.
type BuildContextResult struct {
	Context   string `json:"context"`
	Chunks    int    `json:"chunks"`
	Size      int    `json:"size"`
	Truncated bool   `json:"truncated"`
}

func (h *Handler) BuildContext(ctx context.Context, req *mcp.CallToolRequest, params *BuildContextParams) (*mcp.CallToolResult, any, error) {
	if params.Query == "" {
		return nil, nil, goerr.New("query is required")
	}

	rs := h.searcher.Search(ctx, brain.SearchInput{
		Query:            params.Query,
		SkipConversation: !params.IncludeHistory,
	})

	block := brain.Pack(rs, brain.PackOptions{
		Budget:              params.Budget,
		IncludeConversation: params.IncludeHistory,
	})

	result := BuildContextResult{
		Context:   block.Text,
		Chunks:    block.Chunks,
		Size:      block.Size,
		Truncated: block.Truncated,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: block.Text}},
	}, result, nil
}

// ClassifyParams carries the text to screen.
type ClassifyParams struct {
	Text string `json:"text" jsonschema:"The text to screen"`
}

func (h *Handler) Classify(ctx context.Context, req *mcp.CallToolRequest, params *ClassifyParams) (*mcp.CallToolResult, any, error) {
	c := h.classifier.Classify(ctx, params.Text)

	text := fmt.Sprintf("sentiment=%.2f crisis=%t urgency=%s", c.SentimentScore, c.Crisis, c.Urgency)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, c, nil
}

// LogTurnParams describes one turn to append.
type LogTurnParams struct {
	Message   string `json:"message" jsonschema:"The message text"`
	Role      string `json:"role,omitempty" jsonschema:"user or assistant (default user)"`
	Mode      string `json:"mode,omitempty" jsonschema:"Persona the turn belongs to (default logibot)"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Session to append to; omitted starts a new session"`
}

// LogTurnResult is the structured output of log_turn.
type LogTurnResult struct {
	RecordID  string `json:"record_id"`
	SessionID string `json:"session_id"`
}

func (h *Handler) LogTurn(ctx context.Context, req *mcp.CallToolRequest, params *LogTurnParams) (*mcp.CallToolResult, any, error) {
	id, session, err := h.turns.LogTurn(ctx, journal.TurnInput{
		Message:   params.Message,
		Role:      model.Role(params.Role),
		Mode:      model.Mode(params.Mode),
		SessionID: model.SessionID(params.SessionID),
	})
	if err != nil {
		return nil, nil, err
	}

	result := LogTurnResult{RecordID: string(id), SessionID: string(session)}
	text := fmt.Sprintf("Logged turn %s in session %s", result.RecordID, result.SessionID)

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, result, nil
}
