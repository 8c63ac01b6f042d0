// ABOUTME: MCP tool definitions and registration for the BNGCIA server
// ABOUTME: Defines JSON schemas for the question, corpus, and conversation tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/corpus"
	"github.com/HelloJC24/BNGCIA/internal/rag"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, svc *rag.Service, builder *corpus.Builder, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	handlers := &Handlers{
		svc:     svc,
		builder: builder,
		logger:  logger,
	}

	// 1. ask_question - Answer a question from the indexed corpus
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Answer a question about BNGC using the indexed corpus. Returns the answer with source citations.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "The question to answer",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier for conversation continuity (default: anonymous)",
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskQuestion)

	// 2. build_corpus - Chunk, embed, and index documents from a directory
	server.AddTool(mcp.Tool{
		Name:        "build_corpus",
		Description: "Build the corpus from a directory of .txt, .md, and .pdf documents. Replaces the existing corpus and reloads the index.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dir": map[string]interface{}{
					"type":        "string",
					"description": "Directory containing the source documents",
				},
			},
			Required: []string{"dir"},
		},
	}, handlers.BuildCorpus)

	// 3. corpus_stats - Summarize the stored corpus
	server.AddTool(mcp.Tool{
		Name:        "corpus_stats",
		Description: "Get statistics for the stored corpus: chunk counts, source URLs, and build time.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CorpusStats)

	// 4. get_conversation - Retrieve a user's conversation history
	server.AddTool(mcp.Tool{
		Name:        "get_conversation",
		Description: "Get the recent conversation history for a user, oldest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier whose history to fetch (default: anonymous)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of turns to return (default: all)",
				},
			},
		},
	}, handlers.GetConversation)

	// 5. clear_conversation - Forget a user's conversation history
	server.AddTool(mcp.Tool{
		Name:        "clear_conversation",
		Description: "Delete the stored conversation history for a user.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "Identifier whose history to delete (default: anonymous)",
				},
			},
		},
	}, handlers.ClearConversation)

	return handlers
}
