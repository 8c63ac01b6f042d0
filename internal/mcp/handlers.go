// ABOUTME: MCP tool handler implementations for the BNGCIA server
// ABOUTME: Maps service errors to actionable tool messages, results to JSON
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/corpus"
	"github.com/HelloJC24/BNGCIA/internal/rag"
	"github.com/HelloJC24/BNGCIA/internal/retriever"
	"github.com/HelloJC24/BNGCIA/internal/source"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

const defaultUserID = "anonymous"

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	svc     *rag.Service
	builder *corpus.Builder
	logger  *zap.Logger
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}
	userID := request.GetString("user_id", defaultUserID)

	answer, err := h.svc.Ask(question, userID)
	if err != nil {
		if errors.Is(err, retriever.ErrNoCorpus) || errors.Is(err, store.ErrCorpusNotFound) {
			return mcp.NewToolResultError("no corpus available: run build_corpus first"), nil
		}
		h.logger.Error("ask_question failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	return jsonResult(answer)
}

// BuildCorpus handles the build_corpus tool
func (h *Handlers) BuildCorpus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError("dir argument is required and must be a string"), nil
	}

	c, err := h.builder.Build(source.NewDir(dir, h.logger))
	if err != nil {
		h.logger.Error("build_corpus failed", zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("corpus build failed: %v", err)), nil
	}

	indexed, err := h.svc.Reload()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("corpus saved but index reload failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"chunks":    c.Len(),
		"indexed":   indexed,
		"dimension": c.Header.EmbeddingDim,
		"built_at":  c.Header.BuiltAt,
	})
}

// CorpusStats handles the corpus_stats tool
func (h *Handlers) CorpusStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.svc.Stats()
	if err != nil {
		if errors.Is(err, store.ErrCorpusNotFound) {
			return mcp.NewToolResultError("no corpus available: run build_corpus first"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(stats)
}

// GetConversation handles the get_conversation tool
func (h *Handlers) GetConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", defaultUserID)
	limit := request.GetInt("limit", 0)

	turns, err := h.svc.History(userID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fetching history failed: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"user_id": userID,
		"turns":   turns,
	})
}

// ClearConversation handles the clear_conversation tool
func (h *Handlers) ClearConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", defaultUserID)

	if err := h.svc.ClearHistory(userID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clearing history failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("conversation history cleared for %s", userID)), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
