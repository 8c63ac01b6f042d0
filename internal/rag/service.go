// ABOUTME: The question-answering service: routing, retrieval, generation
// ABOUTME: Holds the live vector index behind an atomic pointer for reloads
package rag

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/HelloJC24/BNGCIA/internal/conversation"
	"github.com/HelloJC24/BNGCIA/internal/index"
	"github.com/HelloJC24/BNGCIA/internal/llm"
	"github.com/HelloJC24/BNGCIA/internal/models"
	"github.com/HelloJC24/BNGCIA/internal/retriever"
	"github.com/HelloJC24/BNGCIA/internal/store"
)

const answerSystemPrompt = `You are a helpful assistant for BNGC. Answer questions using ONLY the
provided sources. If the sources do not contain the answer, say you do not
know. Be concise and factual. Do not invent details.`

const greetingSystemPrompt = `You are a friendly assistant for BNGC. The user is greeting you or
making small talk. Reply warmly in one or two sentences and invite them to
ask about BNGC's services.`

// Fallbacks used when no answer can be generated
const (
	noInfoAnswer = "I don't have enough relevant information to answer that. " +
		"Try asking about BNGC's services, or rephrase your question."
	unavailableAnswer = "I can't answer right now. Please try again in a moment."
	fallbackGreeting  = "Hello! Ask me anything about BNGC and our services."
)

// Answer is the service's reply to one question.
type Answer struct {
	Answer         string            `json:"answer"`
	Citations      []models.Citation `json:"citations,omitempty"`
	Conversational bool              `json:"conversational,omitempty"`
	ConversationID string            `json:"conversation_id"`
}

// Service answers questions over the corpus, keeping per-user conversation
// state. The index pointer is swapped atomically on Reload, so questions in
// flight finish against the corpus they started with.
type Service struct {
	ix atomic.Pointer[index.Index]

	store      store.CorpusStore
	history    *conversation.HistoryStore
	classifier *conversation.Classifier
	retriever  *retriever.Retriever
	generator  llm.Generator
	contexts   *conversation.ContextBuilder
	opts       retriever.Options
	logger     *zap.Logger
}

// Config wires a Service's collaborators.
type Config struct {
	Store      store.CorpusStore
	History    *conversation.HistoryStore
	Classifier *conversation.Classifier
	Retriever  *retriever.Retriever
	Generator  llm.Generator
	Contexts   *conversation.ContextBuilder
	Options    retriever.Options
	Logger     *zap.Logger
}

// New creates the service. The index starts empty; call Reload to load the
// stored corpus.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Classifier == nil {
		cfg.Classifier = conversation.NewClassifier()
	}
	s := &Service{
		store:      cfg.Store,
		history:    cfg.History,
		classifier: cfg.Classifier,
		retriever:  cfg.Retriever,
		generator:  cfg.Generator,
		contexts:   cfg.Contexts,
		opts:       cfg.Options,
		logger:     cfg.Logger,
	}
	s.ix.Store(index.Build(nil))
	return s
}

// Reload loads the stored corpus and swaps in a fresh index, returning the
// number of indexed chunks. A failed load leaves the current index serving.
func (s *Service) Reload() (int, error) {
	corpus, err := s.store.Load()
	if err != nil {
		return 0, fmt.Errorf("loading corpus: %w", err)
	}
	ix := index.Build(corpus)
	s.ix.Store(ix)
	s.logger.Info("index reloaded", zap.Int("chunks", ix.Len()), zap.Int("dimension", ix.Dimension()))
	return ix.Len(), nil
}

// Ask answers one question for one user. Small talk is answered directly
// without touching the index; informational questions go through retrieval
// and cite their sources.
func (s *Service) Ask(query, userID string) (*Answer, error) {
	if s.classifier.Classify(query) == conversation.RouteConversational {
		return s.askConversational(query, userID)
	}
	return s.askInformational(query, userID)
}

func (s *Service) askConversational(query, userID string) (*Answer, error) {
	text, err := s.generator.Generate(greetingSystemPrompt, query)
	if err != nil {
		s.logger.Warn("greeting generation failed", zap.Error(err))
		text = fallbackGreeting
	}

	s.record(userID, query, text)
	return &Answer{
		Answer:         text,
		Conversational: true,
		ConversationID: userID,
	}, nil
}

func (s *Service) askInformational(query, userID string) (*Answer, error) {
	result, err := s.retriever.Retrieve(s.ix.Load(), query, s.opts)
	if err != nil {
		if errors.Is(err, retriever.ErrNoCorpus) {
			return nil, err
		}
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	if result.Empty() {
		s.logger.Debug("no relevant sources", zap.String("query", query))
		s.record(userID, query, noInfoAnswer)
		return &Answer{Answer: noInfoAnswer, ConversationID: userID}, nil
	}

	history, err := s.history.History(userID, 0)
	if err != nil {
		s.logger.Warn("loading history failed", zap.Error(err))
		history = nil
	}

	prompt := s.contexts.Build(history, result.Pieces) + "\n\nQUESTION: " + query
	text, err := s.generator.Generate(answerSystemPrompt, prompt)
	if err != nil {
		// The user still gets a reply; the failure is an operator concern
		s.logger.Error("answer generation failed", zap.Error(err))
		return &Answer{Answer: unavailableAnswer, ConversationID: userID}, nil
	}

	s.record(userID, query, text)
	return &Answer{
		Answer:         text,
		Citations:      result.Citations,
		ConversationID: userID,
	}, nil
}

// record appends the question and answer to the user's history. Best
// effort: losing a history write never fails the answer.
func (s *Service) record(userID, query, answer string) {
	if turn, err := models.NewTurn(models.RoleUser, query); err == nil {
		if err := s.history.Append(userID, turn); err != nil {
			s.logger.Warn("recording user turn failed", zap.Error(err))
		}
	}
	if turn, err := models.NewTurn(models.RoleAssistant, answer); err == nil {
		if err := s.history.Append(userID, turn); err != nil {
			s.logger.Warn("recording assistant turn failed", zap.Error(err))
		}
	}
}

// History returns the user's recent turns, oldest first.
func (s *Service) History(userID string, limit int) ([]models.Turn, error) {
	return s.history.History(userID, limit)
}

// ClearHistory removes the user's conversation history.
func (s *Service) ClearHistory(userID string) error {
	return s.history.Clear(userID)
}

// Stats summarizes the stored corpus.
func (s *Service) Stats() (*store.Stats, error) {
	corpus, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return store.StatsFor(corpus), nil
}
