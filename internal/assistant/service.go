// Package assistant implements the question-answering core: intent
// classification, hybrid retrieval, result fusion, context rendering and
// answer generation.
//
// Questions route through an ordered rule list; routed intents run exact
// store queries, everything else takes the semantic path over the vector
// collections. Retrieval is fully deterministic up to the generation call.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smarslabs/assistd/internal/inference"
)

// ErrEmptyQuestion is returned when the question is blank.
var ErrEmptyQuestion = errors.New("question is required")

// Answer is the assembled response to one question.
type Answer struct {
	// Answer is the generated text.
	Answer string `json:"answer"`

	// Context is the exact context block the model saw.
	Context string `json:"context"`

	// Sources are the retrieved records behind the answer, in ranked
	// order for the semantic path and query order for routed intents.
	Sources []Result `json:"sources"`
}

// Service orchestrates one question end to end.
type Service struct {
	structured *StructuredRetriever
	semantic   *SemanticRetriever
	generator  inference.Generator
	fuseLimit  int
	logger     *zap.Logger
}

// NewService wires the question-answering pipeline.
func NewService(structured *StructuredRetriever, semantic *SemanticRetriever, generator inference.Generator, fuseLimit int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		structured: structured,
		semantic:   semantic,
		generator:  generator,
		fuseLimit:  fuseLimit,
		logger:     logger,
	}
}

// Ask answers a question for the given user: classify, retrieve, fuse,
// render context, compose the prompt and generate. Any retrieval or
// generation failure aborts the whole question; there is no partial answer.
func (s *Service) Ask(ctx context.Context, userID, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	intent := Classify(question)
	log := s.logger.With(
		zap.String("user_id", userID),
		zap.String("intent", string(intent)),
	)

	retrieveStart := time.Now()
	var sources, notes, tasks []Result
	var err error
	if intent == IntentGeneric {
		var noteHits, taskHits, dated []Result
		noteHits, taskHits, dated, err = s.semantic.Retrieve(ctx, userID, question)
		if err == nil {
			sources = Fuse(noteHits, taskHits, dated, s.fuseLimit)
			notes, tasks = SplitByKind(sources)
		}
	} else {
		sources, err = s.structured.Retrieve(ctx, userID, intent, question)
		if err == nil {
			notes, tasks = SplitByKind(sources)
		}
	}
	if err != nil {
		askTotal.WithLabelValues(string(intent), "retrieval_error").Inc()
		log.Error("retrieval failed", zap.Error(err))
		return nil, err
	}
	stageDuration.WithLabelValues("retrieval").Observe(time.Since(retrieveStart).Seconds())

	contextText := BuildContext(tasks, notes)
	prompt := ComposePrompt(intent, contextText, question)

	generateStart := time.Now()
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		askTotal.WithLabelValues(string(intent), "generation_error").Inc()
		log.Error("generation failed", zap.Error(err))
		return nil, err
	}
	stageDuration.WithLabelValues("generation").Observe(time.Since(generateStart).Seconds())
	askTotal.WithLabelValues(string(intent), "ok").Inc()

	log.Info("question answered",
		zap.Int("sources", len(sources)),
		zap.Int("context_bytes", len(contextText)),
	)

	if sources == nil {
		sources = []Result{}
	}
	return &Answer{
		Answer:  strings.TrimSpace(answer),
		Context: contextText,
		Sources: sources,
	}, nil
}
