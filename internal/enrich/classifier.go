// Package enrich classifies facility court types (indoor, outdoor, both)
// using an LLM over the facility's name, address, and website.
package enrich

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/model"
	"github.com/padel-insights/market-cli/internal/store"
)

const systemPrompt = `You classify padel facilities by court type. Answer with exactly one word:
"indoor" if all courts are covered, "outdoor" if all courts are open-air,
"both" if the facility has covered and open-air courts, or "unknown" if the
information given is not enough to decide.`

// llm is the narrow completion surface the classifier needs; tests stub it.
type llm interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Classifier assigns a CourtType to facilities that have none yet.
type Classifier struct {
	llm   llm
	store store.Store
}

// NewClassifier creates a Classifier backed by the Anthropic API.
func NewClassifier(apiKey, model string, st store.Store) *Classifier {
	return &Classifier{
		llm:   &anthropicLLM{client: sdk.NewClient(option.WithAPIKey(apiKey)), model: model},
		store: st,
	}
}

// Classify determines the court type for one facility. An unparseable answer
// is a data gap, not an error: the facility stays unknown.
func (c *Classifier) Classify(ctx context.Context, f model.Facility) (model.CourtType, error) {
	answer, err := c.llm.Complete(ctx, systemPrompt, classifyPrompt(f))
	if err != nil {
		return model.CourtTypeUnknown, err
	}

	courtType, ok := model.ParseCourtType(answer)
	if !ok {
		zap.L().Warn("enrich: unparseable court type answer",
			zap.String("place_id", f.PlaceID),
			zap.String("answer", answer),
		)
		return model.CourtTypeUnknown, nil
	}
	return courtType, nil
}

// Run classifies every unclassified facility in the list and persists the
// results. Individual failures are logged and skipped; the run reports how
// many facilities were classified.
func (c *Classifier) Run(ctx context.Context, facilities []model.Facility) (int, error) {
	classified := 0
	for _, f := range facilities {
		if f.CourtType != model.CourtTypeUnknown {
			continue
		}
		if err := ctx.Err(); err != nil {
			return classified, eris.Wrap(err, "enrich: run canceled")
		}

		courtType, err := c.Classify(ctx, f)
		if err != nil {
			zap.L().Warn("enrich: classification failed",
				zap.String("place_id", f.PlaceID),
				zap.Error(err),
			)
			continue
		}
		if courtType == model.CourtTypeUnknown {
			continue
		}

		if err := c.store.UpdateCourtType(ctx, f.PlaceID, courtType); err != nil {
			return classified, err
		}
		classified++
	}

	zap.L().Info("enrich: run complete",
		zap.Int("facilities", len(facilities)),
		zap.Int("classified", classified),
	)
	return classified, nil
}

func classifyPrompt(f model.Facility) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Facility: %s\n", f.Name)
	fmt.Fprintf(&b, "Address: %s\n", f.Address)
	if f.Website != "" {
		fmt.Fprintf(&b, "Website: %s\n", f.Website)
	}
	b.WriteString("Court type?")
	return b.String()
}

// anthropicLLM implements llm using the official anthropic-sdk-go.
type anthropicLLM struct {
	client sdk.Client
	model  string
}

func (a *anthropicLLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: 16,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: create message")
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", eris.New("enrich: no text content in response")
}
