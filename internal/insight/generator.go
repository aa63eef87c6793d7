// Package insight turns a period summary into short, light-hearted comments
// using a text-generation client. Generation degrades through progressively
// simpler prompts and finally a static list, so callers always get
// something to show.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/money-tracker/internal/llm"
	"github.com/Veraticus/money-tracker/internal/report"
)

// maxInsights is the most lines kept from a generated response.
const maxInsights = 4

var (
	staticInsights = []string{
		"AI is resting, but you're still awesome! ✨😊",
		"AI connection has issues, but spirits are high! 💪🚀",
	}
	unparsedInsights = []string{
		"AI is on leave today, see you next time! 🤖✨",
	}
	staticCustom = []string{
		"AI is busy, try again later! 🤖💭",
		"AI connection error, check your network! 📶❌",
	}
)

// Summary is the input to insight generation.
type Summary struct {
	Month              string
	TopExpenseCategory string
	Income             float64
	Expense            float64
	TransactionCount   int
}

// Balance is income minus expense.
func (s Summary) Balance() float64 {
	return s.Income - s.Expense
}

// FromReport converts a report summary.
func FromReport(s *report.Summary) Summary {
	return Summary{
		Month:              s.Period.Label,
		TopExpenseCategory: s.TopExpenseCategory,
		Income:             s.Income,
		Expense:            s.Expense,
		TransactionCount:   s.TransactionCount,
	}
}

// Generator produces insights with a remote client, or rule-based ones when
// disabled.
type Generator struct {
	client   llm.Client
	logger   *slog.Logger
	disabled bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to report tier failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a generator backed by client. A nil client always yields the
// static fallback list.
func New(client llm.Client, opts ...Option) *Generator {
	g := &Generator{client: client, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Disabled returns a generator that never calls out and answers with
// report.BasicInsights instead.
func Disabled() *Generator {
	return &Generator{disabled: true, logger: slog.Default()}
}

// tier is one attempt in the fallback chain.
type tier struct {
	name    string
	request llm.Request
}

// Generate never fails. Each tier is tried in order until one yields at least
// one usable line.
func (g *Generator) Generate(ctx context.Context, s Summary) []string {
	if g.disabled {
		return report.BasicInsights(report.Summary{
			Income:             s.Income,
			Expense:            s.Expense,
			TopExpenseCategory: s.TopExpenseCategory,
		})
	}
	if g.client == nil {
		return clone(staticInsights)
	}

	tiers := []tier{
		{name: "detailed", request: llm.Request{
			Prompt: detailedPrompt(s), Temperature: 0.8, TopK: 40, TopP: 0.95, MaxTokens: 1024,
		}},
		{name: "simple", request: llm.Request{
			Prompt: simplePrompt(s), Temperature: 0.7, MaxTokens: 200,
		}},
		{name: "minimal", request: llm.Request{
			Prompt: minimalPrompt(s), Temperature: 0.8, MaxTokens: 50,
		}},
	}

	for _, t := range tiers {
		if ctx.Err() != nil {
			break
		}
		lines, err := g.attempt(ctx, t.request)
		if err == nil {
			return lines
		}
		g.logger.Warn("Insight generation failed, falling back",
			"tier", t.name,
			"error", err)
	}

	return clone(staticInsights)
}

// GenerateCustom sends a free-form prompt. It falls back to a static list on
// any failure and to a single placeholder when the response has no usable
// lines.
func (g *Generator) GenerateCustom(ctx context.Context, prompt string) []string {
	if g.disabled || g.client == nil {
		return clone(staticCustom)
	}

	text, err := g.client.Generate(ctx, llm.Request{
		Prompt: prompt, Temperature: 0.9, TopK: 40, TopP: 0.95, MaxTokens: 512,
	})
	if err != nil {
		g.logger.Warn("Custom insight generation failed", "error", err)
		return clone(staticCustom)
	}

	lines := parseInsights(text)
	if len(lines) == 0 {
		return clone(unparsedInsights)
	}
	return lines
}

func (g *Generator) attempt(ctx context.Context, req llm.Request) ([]string, error) {
	text, err := g.client.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	lines := parseInsights(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("response had no usable lines")
	}
	return lines, nil
}

// parseInsights splits a response into at most maxInsights trimmed lines,
// dropping blanks and list markers.
func parseInsights(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = stripMarker(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == maxInsights {
			break
		}
	}
	return lines
}

// stripMarker removes a leading bullet ("-", "*", "•") or number ("1.", "2)").
func stripMarker(line string) string {
	for _, bullet := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(line, bullet); ok {
			return strings.TrimSpace(rest)
		}
	}

	digits := 0
	for digits < len(line) && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	if digits > 0 && digits < len(line) && (line[digits] == '.' || line[digits] == ')') {
		return strings.TrimSpace(line[digits+1:])
	}
	return line
}

func clone(lines []string) []string {
	return append([]string(nil), lines...)
}
