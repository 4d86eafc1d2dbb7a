package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/brandlens/internal/aggregate"
	"github.com/ppiankov/brandlens/internal/collect"
	"github.com/ppiankov/brandlens/internal/model"
)

// Renderer writes run reports
type Renderer struct{}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderJSON writes the full run result as indented JSON
func (r *Renderer) RenderJSON(res *RunResult, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// LoadRunResult reads a report written by RenderJSON
func LoadRunResult(path string) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var res RunResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &res, nil
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(res *RunResult, path string) error {
	return writeFile(path, []byte(r.Markdown(res)))
}

// Markdown renders the report body
func (r *Renderer) Markdown(res *RunResult) string {
	agg := res.Aggregate
	var sb strings.Builder

	fmt.Fprintf(&sb, "# AI Visibility Report: %s\n\n", agg.BrandName)
	fmt.Fprintf(&sb, "**%s**\n\n", agg.ExecutiveSummary.Headline)
	fmt.Fprintf(&sb, "- Run: `%s`\n", res.Brief.RunID)
	if agg.Industry != "" {
		fmt.Fprintf(&sb, "- Industry: %s\n", agg.Industry)
	}
	fmt.Fprintf(&sb, "- Questions: %d\n", agg.NumQuestionsProcessed)
	fmt.Fprintf(&sb, "- Visibility score: %s\n", aggregate.FormatNumber(agg.VisibilityScore))
	fmt.Fprintf(&sb, "- Coverage: %s%%\n", aggregate.FormatNumber(agg.BrandCoverage))
	if agg.BrandRank > 0 {
		fmt.Fprintf(&sb, "- Rank: #%d (share of voice %s%%)\n", agg.BrandRank, aggregate.FormatNumber(agg.BrandSOV))
	} else {
		sb.WriteString("- Rank: not ranked\n")
	}
	fmt.Fprintf(&sb, "- Best / worst model: %s / %s\n\n", agg.BestModel, agg.WorstModel)

	sb.WriteString("## Platforms\n\n")
	sb.WriteString("| Platform | Score | Mention | Sentiment | Recommendation |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, p := range model.Providers {
		s := agg.PlatformsSummary[p]
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n", p.DisplayName(),
			aggregate.FormatNumber(s.Score), aggregate.FormatNumber(s.Mention),
			aggregate.FormatNumber(s.Sentiment), aggregate.FormatNumber(s.Recommendation))
	}

	c := agg.PlatformConsistency
	consistent := "inconsistent"
	if c.IsConsistent {
		consistent = "consistent"
	}
	fmt.Fprintf(&sb, "\nConsistency: %s (spread %s, strongest %s, weakest %s)\n\n",
		consistent, aggregate.FormatNumber(c.Variance), c.Strongest.DisplayName(), c.Weakest.DisplayName())

	if len(agg.BrandRankings) > 0 {
		sb.WriteString("## Share of Voice\n\n")
		sb.WriteString("| # | Brand | Mentions | Share |\n")
		sb.WriteString("|---|---|---|---|\n")
		for i, b := range agg.BrandRankings {
			name := b.Brand
			if b.IsTrackedBrand {
				name = "**" + name + "**"
			}
			fmt.Fprintf(&sb, "| %d | %s | %d | %s%% |\n", i+1, name, b.Mentions, aggregate.FormatNumber(b.ShareOfVoice))
		}
		sb.WriteString("\n")
	}

	if len(agg.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for _, rec := range agg.Recommendations {
			fmt.Fprintf(&sb, "- [%s] %s (%s)\n", rec.Priority, rec.Action, rec.Detail)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Questions\n\n")
	for _, q := range agg.QuestionBreakdown {
		mark := "✗"
		if q.M == 1 {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "%d. %s %s [%s] %s\n", q.Q, mark, q.Text, q.Category, q.P)
	}

	return sb.String()
}

// RenderSummary prints the terminal summary
func (r *Renderer) RenderSummary(w io.Writer, res *RunResult) {
	agg := res.Aggregate

	failed := 0
	for _, q := range res.Results {
		for _, p := range model.Providers {
			if collect.IsSentinel(q.AnswerText(p)) {
				failed++
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\n%s\n", agg.ExecutiveSummary.Headline)
	_, _ = fmt.Fprintf(w, "  Visibility score: %s\n", aggregate.FormatNumber(agg.VisibilityScore))
	_, _ = fmt.Fprintf(w, "  Brand coverage:   %s%%\n", aggregate.FormatNumber(agg.BrandCoverage))
	if agg.BrandRank > 0 {
		_, _ = fmt.Fprintf(w, "  Rank:             #%d (%s%% share of voice)\n", agg.BrandRank, aggregate.FormatNumber(agg.BrandSOV))
	}
	_, _ = fmt.Fprintf(w, "  Best / worst:     %s / %s\n", agg.BestModel, agg.WorstModel)
	_, _ = fmt.Fprintf(w, "  Questions:        %d (%d provider failures)\n", agg.NumQuestionsProcessed, failed)
	if res.Persistence.Unwritten > 0 {
		_, _ = fmt.Fprintf(w, "  Not persisted:    %d records\n", res.Persistence.Unwritten)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
