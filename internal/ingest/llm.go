package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

const mappingSystemPrompt = `You map columns of supplier delivery data to a canonical schema.
Valid target roles: supplier, date_promised, date_delivered, order_date, delay,
defects, quality_score, defect_count, total_count, good_count, ignore.
Respond with a JSON array only, one object per input column:
[{"source_column": "...", "target_role": "...", "confidence": 0.0-1.0, "reasoning": "..."}]`

// LLMStrategy asks a language model to suggest column mappings, falling back
// to the deterministic strategy whenever the model is unavailable or its
// answer cannot be used. It is an optional enhancement: correctness never
// depends on it, because suggestions from either strategy go through the
// same review and the same ValidateApproved gate.
type LLMStrategy struct {
	Client    anthropic.Client
	Model     string
	MaxTokens int64
	Fallback  Strategy
}

// Analyze implements Strategy.
func (s *LLMStrategy) Analyze(ctx context.Context, table *model.RawTable) (*Analysis, error) {
	fallback := s.Fallback
	if fallback == nil {
		fallback = &PatternStrategy{}
	}

	mappings, err := s.suggest(ctx, table)
	if err != nil {
		zap.S().Warnw("ingest: llm mapping failed, using pattern strategy", "error", err)
		return fallback.Analyze(ctx, table)
	}

	// Reuse the deterministic pass for column profiles, then overlay the
	// model's role suggestions.
	analysis, err := fallback.Analyze(ctx, table)
	if err != nil {
		return nil, err
	}
	analysis.Mappings = mappings
	analysis.DetectedCase = detectCase(mappings)
	analysis.Issues = checkMappingIssues(mappings, analysis.DetectedCase)
	analysis.Recommendation = recommendation(analysis.DetectedCase, analysis.Issues)
	return analysis, nil
}

func (s *LLMStrategy) suggest(ctx context.Context, table *model.RawTable) ([]model.ColumnMapping, error) {
	if s.Client == nil {
		return nil, eris.New("ingest: no anthropic client configured")
	}
	if table == nil || len(table.Columns) == 0 {
		return nil, eris.New("ingest: empty table")
	}

	maxTokens := s.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	resp, err := s.Client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.Model,
		MaxTokens: maxTokens,
		System:    []anthropic.SystemBlock{{Text: mappingSystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: describeTable(table)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "ingest: mapping suggestion request")
	}
	resp.Usage.LogCost(s.Model, "column_mapping")

	mappings, err := parseMappingResponse(resp.Text(), table)
	if err != nil {
		return nil, err
	}
	return mappings, nil
}

// describeTable renders the columns and a few sample values per column for
// the prompt.
func describeTable(table *model.RawTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The table has %d rows and these columns:\n", table.NumRows())
	for _, col := range table.Columns {
		values, _ := table.Column(col)
		samples, _, _ := sampleColumn(values, 5)
		fmt.Fprintf(&b, "- %q, samples: %s\n", col, strings.Join(samples, ", "))
	}
	return b.String()
}

// parseMappingResponse extracts and validates the JSON array in the model's
// reply. Every column of the table must be covered and every role must be
// known; anything else is an error that triggers the fallback.
func parseMappingResponse(text string, table *model.RawTable) ([]model.ColumnMapping, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, eris.New("ingest: no JSON array in model response")
	}

	var mappings []model.ColumnMapping
	if err := json.Unmarshal([]byte(text[start:end+1]), &mappings); err != nil {
		return nil, eris.Wrap(err, "ingest: decode mapping suggestions")
	}

	byColumn := make(map[string]model.ColumnMapping, len(mappings))
	for _, m := range mappings {
		if !m.TargetRole.Valid() {
			return nil, eris.Errorf("ingest: model suggested unknown role %q", m.TargetRole)
		}
		if table.ColumnIndex(m.SourceColumn) < 0 {
			return nil, eris.Errorf("ingest: model referenced unknown column %q", m.SourceColumn)
		}
		byColumn[m.SourceColumn] = m
	}

	// Keep table column order and fill in columns the model skipped.
	out := make([]model.ColumnMapping, 0, len(table.Columns))
	for _, col := range table.Columns {
		m, ok := byColumn[col]
		if !ok {
			m = model.ColumnMapping{
				SourceColumn: col,
				TargetRole:   model.RoleIgnore,
				Confidence:   0.2,
				Reasoning:    "not mapped by model",
			}
		}
		m.Confidence = clamp(m.Confidence, 0, 1)
		out = append(out, m)
	}
	return out, nil
}
