package ingest

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/supplier-cli/internal/model"
	"github.com/sells-group/supplier-cli/pkg/anthropic"
)

type fakeAnthropicClient struct {
	response string
	err      error
	lastReq  anthropic.MessageRequest
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.response}},
	}, nil
}

func testTable() *model.RawTable {
	return &model.RawTable{
		Columns: []string{"frn", "dly"},
		Rows:    [][]string{{"Acme", "3"}, {"Bolt", "1"}},
	}
}

func TestLLMStrategyParsesSuggestions(t *testing.T) {
	client := &fakeAnthropicClient{response: `Here are the mappings:
[
  {"source_column": "frn", "target_role": "supplier", "confidence": 0.85, "reasoning": "abbreviation of fournisseur"},
  {"source_column": "dly", "target_role": "delay", "confidence": 0.8, "reasoning": "abbreviation of delay"}
]`}
	s := &LLMStrategy{Client: client, Model: "claude-haiku-4-5-20251001"}

	analysis, err := s.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	require.Len(t, analysis.Mappings, 2)
	assert.Equal(t, model.RoleSupplier, analysis.Mappings[0].TargetRole)
	assert.Equal(t, model.RoleDelay, analysis.Mappings[1].TargetRole)
	assert.Equal(t, model.CaseDelayOnly, analysis.DetectedCase)
	assert.NotEmpty(t, client.lastReq.Messages)
}

func TestLLMStrategyFallsBackOnError(t *testing.T) {
	s := &LLMStrategy{
		Client:   &fakeAnthropicClient{err: eris.New("api down")},
		Model:    "claude-haiku-4-5-20251001",
		Fallback: &PatternStrategy{},
	}

	analysis, err := s.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.Len(t, analysis.Mappings, 2, "pattern fallback still maps every column")
}

func TestLLMStrategyFallsBackOnGarbageResponse(t *testing.T) {
	s := &LLMStrategy{
		Client: &fakeAnthropicClient{response: "I cannot help with that."},
		Model:  "claude-haiku-4-5-20251001",
	}

	analysis, err := s.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.Len(t, analysis.Mappings, 2)
}

func TestLLMStrategyRejectsUnknownRole(t *testing.T) {
	_, err := parseMappingResponse(
		`[{"source_column": "frn", "target_role": "martian", "confidence": 0.9}]`,
		testTable(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "martian")
}

func TestLLMStrategyRejectsUnknownColumn(t *testing.T) {
	_, err := parseMappingResponse(
		`[{"source_column": "ghost", "target_role": "supplier", "confidence": 0.9}]`,
		testTable(),
	)
	assert.Error(t, err)
}

func TestParseMappingResponseFillsSkippedColumns(t *testing.T) {
	mappings, err := parseMappingResponse(
		`[{"source_column": "frn", "target_role": "supplier", "confidence": 1.7}]`,
		testTable(),
	)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.InDelta(t, 1.0, mappings[0].Confidence, 1e-9, "confidence is clamped")
	assert.Equal(t, model.RoleIgnore, mappings[1].TargetRole)
	assert.Equal(t, "dly", mappings[1].SourceColumn)
}

func TestLLMStrategyNoClient(t *testing.T) {
	s := &LLMStrategy{}
	analysis, err := s.Analyze(context.Background(), testTable())
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Mappings, "defaults to pattern strategy")
}
