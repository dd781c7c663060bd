package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ludo-technologies/lshdedup/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTools(t *testing.T) {
	s := server.NewMCPServer("lshdedup", "test", server.WithToolCapabilities(true))
	mcp.RegisterTools(s, nil)

	resp := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var listed struct {
		Result struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				InputSchema struct {
					Properties map[string]interface{} `json:"properties"`
					Required   []string               `json:"required"`
				} `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &listed))

	tools := make(map[string]int)
	for i, tool := range listed.Result.Tools {
		tools[tool.Name] = i
	}
	require.Len(t, tools, 4, string(data))

	for _, name := range []string{"dedupe_records", "query_records", "index_stats"} {
		require.Contains(t, tools, name)
		tool := listed.Result.Tools[tools[name]]
		assert.NotEmpty(t, tool.Description, name)
		assert.Contains(t, tool.InputSchema.Required, "path", name)
		for _, prop := range []string{"num_perm", "num_bands", "threshold", "seed", "raw"} {
			assert.Contains(t, tool.InputSchema.Properties, prop, name)
		}
	}
	assert.Contains(t, listed.Result.Tools[tools["dedupe_records"]].InputSchema.Properties, "max_groups")
	assert.Contains(t, listed.Result.Tools[tools["query_records"]].InputSchema.Required, "text")
	assert.Contains(t, listed.Result.Tools[tools["index_stats"]].InputSchema.Properties, "target")

	require.Contains(t, tools, "compare_texts")
	assert.ElementsMatch(t, []string{"text1", "text2"}, listed.Result.Tools[tools["compare_texts"]].InputSchema.Required)
}
