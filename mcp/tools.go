package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers the lshdedup tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	if h == nil {
		h = NewHandlerSet(nil)
	}

	s.AddTool(mcp.NewTool("dedupe_records",
		indexToolOptions("Group near-duplicate text records from CSV/TSV files using MinHash and banded LSH",
			mcp.WithString("output_mode",
				mcp.Description("summary (duplicate groups only) or full (every row). Default: summary")),
			mcp.WithNumber("max_groups",
				mcp.Description("Maximum duplicate groups in summary mode, 0 = no limit (default: 50)")),
		)...,
	), h.HandleDedupeRecords)

	s.AddTool(mcp.NewTool("query_records",
		indexToolOptions("Find indexed records similar to a text that is not part of the index",
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Text to look up")),
		)...,
	), h.HandleQueryRecords)

	s.AddTool(mcp.NewTool("compare_texts",
		mcp.WithDescription("Estimate the Jaccard similarity of two texts and report the exact value"),
		mcp.WithString("text1",
			mcp.Required(),
			mcp.Description("First text")),
		mcp.WithString("text2",
			mcp.Required(),
			mcp.Description("Second text")),
		mcp.WithNumber("num_perm",
			mcp.Description("MinHash signature length (default: 64)")),
		mcp.WithNumber("seed",
			mcp.Description("Seed for reproducible permutations")),
	), h.HandleCompareTexts)

	s.AddTool(mcp.NewTool("index_stats",
		indexToolOptions("Describe LSH bucket occupancy and the candidate probability curve for a record set",
			mcp.WithNumber("target",
				mcp.Description("Similarity target 0.0-1.0; suggests the closest band count")),
		)...,
	), h.HandleIndexStats)
}

// indexToolOptions builds the description and the options shared by tools
// that index a path, followed by extra
func indexToolOptions(description string, extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Record file or directory of .csv/.tsv files (optionally compressed)")),
		mcp.WithBoolean("recursive",
			mcp.Description("Descend into subdirectories (default: true)")),
		mcp.WithBoolean("has_header",
			mcp.Description("Skip the first row of every file")),
		mcp.WithNumber("id_column",
			mcp.Description("Zero-based column holding the record id (default: 0)")),
		mcp.WithNumber("text_column",
			mcp.Description("Zero-based column holding the record text (default: 1)")),
		mcp.WithNumber("num_perm",
			mcp.Description("MinHash signature length (default: 64)")),
		mcp.WithNumber("num_bands",
			mcp.Description("Number of LSH bands; must divide num_perm (default: 16)")),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum estimated similarity 0.0-1.0 (default: 0.49)")),
		mcp.WithBoolean("raw",
			mcp.Description("Link every LSH candidate and ignore threshold")),
		mcp.WithNumber("seed",
			mcp.Description("Seed for reproducible permutations")),
	}
	return append(opts, extra...)
}
