package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/ludo-technologies/lshdedup/app"
	"github.com/ludo-technologies/lshdedup/domain"
	"github.com/ludo-technologies/lshdedup/internal/constants"
	"github.com/mark3labs/mcp-go/mcp"
)

const defaultMaxGroups = 50

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies("", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleDedupeRecords handles the dedupe_records tool
func (h *HandlerSet) HandleDedupeRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	req, errResult := args.dedupRequest(h.deps.ConfigPath())
	if errResult != nil {
		return errResult, nil
	}
	maxGroups, err := args.intOr("max_groups", defaultMaxGroups)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	req.OutputWriter = &buf
	if err := h.run(args, func(uc *app.DedupUseCase) error {
		return uc.Execute(ctx, *req)
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("dedupe failed: %v", err)), nil
	}

	if args.stringOr("output_mode", "summary") == "full" {
		return mcp.NewToolResultText(buf.String()), nil
	}

	var resp domain.DedupResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode report: %v", err)), nil
	}
	return jsonResult(formatDedupSummary(&resp, maxGroups))
}

// HandleQueryRecords handles the query_records tool
func (h *HandlerSet) HandleQueryRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	text, ok := args.raw["text"].(string)
	if !ok || text == "" {
		return mcp.NewToolResultError("text parameter is required and must be a non-empty string"), nil
	}
	req, errResult := args.dedupRequest(h.deps.ConfigPath())
	if errResult != nil {
		return errResult, nil
	}

	var buf bytes.Buffer
	req.OutputWriter = &buf
	queryReq := domain.QueryRequest{DedupRequest: *req, Text: text, Raw: args.boolOr("raw", false)}
	if err := h.run(args, func(uc *app.DedupUseCase) error {
		return uc.Query(ctx, queryReq)
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// HandleCompareTexts handles the compare_texts tool
func (h *HandlerSet) HandleCompareTexts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	text1, ok1 := args.raw["text1"].(string)
	text2, ok2 := args.raw["text2"].(string)
	if !ok1 || !ok2 {
		return mcp.NewToolResultError("text1 and text2 parameters are required and must be strings"), nil
	}

	numPerm, err := args.intOr("num_perm", constants.DefaultNumPerm)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seed, err := args.seed()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	req := domain.CompareRequest{
		Text1:        text1,
		Text2:        text2,
		NumPerm:      numPerm,
		Seed:         seed,
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &buf,
	}
	if err := h.run(args, func(uc *app.DedupUseCase) error {
		return uc.Compare(ctx, req)
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compare failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// HandleIndexStats handles the index_stats tool
func (h *HandlerSet) HandleIndexStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, errResult := parseArgs(request)
	if errResult != nil {
		return errResult, nil
	}
	req, errResult := args.dedupRequest(h.deps.ConfigPath())
	if errResult != nil {
		return errResult, nil
	}

	var buf bytes.Buffer
	req.OutputWriter = &buf
	statsReq := domain.StatsRequest{DedupRequest: *req}
	if target, ok := args.number("target"); ok {
		statsReq.Target = domain.Float64Ptr(target)
	}
	if err := h.run(args, func(uc *app.DedupUseCase) error {
		return uc.Stats(ctx, statsReq)
	}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *HandlerSet) run(args *toolArgs, call func(*app.DedupUseCase) error) error {
	uc, err := h.deps.BuildUseCase(args.explicit)
	if err != nil {
		return err
	}
	return call(uc)
}

// toolArgs wraps the raw argument map and records which engine settings the
// caller supplied, keyed by their command-line flag names
type toolArgs struct {
	raw      map[string]interface{}
	explicit map[string]bool
}

func parseArgs(request mcp.CallToolRequest) (*toolArgs, *mcp.CallToolResult) {
	raw, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}
	// Reports always come back as JSON on the tool result
	return &toolArgs{raw: raw, explicit: map[string]bool{"format": true}}, nil
}

// argFlags maps tool argument names to the flags they stand in for
var argFlags = map[string]string{
	"recursive":   "recursive",
	"has_header":  "header",
	"id_column":   "id-column",
	"text_column": "text-column",
	"num_perm":    "num-perm",
	"num_bands":   "num-bands",
	"threshold":   "threshold",
	"raw":         "raw",
	"seed":        "seed",
}

// dedupRequest builds the request for tools that index a path
func (a *toolArgs) dedupRequest(configPath string) (*domain.DedupRequest, *mcp.CallToolResult) {
	path, ok := a.raw["path"].(string)
	if !ok {
		return nil, mcp.NewToolResultError("path parameter is required and must be a string")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path))
	}

	for name, flag := range argFlags {
		if _, ok := a.raw[name]; ok {
			a.explicit[flag] = true
		}
	}

	req := domain.DefaultDedupRequest()
	req.Paths = []string{path}
	req.Recursive = a.boolOr("recursive", req.Recursive)
	req.HasHeader = a.boolOr("has_header", req.HasHeader)
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"id_column", &req.IDColumn},
		{"text_column", &req.TextColumn},
		{"num_perm", &req.NumPerm},
		{"num_bands", &req.NumBands},
	} {
		v, err := a.intOr(field.name, *field.dst)
		if err != nil {
			return nil, mcp.NewToolResultError(err.Error())
		}
		*field.dst = v
	}
	if threshold, ok := a.number("threshold"); ok {
		req.Threshold = domain.Float64Ptr(threshold)
	}
	if a.boolOr("raw", false) {
		req.Threshold = nil
	}
	seed, err := a.seed()
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	req.Seed = seed
	req.OutputFormat = domain.OutputFormatJSON
	req.OutputPath = app.StdoutPath
	req.ConfigPath = configPath
	return req, nil
}

// JSON numbers decode as float64
func (a *toolArgs) number(name string) (float64, bool) {
	v, ok := a.raw[name].(float64)
	return v, ok
}

// wholeNumber reads a non-negative integral argument no larger than limit
func (a *toolArgs) wholeNumber(name string, limit float64) (float64, bool, error) {
	v, ok := a.number(name)
	if !ok {
		return 0, false, nil
	}
	if !(v >= 0 && v <= limit) || v != math.Trunc(v) {
		return 0, false, fmt.Errorf("%s must be a non-negative whole number, got %v", name, v)
	}
	return v, true, nil
}

func (a *toolArgs) intOr(name string, def int) (int, error) {
	v, ok, err := a.wholeNumber(name, math.MaxInt32)
	if err != nil || !ok {
		return def, err
	}
	return int(v), nil
}

// seed returns nil when the caller left the seed out. Values at or above
// 2^64 do not fit a uint64.
func (a *toolArgs) seed() (*uint64, error) {
	v, ok, err := a.wholeNumber("seed", math.Nextafter(1<<64, 0))
	if err != nil || !ok {
		return nil, err
	}
	return domain.Uint64Ptr(uint64(v)), nil
}

func (a *toolArgs) boolOr(name string, def bool) bool {
	if v, ok := a.raw[name].(bool); ok {
		return v
	}
	return def
}

func (a *toolArgs) stringOr(name string, def string) string {
	if v, ok := a.raw[name].(string); ok {
		return v
	}
	return def
}

// formatDedupSummary keeps statistics, parameters and the duplicate groups
// with their record ids
func formatDedupSummary(resp *domain.DedupResponse, maxGroups int) map[string]interface{} {
	recordIDs := make(map[int]string, len(resp.Rows))
	for _, row := range resp.Rows {
		recordIDs[row.InternalID] = row.RecordID
	}

	dups := resp.DuplicateGroupsOnly()
	truncated := maxGroups > 0 && len(dups) > maxGroups
	if truncated {
		dups = dups[:maxGroups]
	}
	groups := make([]map[string]interface{}, 0, len(dups))
	for _, g := range dups {
		ids := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			ids = append(ids, recordIDs[m])
		}
		groups = append(groups, map[string]interface{}{
			"group_id":   g.ID,
			"size":       g.Size,
			"members":    g.Members,
			"record_ids": ids,
		})
	}

	return map[string]interface{}{
		"run_id":           resp.RunID,
		"statistics":       resp.Statistics,
		"parameters":       resp.Parameters,
		"duplicate_groups": groups,
		"truncated":        truncated,
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
