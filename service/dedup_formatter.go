package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ludo-technologies/lshdedup/domain"
)

// DedupRowsHeader is the header row of CSV dedup output
var DedupRowsHeader = []string{"record_id", "text", "group_id", "group_size"}

// DedupOutputFormatter implements the domain.DedupOutputFormatter interface
type DedupOutputFormatter struct {
	utils *FormatUtils
}

// NewDedupOutputFormatter creates a new dedup output formatter
func NewDedupOutputFormatter() *DedupOutputFormatter {
	return &DedupOutputFormatter{utils: NewFormatUtils()}
}

// FormatDedupResponse formats a grouping result. Text output lists only
// groups with more than one member unless showAll is set; CSV output always
// carries every row.
func (f *DedupOutputFormatter) FormatDedupResponse(response *domain.DedupResponse, format domain.OutputFormat, showAll bool, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		return f.dedupAsText(response, showAll, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.dedupAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatQueryResponse formats query matches
func (f *DedupOutputFormatter) FormatQueryResponse(response *domain.QueryResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		return f.queryAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		rows := [][]string{{"internal_id", "record_id", "similarity", "text"}}
		for _, m := range response.Matches {
			rows = append(rows, []string{
				strconv.Itoa(m.InternalID), m.RecordID, formatFloat(m.Similarity), m.Text,
			})
		}
		return writeCSV(writer, rows)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatCompareResponse formats a two-text comparison
func (f *DedupOutputFormatter) FormatCompareResponse(response *domain.CompareResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		var b strings.Builder
		b.WriteString(f.utils.FormatMainHeader("Similarity Comparison"))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Estimated (MinHash)", f.utils.FormatSimilarity(response.Estimated)))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Exact Jaccard", f.utils.FormatSimilarity(response.Exact)))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Absolute error", fmt.Sprintf("%.4f", response.AbsoluteError)))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Permutations", response.NumPerm))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Distinct tokens", fmt.Sprintf("%d / %d", response.Tokens1, response.Tokens2)))
		_, err := io.WriteString(writer, b.String())
		return err
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return writeCSV(writer, [][]string{
			{"estimated", "exact", "absolute_error", "num_perm", "tokens1", "tokens2"},
			{
				formatFloat(response.Estimated), formatFloat(response.Exact), formatFloat(response.AbsoluteError),
				strconv.Itoa(response.NumPerm), strconv.Itoa(response.Tokens1), strconv.Itoa(response.Tokens2),
			},
		})
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatStatsResponse formats index statistics and the candidate curve
func (f *DedupOutputFormatter) FormatStatsResponse(response *domain.StatsResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatText:
		return f.statsAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		rows := [][]string{{"similarity", "candidate_probability"}}
		for _, p := range response.Curve {
			rows = append(rows, []string{formatFloat(p.Similarity), formatFloat(p.CandidateProbability)})
		}
		return writeCSV(writer, rows)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *DedupOutputFormatter) dedupAsText(response *domain.DedupResponse, showAll bool, writer io.Writer) error {
	var b strings.Builder
	stats := response.Statistics
	params := response.Parameters

	b.WriteString(f.utils.FormatMainHeader("Near-Duplicate Groups"))

	b.WriteString(f.utils.FormatSectionHeader("Summary"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Total records", stats.TotalRecords))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Unique groups", stats.UniqueGroups))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duplicates removed", stats.DuplicatesRemoved))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duplicate groups", stats.DuplicateGroups))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Largest group", stats.LargestGroup))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Files read", stats.FilesRead))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Index build", f.utils.FormatDuration(stats.BuildDurationMs)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Grouping", f.utils.FormatDuration(stats.GroupDurationMs)))
	b.WriteString(f.utils.FormatSectionSeparator())

	b.WriteString(f.utils.FormatSectionHeader("Parameters"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Permutations", params.NumPerm))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Bands", fmt.Sprintf("%d x %d rows", params.NumBands, params.BandSize)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Threshold", f.utils.FormatThreshold(params.Threshold)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Curve midpoint", fmt.Sprintf("%.3f", params.ApproxThreshold)))
	if params.Seed != nil {
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Seed", *params.Seed))
	}
	b.WriteString(f.utils.FormatSectionSeparator())

	groups := response.Groups
	title := "Groups"
	if !showAll {
		groups = response.DuplicateGroupsOnly()
		title = "Duplicate Groups"
	}

	b.WriteString(f.utils.FormatSectionHeader(title))
	if len(groups) == 0 {
		b.WriteString("No near-duplicates found.\n")
		_, err := io.WriteString(writer, b.String())
		return err
	}

	rowsByID := make(map[int]domain.DedupRow, len(response.Rows))
	for _, row := range response.Rows {
		rowsByID[row.InternalID] = row
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "Group %d (%d records):\n", g.ID, g.Size)
		for _, id := range g.Members {
			row := rowsByID[id]
			fmt.Fprintf(&b, "%s%-12s %s\n", strings.Repeat(" ", ItemPadding),
				row.RecordID, f.utils.Preview(row.Text, PreviewWidth))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(writer, b.String())
	return err
}

func (f *DedupOutputFormatter) dedupAsCSV(response *domain.DedupResponse, writer io.Writer) error {
	rows := make([][]string, 0, len(response.Rows)+1)
	rows = append(rows, DedupRowsHeader)
	for _, row := range response.Rows {
		rows = append(rows, []string{
			row.RecordID, row.Text, strconv.Itoa(row.GroupID), strconv.Itoa(row.GroupSize),
		})
	}
	return writeCSV(writer, rows)
}

func (f *DedupOutputFormatter) queryAsText(response *domain.QueryResponse, writer io.Writer) error {
	var b strings.Builder
	b.WriteString(f.utils.FormatMainHeader("Query Results"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Query", f.utils.Preview(response.Text, PreviewWidth)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Threshold", f.utils.FormatThreshold(response.Threshold)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Indexed records", response.TotalRecords))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Matches", len(response.Matches)))
	b.WriteString(f.utils.FormatSectionSeparator())

	if len(response.Matches) == 0 {
		b.WriteString("No similar records found.\n")
	} else {
		b.WriteString(f.utils.FormatTableHeader("similarity", "id      ", "record_id   ", "text"))
		for _, m := range response.Matches {
			fmt.Fprintf(&b, "%s  %-8d  %-12s  %s\n",
				f.utils.FormatSimilarity(m.Similarity), m.InternalID, m.RecordID, f.utils.Preview(m.Text, PreviewWidth))
		}
	}

	_, err := io.WriteString(writer, b.String())
	return err
}

func (f *DedupOutputFormatter) statsAsText(response *domain.StatsResponse, writer io.Writer) error {
	var b strings.Builder
	idx := response.Index

	b.WriteString(f.utils.FormatMainHeader("LSH Index Statistics"))
	b.WriteString(f.utils.FormatSectionHeader("Index"))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Records", idx.NumRecords))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Bands", fmt.Sprintf("%d x %d rows (%d permutations)", idx.NumBands, idx.BandSize, idx.NumPerm)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Buckets", idx.NumBuckets))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Shared buckets", idx.SharedBuckets))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Bucket size min/max", fmt.Sprintf("%d / %d", idx.MinBucketSize, idx.MaxBucketSize)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Bucket size mean", fmt.Sprintf("%.2f (sd %.2f)", idx.AvgBucketSize, idx.StdDevBucketSize)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Bucket size median", fmt.Sprintf("%.1f", idx.MedianBucketSize)))
	b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Curve midpoint", fmt.Sprintf("%.3f", idx.ApproxThreshold)))
	b.WriteString(f.utils.FormatSectionSeparator())

	b.WriteString(f.utils.FormatSectionHeader("Candidate Probability"))
	for _, p := range response.Curve {
		fmt.Fprintf(&b, "%ss=%.1f  %6.2f%%\n", strings.Repeat(" ", SectionPadding), p.Similarity, p.CandidateProbability*100)
	}
	b.WriteString(f.utils.FormatSectionSeparator())

	if r := response.Rates; r != nil {
		b.WriteString(f.utils.FormatSectionHeader(fmt.Sprintf("At Threshold %.2f", r.Threshold)))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "False positive rate", fmt.Sprintf("%.2f%%", r.FalsePositiveRate*100)))
		b.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "False negative rate", fmt.Sprintf("%.2f%%", r.FalseNegativeRate*100)))
		b.WriteString(f.utils.FormatSectionSeparator())
	}

	if s := response.Suggestion; s != nil {
		b.WriteString(f.utils.FormatSectionHeader("Suggestion"))
		fmt.Fprintf(&b, "%sFor a target of %.2f use num_bands = %d (%d rows per band, midpoint %.3f)\n",
			strings.Repeat(" ", SectionPadding), s.Target, s.NumBands, s.BandSize, s.ApproxThreshold)
	}

	_, err := io.WriteString(writer, b.String())
	return err
}

func writeCSV(writer io.Writer, rows [][]string) error {
	w := csv.NewWriter(writer)
	if err := w.WriteAll(rows); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
