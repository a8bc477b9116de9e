package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"

	jmespath "github.com/nozzle/jmespath"
	"github.com/nozzle/jmespath/internal/jplog"
)

// maxCellWidth bounds a single table cell's display width before it is
// truncated with an ellipsis, so one huge result doesn't blow out every
// row's column alignment.
const maxCellWidth = 60

// runExplain decodes raw as a list of documents, evaluates program against
// each one concurrently via jmespath.EvaluateAll (spec.md §5's
// independent-concurrent-evaluation guarantee), and prints one row per
// input in a column-aligned table — the "multi-result listing" DESIGN.md
// commits go-runewidth/uniseg to, since naive len()-based padding
// misaligns as soon as a result contains a wide CJK character or a
// multi-rune emoji grapheme cluster.
func runExplain(program *jmespath.Program, raw []byte, cfg config, log jplog.Logger, stdout, stderr io.Writer, useColor bool) int {
	docs, err := decodeMany(raw, cfg.yamlIn)
	if err != nil {
		fmt.Fprintln(stderr, renderError(err, useColor))
		return 1
	}
	log.Infof("evaluating against %d documents", len(docs))

	results := make([]string, len(docs))
	errs := make([]error, len(docs))
	ctx := context.Background()
	values, evalErr := jmespath.EvaluateAll(ctx, program, docs)
	if evalErr != nil {
		// EvaluateAll is fail-fast: one bad document aborts the batch, so
		// fall back to evaluating one at a time to report every row's own
		// outcome instead of losing the rest to the first failure.
		for i, doc := range docs {
			v, err := jmespath.Evaluate(program, doc)
			if err != nil {
				errs[i] = err
				continue
			}
			results[i] = renderCell(v, cfg.yamlOut)
		}
	} else {
		for i, v := range values {
			results[i] = renderCell(v, cfg.yamlOut)
		}
	}

	printTable(stdout, results, errs)
	for _, err := range errs {
		if err != nil {
			return 1
		}
	}
	return 0
}

func decodeMany(raw []byte, asYAML bool) ([]any, error) {
	if asYAML {
		var docs []any
		dec := yaml.NewDecoder(strings.NewReader(string(raw)))
		for {
			var v any
			if err := dec.Decode(&v); err != nil {
				if err == io.EOF {
					break
				}
				return nil, fmt.Errorf("decoding YAML documents: %w", err)
			}
			docs = append(docs, normalizeYAML(v))
		}
		return docs, nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("--explain requires a JSON array of documents: %w", err)
	}
	return list, nil
}

func renderCell(v any, asYAML bool) string {
	if asYAML {
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Sprintf("<encode error: %s>", err)
		}
		return strings.TrimSpace(string(out))
	}
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<encode error: %s>", err)
	}
	return string(out)
}

// printTable renders a two-column "# | result" table, sizing the result
// column to the widest cell (after truncation) using runewidth's display
// width rather than byte or rune count, so CJK and other double-width
// characters don't throw off the column separator's alignment.
func printTable(w io.Writer, results []string, errs []error) {
	cells := make([]string, len(results))
	for i := range results {
		if errs[i] != nil {
			cells[i] = "error: " + errs[i].Error()
			continue
		}
		cells[i] = truncateToWidth(oneLine(results[i]), maxCellWidth)
	}

	width := runewidth.StringWidth("result")
	for _, c := range cells {
		if w := runewidth.StringWidth(c); w > width {
			width = w
		}
	}

	fmt.Fprintf(w, "%3s | %s\n", "#", padToWidth("result", width))
	fmt.Fprintf(w, "%s-+-%s\n", strings.Repeat("-", 3), strings.Repeat("-", width))
	for i, c := range cells {
		fmt.Fprintf(w, "%3d | %s\n", i, padToWidth(c, width))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func padToWidth(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// truncateToWidth shortens s to at most width display columns, cutting on
// grapheme-cluster boundaries via uniseg so a combining mark or multi-rune
// emoji is never split in half, and appends an ellipsis when truncated.
func truncateToWidth(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	const ellipsis = "…"
	budget := width - runewidth.StringWidth(ellipsis)
	var b strings.Builder
	used := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cluster := g.Str()
		w := runewidth.StringWidth(cluster)
		if used+w > budget {
			break
		}
		b.WriteString(cluster)
		used += w
	}
	return b.String() + ellipsis
}
