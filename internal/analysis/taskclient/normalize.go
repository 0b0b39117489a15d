package taskclient

import (
	"regexp"
	"strconv"
	"strings"

	"polisave/internal/analysis"
)

// The remote service has shipped several backend revisions with slightly
// different response shapes. Every lookup below is an ordered list of
// candidate extractors: first non-empty match wins.

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
var taskIDKeyRe = regexp.MustCompile(`(?i)^(task_?id|id)$`)

// taskState is the normalized lifecycle state of a remote task.
type taskState int

const (
	stateUnknown taskState = iota
	stateRunning
	stateSucceeded
	stateFailed
)

func normalizeState(raw string) taskState {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "succeeded", "success", "completed", "complete", "done", "finished":
		return stateSucceeded
	case "failed", "failure", "error":
		return stateFailed
	case "pending", "queued", "processing", "running", "in_progress", "started":
		return stateRunning
	default:
		return stateUnknown
	}
}

// dig walks a dotted path of object keys and returns the value at the end.
func dig(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func digString(m map[string]any, path ...string) string {
	v, ok := dig(m, path...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// extractTaskID finds the task identifier in any of the known response
// shapes: top-level task_id, task.task_id, data.task.task_id, or as a last
// resort any identifier-like key whose value looks like an opaque id.
func extractTaskID(m map[string]any) string {
	paths := [][]string{
		{"task_id"},
		{"taskId"},
		{"task", "task_id"},
		{"task", "id"},
		{"data", "task", "task_id"},
		{"data", "task", "id"},
		{"data", "task_id"},
	}
	for _, p := range paths {
		if id := digString(m, p...); id != "" && identifierRe.MatchString(id) {
			return id
		}
	}

	// Fallback: breadth-first scan for an id-like key. Work-list, not
	// recursion, since nesting depth is untrusted.
	queue := []map[string]any{m}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for key, v := range cur {
			switch val := v.(type) {
			case string:
				if taskIDKeyRe.MatchString(key) && identifierRe.MatchString(strings.TrimSpace(val)) {
					return strings.TrimSpace(val)
				}
			case map[string]any:
				queue = append(queue, val)
			}
		}
	}
	return ""
}

// extractState returns the normalized task state from a response body.
func extractState(m map[string]any) taskState {
	paths := [][]string{
		{"state"},
		{"status"},
		{"task_status"},
		{"task", "state"},
		{"task", "status"},
		{"data", "task", "state"},
		{"data", "task", "status"},
		{"data", "status"},
	}
	for _, p := range paths {
		if s := digString(m, p...); s != "" {
			if st := normalizeState(s); st != stateUnknown {
				return st
			}
		}
	}
	return stateUnknown
}

// extractResultURL returns the archive URL present only in terminal success.
func extractResultURL(m map[string]any) string {
	paths := [][]string{
		{"result_url"},
		{"result_archive_url"},
		{"archive_url"},
		{"result", "url"},
		{"result", "archive_url"},
		{"task", "result_url"},
		{"data", "result_url"},
		{"data", "task", "result_url"},
	}
	for _, p := range paths {
		if u := digString(m, p...); u != "" {
			return u
		}
	}
	return ""
}

// extractErrorHint returns the remote error code/message for failed tasks.
func extractErrorHint(m map[string]any) string {
	paths := [][]string{
		{"error"},
		{"error_message"},
		{"message"},
		{"hint"},
		{"detail"},
		{"task", "error"},
		{"data", "task", "error"},
	}
	for _, p := range paths {
		v, ok := dig(m, p...)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case map[string]any:
			code, _ := val["code"].(string)
			msg, _ := val["message"].(string)
			if s := strings.TrimSpace(strings.TrimSpace(code) + " " + strings.TrimSpace(msg)); s != "" {
				return s
			}
		}
	}
	return ""
}

// extractRequestID pulls a request/trace id from an error response body.
func extractRequestID(m map[string]any) string {
	for _, p := range [][]string{{"request_id"}, {"requestId"}, {"trace_id"}} {
		if id := digString(m, p...); id != "" {
			return id
		}
	}
	return ""
}

// asFloat accepts numeric or numeric-string source values.
func asFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// textOf resolves page- or block-level text that may arrive as a string, an
// array of strings, an array of {text}/{content} objects, or a {lines: []}
// wrapper.
func textOf(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		var parts []string
		for _, item := range val {
			if s := textOf(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		for _, key := range []string{"text", "content", "value"} {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		if lines, ok := val["lines"].([]any); ok {
			return textOf(lines)
		}
		return ""
	default:
		return ""
	}
}

// firstNonEmptyText returns the first non-empty candidate among the given
// keys of an object.
func firstNonEmptyText(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s := textOf(v); strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

// normalizeBlocks converts raw block objects, including nested children.
func normalizeBlocks(raw []any, pageNumber int) []analysis.Block {
	var out []analysis.Block
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		block := analysis.Block{
			Type:       digString(obj, "type"),
			Category:   digString(obj, "category"),
			Label:      digString(obj, "label"),
			Text:       firstNonEmptyText(obj, "text", "content", "value"),
			PageNumber: pageNumber,
		}
		if n, ok := asInt(obj["page_number"]); ok && n > 0 {
			block.PageNumber = n
		}
		if c, ok := asFloat(obj["confidence"]); ok {
			block.Confidence = &c
		}
		if box, ok := obj["box"].(map[string]any); ok {
			bb := analysis.BoundingBox{}
			bb.X, _ = asFloat(box["x"])
			bb.Y, _ = asFloat(box["y"])
			bb.Width, _ = asFloat(box["width"])
			bb.Height, _ = asFloat(box["height"])
			block.Box = &bb
		}
		if children, ok := obj["children"].([]any); ok {
			block.Children = normalizeBlocks(children, block.PageNumber)
		}
		out = append(out, block)
	}
	return out
}

// normalizeResult converts the archive JSON payload into an analysis.Result.
// The payload is either {data: {...}} or the bare analysis object.
func normalizeResult(m map[string]any) (*analysis.Result, error) {
	if data, ok := m["data"].(map[string]any); ok {
		m = data
	}

	result := &analysis.Result{
		Text: firstNonEmptyText(m, "text", "full_text", "content"),
	}

	rawPages, _ := m["pages"].([]any)
	for i, item := range rawPages {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		page := analysis.Page{
			PageNumber: i + 1,
			Text:       firstNonEmptyText(obj, "text", "content", "lines"),
		}
		if n, ok := asInt(obj["page_number"]); ok && n > 0 {
			page.PageNumber = n
		} else if n, ok := asInt(obj["pageNumber"]); ok && n > 0 {
			page.PageNumber = n
		}
		page.Width, _ = asFloat(obj["width"])
		page.Height, _ = asFloat(obj["height"])
		if blocks, ok := obj["blocks"].([]any); ok {
			page.Blocks = normalizeBlocks(blocks, page.PageNumber)
		}
		result.Pages = append(result.Pages, page)
	}

	if summary, ok := m["structureSummary"].(map[string]any); ok {
		result.Structure = normalizeSummary(summary)
	} else if summary, ok := m["structure_summary"].(map[string]any); ok {
		result.Structure = normalizeSummary(summary)
	}
	if result.Structure.PageCount == 0 {
		result.Structure.PageCount = len(result.Pages)
	}

	// Synthesize the document text from pages when only pages were supplied.
	if result.Text == "" && len(result.Pages) > 0 {
		var parts []string
		for _, p := range result.Pages {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		result.Text = strings.Join(parts, "\n")
	}

	if strings.TrimSpace(result.Text) == "" && len(result.Pages) == 0 {
		return nil, analysis.NewError(analysis.CodeEmptyAnalysis, "analysis payload has no text or pages")
	}
	return result, nil
}

func normalizeSummary(m map[string]any) analysis.StructureSummary {
	s := analysis.StructureSummary{
		Language: digString(m, "language"),
	}
	s.PageCount, _ = asInt(m["page_count"])
	if s.PageCount == 0 {
		s.PageCount, _ = asInt(m["pageCount"])
	}
	s.BlockCount, _ = asInt(m["block_count"])
	if s.BlockCount == 0 {
		s.BlockCount, _ = asInt(m["blockCount"])
	}
	if c, ok := asFloat(m["confidence"]); ok {
		s.Confidence = &c
	}
	return s
}
