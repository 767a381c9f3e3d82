package plan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/c360studio/plantask/metrics"
)

// ErrEmptyInput indicates the raw text was empty. It is the only
// failure Extract can return: any other malformed input degrades to
// the heuristic path, which always produces a plan.
var ErrEmptyInput = errors.New("empty input text")

// titleKeywords mark a candidate line as a likely plan title. Matching
// is case-insensitive substring, first hit wins.
var titleKeywords = []string{"plano", "planejamento", "projeto", "tarefa", "organização"}

// fallbackSubtasks is substituted when heuristic extraction recovers
// fewer than three usable lines, so every generated plan has
// actionable content.
var fallbackSubtasks = []string{
	"Definir objetivos e requisitos",
	"Coletar recursos necessários",
	"Implementar solução",
}

const (
	// maxHeuristicSubtasks caps the lines the heuristic path will turn
	// into subtasks.
	maxHeuristicSubtasks = 10
	// minHeuristicSubtasks is the threshold below which the generic
	// fallback list is substituted.
	minHeuristicSubtasks = 3
	// titleCandidateWindow bounds how many candidate lines are scanned
	// for a keyword before the first candidate wins by default.
	titleCandidateWindow = 3
)

// Extractor converts raw model output into plan Documents.
type Extractor struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewExtractor creates an Extractor. A nil logger falls back to
// slog.Default().
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger, now: time.Now}
}

// Extract parses raw model output into a Document. It first attempts a
// structured JSON parse (fenced code block, then the whole text); on
// failure it falls back to heuristic line extraction, which cannot
// fail. The only error returned is ErrEmptyInput.
func (e *Extractor) Extract(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyInput
	}

	text := normalizeText(raw)

	if doc, ok := e.tryParseJSON(text); ok {
		metrics.PlanExtractions.WithLabelValues("structured").Inc()
		return doc, nil
	}

	doc := e.extractHeuristic(text)
	metrics.PlanExtractions.WithLabelValues("heuristic").Inc()
	return doc, nil
}

// rawDocument mirrors the JSON shape the model is asked to produce.
// Every field except task titles is optional.
type rawDocument struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tasks       []rawTask `json:"tasks"`
}

type rawTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Subtasks    []string `json:"subtasks"`
}

// tryParseJSON attempts a structured parse of the text. The boolean
// result carries the parse outcome so callers dispatch on a value, not
// on an error.
func (e *Extractor) tryParseJSON(text string) (*Document, bool) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, false
	}

	var raw rawDocument
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		e.logger.Debug("Structured parse failed, falling back to heuristics", "error", err)
		return nil, false
	}

	doc := &Document{
		Title:       raw.Title,
		Description: raw.Description,
		Tasks:       make([]Task, 0, len(raw.Tasks)),
		CreatedAt:   e.now(),
	}
	if doc.Title == "" {
		doc.Title = FallbackTitle
	}
	if len(raw.Tasks) == 0 {
		e.logger.Warn("Structured plan has no tasks", "title", doc.Title)
	}

	for _, rt := range raw.Tasks {
		if strings.TrimSpace(rt.Title) == "" {
			e.logger.Warn("Skipping plan task without title")
			continue
		}
		task := Task{
			Title:       strings.TrimSpace(rt.Title),
			Description: rt.Description,
			Priority:    Priority(rt.Priority),
			Subtasks:    make([]Subtask, 0, len(rt.Subtasks)),
		}
		if !task.Priority.Valid() {
			task.Priority = PriorityMedium
		}
		for _, st := range rt.Subtasks {
			if strings.TrimSpace(st) == "" {
				continue
			}
			task.Subtasks = append(task.Subtasks, Subtask{Title: strings.TrimSpace(st)})
		}
		doc.Tasks = append(doc.Tasks, task)
	}

	return doc, true
}

// extractHeuristic recovers a single-task plan from unstructured prose.
// It cannot recover multiple top-level tasks; only the structured path
// can do that.
func (e *Extractor) extractHeuristic(text string) *Document {
	lines := strings.Split(text, "\n")

	title := e.pickTitle(lines)
	subtasks := collectSubtaskLines(lines)

	if len(subtasks) < minHeuristicSubtasks {
		e.logger.Warn("Too few usable lines, substituting generic subtasks",
			"found", len(subtasks))
		metrics.PlanExtractionFallbacks.Inc()
		subtasks = append([]string(nil), fallbackSubtasks...)
	}

	task := Task{
		Title:    title,
		Priority: PriorityMedium,
		Subtasks: make([]Subtask, 0, len(subtasks)),
	}
	for _, line := range subtasks {
		task.Subtasks = append(task.Subtasks, Subtask{Title: line})
	}

	return &Document{
		Title:     title,
		Tasks:     []Task{task},
		CreatedAt: e.now(),
	}
}

// pickTitle selects a title from non-list lines longer than five
// characters, preferring the first candidate containing a domain
// keyword within the scan window.
func (e *Extractor) pickTitle(lines []string) string {
	var candidates []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || len(line) <= 5 {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "#") {
			continue
		}
		candidates = append(candidates, line)
	}
	if len(candidates) == 0 {
		return FallbackTitle
	}

	window := candidates
	if len(window) > titleCandidateWindow {
		window = window[:titleCandidateWindow]
	}
	for _, candidate := range window {
		lower := strings.ToLower(candidate)
		for _, keyword := range titleKeywords {
			if strings.Contains(lower, keyword) {
				return candidate
			}
		}
	}
	return candidates[0]
}

// collectSubtaskLines gathers bullet lines and numbered lines in
// document order, capped at maxHeuristicSubtasks.
func collectSubtaskLines(lines []string) []string {
	var collected []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if text, ok := bulletText(line); ok {
			collected = append(collected, text)
		}
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if text, ok := numberedText(line); ok {
			collected = append(collected, text)
		}
	}

	if len(collected) > maxHeuristicSubtasks {
		collected = collected[:maxHeuristicSubtasks]
	}
	return collected
}

// bulletText strips a leading "-" or "*" marker and reports whether
// the remainder is long enough to keep.
func bulletText(line string) (string, bool) {
	if !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "*") {
		return "", false
	}
	text := strings.TrimSpace(line[1:])
	if len(text) <= 3 {
		return "", false
	}
	return text, true
}

// numberedText strips a leading "<digits>." or "<digits>)" marker and
// reports whether the remainder is long enough to keep.
func numberedText(line string) (string, bool) {
	if line == "" || line[0] < '0' || line[0] > '9' {
		return "", false
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i >= len(line) || (line[i] != '.' && line[i] != ')') {
		return "", false
	}
	text := strings.TrimSpace(line[i+1:])
	if len(text) <= 3 {
		return "", false
	}
	return text, true
}
