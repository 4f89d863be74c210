// Package workspace manages the on-disk experiment layout and the JSON
// artifact hand-off between pipeline stages:
//
//	<root>/template.json
//	<root>/template_short.json
//	<root>/schema_short.json
//	<root>/<experiment>/conversation_N/ground_truth.json
//	<root>/<experiment>/conversation_N/conversation.txt
//	<root>/<experiment>/conversation_N/extracted_data.json
//	<root>/<experiment>/conversation_N/evaluation.json
//	<root>/<experiment>/aggregated_results.json
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/record"
)

// Sentinel errors let callers tell an absent artifact from a corrupt one;
// the aggregator skips both, but reports them differently.
var (
	ErrNotFound  = errors.New("workspace: artifact not found")
	ErrMalformed = errors.New("workspace: artifact malformed")
)

// Artifact filenames within a conversation directory.
const (
	GroundTruthFile  = "ground_truth.json"
	ConversationFile = "conversation.txt"
	ExtractedFile    = "extracted_data.json"
	EvaluationFile   = "evaluation.json"
	AggregateFile    = "aggregated_results.json"

	TemplateFile      = "template.json"
	TemplateShortFile = "template_short.json"
	SchemaFile        = "schema_short.json"
)

var conversationPattern = regexp.MustCompile(`^conversation_(\d+)$`)

// Workspace is the handle for one experiment under a workspace root.
type Workspace struct {
	root       string
	experiment string
}

// Open ensures the experiment directory exists and returns its handle. An
// empty experiment name gets a generated one.
func Open(root, experiment string) (*Workspace, error) {
	if experiment == "" {
		experiment = "exp-" + uuid.NewString()[:8]
	}
	w := &Workspace{root: root, experiment: experiment}
	if err := os.MkdirAll(w.ExperimentDir(), 0o755); err != nil {
		return nil, eris.Wrapf(err, "workspace: create experiment dir %s", w.ExperimentDir())
	}
	return w, nil
}

// Experiment returns the experiment name.
func (w *Workspace) Experiment() string {
	return w.experiment
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// ExperimentDir returns the experiment directory path.
func (w *Workspace) ExperimentDir() string {
	return filepath.Join(w.root, w.experiment)
}

// ConversationDir returns the directory path for a conversation.
func (w *Workspace) ConversationDir(conversation string) string {
	return filepath.Join(w.ExperimentDir(), conversation)
}

// CreateConversation allocates the next sequentially-numbered conversation
// directory and returns its name.
func (w *Workspace) CreateConversation() (string, error) {
	existing, err := w.ListConversations()
	if err != nil {
		return "", err
	}
	next := 1
	if n := len(existing); n > 0 {
		last := conversationPattern.FindStringSubmatch(existing[n-1])
		num, _ := strconv.Atoi(last[1])
		next = num + 1
	}
	name := fmt.Sprintf("conversation_%d", next)
	if err := os.MkdirAll(w.ConversationDir(name), 0o755); err != nil {
		return "", eris.Wrapf(err, "workspace: create conversation dir %s", name)
	}
	return name, nil
}

// ListConversations returns conversation names sorted by number.
func (w *Workspace) ListConversations() ([]string, error) {
	entries, err := os.ReadDir(w.ExperimentDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "workspace: list %s", w.ExperimentDir())
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && conversationPattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ni, _ := strconv.Atoi(conversationPattern.FindStringSubmatch(names[i])[1])
		nj, _ := strconv.Atoi(conversationPattern.FindStringSubmatch(names[j])[1])
		return ni < nj
	})
	return names, nil
}

// LoadRecord reads a JSON record artifact. Absence maps to ErrNotFound,
// unparseable content to ErrMalformed.
func (w *Workspace) LoadRecord(path string) (record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "workspace: read %s", path)
	}
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	return rec, nil
}

// SaveJSON writes a value as indented JSON.
func (w *Workspace) SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "workspace: marshal %s", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "workspace: write %s", path)
	}
	return nil
}

// SaveText writes a plain-text artifact.
func (w *Workspace) SaveText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return eris.Wrapf(err, "workspace: write %s", path)
	}
	return nil
}

// LoadText reads a plain-text artifact. Absence maps to ErrNotFound.
func (w *Workspace) LoadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", eris.Wrapf(ErrNotFound, "%s", path)
		}
		return "", eris.Wrapf(err, "workspace: read %s", path)
	}
	return string(data), nil
}

// GroundTruthPath returns the ground-truth artifact path for a conversation.
func (w *Workspace) GroundTruthPath(conversation string) string {
	return filepath.Join(w.ConversationDir(conversation), GroundTruthFile)
}

// ConversationPath returns the dialogue artifact path for a conversation.
func (w *Workspace) ConversationPath(conversation string) string {
	return filepath.Join(w.ConversationDir(conversation), ConversationFile)
}

// ExtractedPath returns the extracted-record artifact path.
func (w *Workspace) ExtractedPath(conversation string) string {
	return filepath.Join(w.ConversationDir(conversation), ExtractedFile)
}

// EvaluationPath returns the evaluation artifact path.
func (w *Workspace) EvaluationPath(conversation string) string {
	return filepath.Join(w.ConversationDir(conversation), EvaluationFile)
}

// AggregatePath returns the experiment-level aggregate path.
func (w *Workspace) AggregatePath() string {
	return filepath.Join(w.ExperimentDir(), AggregateFile)
}

// TemplatePath returns the workspace-level template path.
func (w *Workspace) TemplatePath() string {
	return filepath.Join(w.root, TemplateFile)
}

// TemplateShortPath returns the shortened template path.
func (w *Workspace) TemplateShortPath() string {
	return filepath.Join(w.root, TemplateShortFile)
}

// SchemaPath returns the workspace-level schema path.
func (w *Workspace) SchemaPath() string {
	return filepath.Join(w.root, SchemaFile)
}

// LoadEvaluation reads a conversation's persisted evaluation. Absence maps
// to ErrNotFound, unparseable content to ErrMalformed.
func (w *Workspace) LoadEvaluation(conversation string) (*eval.Evaluation, error) {
	path := w.EvaluationPath(conversation)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, eris.Wrapf(err, "workspace: read %s", path)
	}
	var ev eval.Evaluation
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, eris.Wrapf(ErrMalformed, "%s: %v", path, err)
	}
	return &ev, nil
}

// CollectRunMetrics loads every conversation's metrics for aggregation.
// Load failures are carried per-run so the aggregator can skip them.
func (w *Workspace) CollectRunMetrics() ([]eval.RunMetrics, error) {
	conversations, err := w.ListConversations()
	if err != nil {
		return nil, err
	}
	runs := make([]eval.RunMetrics, 0, len(conversations))
	for _, conv := range conversations {
		ev, err := w.LoadEvaluation(conv)
		if err != nil {
			runs = append(runs, eval.RunMetrics{Run: conv, Err: err})
			continue
		}
		runs = append(runs, eval.RunMetrics{Run: conv, Metrics: ev.Metrics})
	}
	return runs, nil
}
