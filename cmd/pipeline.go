package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hartfield-labs/factfind/internal/eval"
	"github.com/hartfield-labs/factfind/internal/generate"
	"github.com/hartfield-labs/factfind/internal/record"
	"github.com/hartfield-labs/factfind/internal/store"
	"github.com/hartfield-labs/factfind/internal/workspace"
	anthropicpkg "github.com/hartfield-labs/factfind/pkg/anthropic"
)

// pipelineEnv holds the initialized store, workspace handle, generators and
// evaluator needed by the run/evaluate/serve commands.
type pipelineEnv struct {
	Store      store.Store
	Workspace  *workspace.Workspace
	Form       *generate.FormGenerator
	Dialogue   *generate.ConversationGenerator
	Extractor  *generate.Extractor
	Reconciler *eval.Reconciler

	client anthropicpkg.Client
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initAnthropic() anthropicpkg.Client {
	return anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRequestsPerMinute(cfg.Anthropic.RequestsPerMinute))
}

// initPipeline sets up the store, the workspace, the Anthropic client and
// every pipeline stage. Callers should defer env.Close().
func initPipeline(ctx context.Context, experiment string) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	ws, err := workspace.Open(cfg.Workspace.Root, experiment)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := initAnthropic()
	oracle := eval.NewLLMOracle(client, cfg.Roles.Oracle.Model)

	return &pipelineEnv{
		Store:      st,
		Workspace:  ws,
		Form:       generate.NewFormGenerator(client, cfg.Roles.Form),
		Dialogue:   generate.NewConversationGenerator(client, cfg.Roles.Conversation),
		Extractor:  nil, // bound by loadSchema
		Reconciler: eval.NewReconciler(eval.NewComparator(oracle)),
		client:     client,
	}, nil
}

// loadSchema reads the inferred schema artifact and binds the extractor to
// it. Setup must have run first.
func (pe *pipelineEnv) loadSchema() (map[string]any, error) {
	schema, err := pe.Workspace.LoadRecord(pe.Workspace.SchemaPath())
	if err != nil {
		if eris.Is(err, workspace.ErrNotFound) {
			return nil, eris.New("schema not found; run `factfind setup` first")
		}
		return nil, err
	}

	validator, err := generate.NewValidator(schema)
	if err != nil {
		return nil, err
	}
	pe.Extractor = generate.NewExtractor(pe.client, cfg.Roles.Extraction, validator)

	return schema, nil
}

// evaluateConversation re-derives the evaluation for one conversation from
// its persisted ground truth and extraction, and writes evaluation.json.
func evaluateConversation(ctx context.Context, ws *workspace.Workspace, rec *eval.Reconciler, conversation string) (*eval.Evaluation, error) {
	groundTruth, err := ws.LoadRecord(ws.GroundTruthPath(conversation))
	if err != nil {
		return nil, err
	}
	extracted, err := ws.LoadRecord(ws.ExtractedPath(conversation))
	if err != nil {
		return nil, err
	}

	cleaned, missingPaths := record.StripMissing(groundTruth)
	results := rec.Reconcile(ctx, cleaned, extracted, missingPaths)

	ev := &eval.Evaluation{
		Metrics:       eval.Score(results, missingPaths),
		FieldResults:  results,
		MissingFields: missingPaths,
	}
	if err := ws.SaveJSON(ws.EvaluationPath(conversation), ev); err != nil {
		return nil, err
	}
	return ev, nil
}
