package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hartfield-labs/factfind/internal/generate"
	"github.com/hartfield-labs/factfind/internal/workspace"
)

var (
	setupDocument   string
	setupExperiment string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Derive the form template and schema from a source document",
	Long:  "Reads a fact-find document, extracts a blank form template from it, shortens the template, and infers the JSON Schema used by the extraction stage. Artifacts land at the workspace root.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		docText, err := os.ReadFile(setupDocument)
		if err != nil {
			return eris.Wrapf(err, "read document %s", setupDocument)
		}

		ws, err := workspace.Open(cfg.Workspace.Root, setupExperiment)
		if err != nil {
			return err
		}

		client := initAnthropic()

		template, err := generate.NewTemplateGenerator(client, cfg.Roles.Template).Generate(ctx, string(docText))
		if err != nil {
			return eris.Wrap(err, "generate template")
		}
		if err := ws.SaveJSON(ws.TemplatePath(), template); err != nil {
			return err
		}
		zap.L().Info("template generated", zap.Int("fields", len(template)))

		short, err := generate.NewTemplateShortener(client, cfg.Roles.Shortener).Shorten(ctx, template)
		if err != nil {
			return eris.Wrap(err, "shorten template")
		}
		if err := ws.SaveJSON(ws.TemplateShortPath(), short); err != nil {
			return err
		}
		zap.L().Info("template shortened",
			zap.Int("fields", len(short)),
			zap.Int("dropped", len(template)-len(short)),
		)

		schema := generate.InferSchema(short)
		if err := ws.SaveJSON(ws.SchemaPath(), schema); err != nil {
			return err
		}

		zap.L().Info("setup complete",
			zap.String("experiment", ws.Experiment()),
			zap.String("workspace", ws.Root()),
		)
		return nil
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupDocument, "document", "", "path to the source fact-find document (required)")
	setupCmd.Flags().StringVar(&setupExperiment, "experiment", "", "experiment name (generated when empty)")
	_ = setupCmd.MarkFlagRequired("document")
	rootCmd.AddCommand(setupCmd)
}
