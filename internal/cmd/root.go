// Package cmd implements the docket command-line interface.
package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hemmendinger/docket/internal/config"
	"github.com/hemmendinger/docket/internal/store"
	"github.com/hemmendinger/docket/internal/style"
	"github.com/hemmendinger/docket/internal/templates"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the docket command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docket",
		Short: "Plain-text issue tracking with expandable task checklists",
		Long: "Docket tracks engineering work as plain-text issue files. Each issue\n" +
			"carries a Tasks checklist whose lines can reference reusable tag\n" +
			"templates; docket expands a tagged task into the template's steps\n" +
			"with the original task text spliced into the placeholder slot.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newListCmd(),
		newShowCmd(),
		newTaskCmd(),
		newNoteCmd(),
		newContextCmd(),
		newTemplateCmd(),
		newEditCmd(),
		newTUICmd(),
	)
	return root
}

// env bundles the open workspace for command implementations.
type env struct {
	store *store.Store
	cfg   *config.Config
	tmpl  *templates.DirStore
}

// openEnv locates the workspace, loads config, and applies the color mode.
func openEnv() (*env, error) {
	root, err := store.FindRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	style.Configure(cfg.Color)
	return &env{
		store: store.Open(root),
		cfg:   cfg,
		tmpl:  templates.NewDirStore(cfg.ResolveTemplatesDir(root)),
	}, nil
}

// parseIssueNumber parses a positional issue-number argument.
func parseIssueNumber(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid issue number %q", arg)
	}
	return n, nil
}
