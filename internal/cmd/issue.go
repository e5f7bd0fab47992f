package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hemmendinger/docket/internal/config"
	"github.com/hemmendinger/docket/internal/render"
	"github.com/hemmendinger/docket/internal/store"
	"github.com/hemmendinger/docket/internal/style"
	"github.com/hemmendinger/docket/internal/tui"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a .docket workspace in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			s, err := store.Init(cwd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(filepath.Join(s.Root(), config.FileName)); os.IsNotExist(err) {
				if err := config.Write(s.Root(), config.Default()); err != nil {
					return err
				}
			}
			fmt.Printf("Initialized workspace at %s\n", s.Root())
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var templateName string
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new issue from an issue template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			ref, err := e.store.Create(title, templateName, e.tmpl)
			if err != nil {
				return err
			}
			fmt.Printf("%s Created issue %d: %s\n", style.Bold.Render("✓"), ref.Number, title)
			fmt.Println(style.Dim.Render(ref.Path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "issue template name (default \"default\")")
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List issues in the workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			refs, err := e.store.List()
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				fmt.Println(style.Dim.Render("No issues. Create one with `docket create <title>`."))
				return nil
			}
			for _, ref := range refs {
				fmt.Printf("%s %s\n", style.Bold.Render(fmt.Sprintf("%3d", ref.Number)), ref.Slug)
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show <issue>",
		Short: "Render an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			text, err := e.store.Load(number)
			if err != nil {
				return err
			}
			if plain {
				fmt.Print(text)
				return nil
			}
			fmt.Print(render.Issue(text))
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown")
	return cmd
}

func newEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <issue>",
		Short: "Open an issue in your editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			ref, err := e.store.Find(number)
			if err != nil {
				return err
			}
			editor := e.cfg.Editor
			if editor == "" {
				editor = os.Getenv("EDITOR")
			}
			if editor == "" {
				return fmt.Errorf("no editor configured (set editor in config.toml or $EDITOR)")
			}
			ed := exec.Command(editor, ref.Path)
			ed.Stdin = os.Stdin
			ed.Stdout = os.Stdout
			ed.Stderr = os.Stderr
			return ed.Run()
		},
	}
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <issue>",
		Short: "Interactive task checklist for an issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			return tui.Run(e.store, number)
		},
	}
}
