package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hemmendinger/docket/internal/doc"
	"github.com/hemmendinger/docket/internal/expand"
	"github.com/hemmendinger/docket/internal/style"
	"github.com/hemmendinger/docket/internal/templates"
)

func newNoteCmd() *cobra.Command {
	var (
		section string
		kind    string
		reason  string
	)
	cmd := &cobra.Command{
		Use:   "note <issue> <text>",
		Short: "Append a note to a section of an issue",
		Long: "Appends formatted content to a section. Kind \"question\" and \"task\"\n" +
			"wrap the text as a checkbox item, \"failure\" records a failed attempt\n" +
			"with its reason. Section names accept snake_case, camelCase, and\n" +
			"kebab-case variants of the canonical headings.",
		Args: cobra.MinimumNArgs(2),
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

			note := strings.Join(args[1:], " ")
			var extra map[string]string
			if reason != "" {
				extra = map[string]string{"reason": reason}
			}
			formatted := doc.FormatNote(note, doc.NoteKind(kind), extra)

			target := section
			if target == "" {
				target = defaultSection(doc.NoteKind(kind))
			}
			updated, err := doc.AddToSection(text, target, formatted)
			if err != nil {
				return err
			}
			if err := e.store.Save(number, updated); err != nil {
				return err
			}
			fmt.Printf("%s Noted in %q on issue %d\n",
				style.Bold.Render("✓"), doc.NormalizeSectionName(target), number)
			return nil
		},
	}
	cmd.Flags().StringVarP(&section, "section", "s", "", "target section (defaults per kind)")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "note kind: question, failure, or task")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for a failure note")
	return cmd
}

// defaultSection routes each note kind to its conventional home.
func defaultSection(kind doc.NoteKind) string {
	switch kind {
	case doc.NoteQuestion:
		return "Questions to resolve"
	case doc.NoteFailure:
		return "Failed approaches"
	case doc.NoteTask:
		return "Tasks"
	}
	return "Problem to be solved"
}

func newContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context <issue>",
		Short: "Print an issue's sections and task list as one view",
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
			ctx, err := doc.ExtractContext(text)
			if err != nil {
				return err
			}
			for _, name := range ctx.SectionOrder {
				fmt.Println(style.Heading.Render(name))
				content := ctx.Sections[name]
				if content == "" {
					fmt.Println(style.Dim.Render("(empty)"))
				} else {
					fmt.Println(content)
				}
				fmt.Println()
			}
			fmt.Println(style.Heading.Render(fmt.Sprintf("Tasks (%d)", len(ctx.Tasks))))
			printTasks(ctx.Tasks)
			return nil
		},
	}
}

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect issue and tag templates",
	}
	cmd.AddCommand(newTemplateListCmd(), newTemplateValidateCmd())
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			groups := []struct {
				label string
				kind  templates.Kind
			}{
				{"Tag templates", templates.KindTag},
				{"Issue templates", templates.KindIssue},
			}
			for _, g := range groups {
				fmt.Println(style.Heading.Render(g.label))
				for _, name := range e.tmpl.List(g.kind) {
					line := "  " + name
					if meta, err := e.tmpl.LoadMeta(name, g.kind); err == nil && meta.Description != "" {
						line += " " + style.Dim.Render("- "+meta.Description)
					}
					fmt.Println(line)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

func newTemplateValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <name>",
		Short: "Validate a tag template for expansion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			result := expand.New(e.tmpl).Validate(args[0])
			if result.Valid {
				fmt.Printf("%s %s is valid\n", style.Done.Render("✓"), args[0])
				return nil
			}
			for _, msg := range result.Errors {
				fmt.Printf("%s %s\n", style.Error.Render("✗"), msg)
			}
			return fmt.Errorf("template %q is invalid", args[0])
		},
	}
}
