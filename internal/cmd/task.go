package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hemmendinger/docket/internal/doc"
	"github.com/hemmendinger/docket/internal/expand"
	"github.com/hemmendinger/docket/internal/style"
	"github.com/hemmendinger/docket/internal/tag"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with an issue's task checklist",
	}
	cmd.AddCommand(
		newTaskAddCmd(),
		newTaskListCmd(),
		newTaskCheckCmd(true),
		newTaskCheckCmd(false),
		newTaskNextCmd(),
		newTaskExpandCmd(),
	)
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <issue> <text>",
		Short: "Add a task; a trailing +tag expands it into template steps",
		Args:  cobra.MinimumNArgs(2),
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

			input := withDefaultTags(strings.Join(args[1:], " "), e.cfg.DefaultExpandTags)
			entries := expand.New(e.tmpl).ExpandOnInsert(input)
			for _, entry := range entries {
				text, err = doc.AddToSection(text, "Tasks", entry)
				if err != nil {
					return err
				}
			}
			if err := e.store.Save(number, text); err != nil {
				return err
			}
			if len(entries) == 1 {
				fmt.Printf("%s Added task to issue %d\n", style.Bold.Render("✓"), number)
			} else {
				fmt.Printf("%s Added %d tasks to issue %d (expanded)\n",
					style.Bold.Render("✓"), len(entries), number)
			}
			return nil
		},
	}
}

func newTaskListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <issue>",
		Short: "List an issue's tasks",
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
			tasks, err := loadTasks(e, number)
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Println(style.Dim.Render("No tasks."))
				return nil
			}
			printTasks(tasks)
			return nil
		},
	}
}

func newTaskCheckCmd(completed bool) *cobra.Command {
	use, short := "check", "Mark a task completed"
	if !completed {
		use, short = "uncheck", "Mark a task not completed"
	}
	return &cobra.Command{
		Use:   use + " <issue> <task>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid task index %q", args[1])
			}
			text, err := e.store.Load(number)
			if err != nil {
				return err
			}
			updated, err := doc.UpdateTaskStatus(text, index, completed)
			if err != nil {
				return err
			}
			if err := e.store.Save(number, updated); err != nil {
				return err
			}
			marker := style.Done.Render("[x]")
			if !completed {
				marker = style.Pending.Render("[ ]")
			}
			fmt.Printf("%s task %d of issue %d\n", marker, index, number)
			return nil
		},
	}
}

func newTaskNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next <issue>",
		Short: "Show the first incomplete task",
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
			tasks, err := loadTasks(e, number)
			if err != nil {
				return err
			}
			current := doc.FindCurrentTask(tasks)
			if current == nil {
				fmt.Println(style.Done.Render("All tasks completed."))
				return nil
			}
			fmt.Printf("%s %s\n", style.Bold.Render(fmt.Sprintf("%d.", current.Index)), current.Text)
			return nil
		},
	}
}

func newTaskExpandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <issue> <task>",
		Short: "Show the step expansion of a task's #tags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			number, err := parseIssueNumber(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid task index %q", args[1])
			}
			tasks, err := loadTasks(e, number)
			if err != nil {
				return err
			}
			task := doc.FindTaskByIndex(tasks, index)
			if task == nil {
				return fmt.Errorf("%w: %d", doc.ErrTaskIndexOutOfRange, index)
			}
			for i, step := range expand.New(e.tmpl).ExpandTask(*task) {
				fmt.Printf("%s %s\n", style.Dim.Render(fmt.Sprintf("%d.", i+1)), step)
			}
			return nil
		},
	}
}

// withDefaultTags appends the configured default_expand_tags as trailing
// `+` directives to new task text. Text that already carries any `+`
// directive is left alone, so an explicit tag (or a deliberately inert
// mid-text one) always overrides the configured defaults.
func withDefaultTags(text string, names []string) string {
	if len(names) == 0 || len(tag.ExtractExpandTags(text)) > 0 {
		return text
	}
	for _, name := range names {
		text += " +" + name
	}
	return text
}

func loadTasks(e *env, number int) ([]doc.Task, error) {
	text, err := e.store.Load(number)
	if err != nil {
		return nil, err
	}
	return doc.ExtractTasks(text)
}

func printTasks(tasks []doc.Task) {
	for _, task := range tasks {
		box := style.Pending.Render("[ ]")
		if task.Completed {
			box = style.Done.Render("[x]")
		}
		fmt.Printf("%s %s %s\n", style.Dim.Render(fmt.Sprintf("%2d", task.Index)), box, task.Text)
	}
}
