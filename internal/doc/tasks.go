package doc

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
)

// taskLineRegex is the single checkbox grammar: a direct-child list item
// whose marker is `- [ ] ` or `- [x] `, bracket content case-sensitive,
// no leading indent. Both the structural extractor and the line-oriented
// mutator match against this one pattern, so the two traversals cannot
// disagree about which lines are tasks.
var taskLineRegex = regexp.MustCompile(`^- \[([ x])\] (.*)$`)

// tasksSectionName is the heading the task list lives under. It is the
// one load-bearing section name in the format.
const tasksSectionName = "Tasks"

// isTasksHeading reports whether line opens the Tasks section.
func isTasksHeading(line string) bool {
	m := sectionHeadingRegex.FindStringSubmatch(line)
	return m != nil && strings.TrimSpace(m[1]) == tasksSectionName
}

// isRegionEnd reports whether line terminates a section region: any
// level-1 or level-2 heading.
func isRegionEnd(line string) bool {
	return sectionHeadingRegex.MatchString(line) || titleHeadingRegex.MatchString(line)
}

// ExtractTasks returns the ordered task list from the document's Tasks
// section. A missing section or an empty list is not an error; the error
// return is reserved for structural scan failure.
func ExtractTasks(text string) ([]Task, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	tasks := []Task{}
	inTasks := false
	for scanner.Scan() {
		line := scanner.Text()
		if !inTasks {
			inTasks = isTasksHeading(line)
			continue
		}
		if isRegionEnd(line) {
			break
		}
		if m := taskLineRegex.FindStringSubmatch(line); m != nil {
			tasks = append(tasks, Task{
				Text:      m[2],
				Completed: m[1] == "x",
				Index:     len(tasks),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return tasks, nil
}

// FindTaskByIndex returns the task with the given index, or nil.
func FindTaskByIndex(tasks []Task, index int) *Task {
	for i := range tasks {
		if tasks[i].Index == index {
			return &tasks[i]
		}
	}
	return nil
}

// FindCurrentTask returns the first incomplete task, or nil when every
// task is completed or the list is empty.
func FindCurrentTask(tasks []Task) *Task {
	for i := range tasks {
		if !tasks[i].Completed {
			return &tasks[i]
		}
	}
	return nil
}

// UpdateTaskStatus flips the completion marker of the index-th task and
// returns the new document text. Every other line is byte-identical to
// the input. The index is validated against ExtractTasks first, so the
// line scan reaching the end without finding the task means the two
// traversals disagree, which the shared grammar rules out.
func UpdateTaskStatus(text string, index int, completed bool) (string, error) {
	tasks, err := ExtractTasks(text)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(tasks) {
		return "", fmt.Errorf("%w: %d (have %d tasks)", ErrTaskIndexOutOfRange, index, len(tasks))
	}

	lines := strings.Split(text, "\n")
	inTasks := false
	seen := 0
	for i, line := range lines {
		if !inTasks {
			inTasks = isTasksHeading(line)
			continue
		}
		if isRegionEnd(line) {
			break
		}
		if !taskLineRegex.MatchString(line) {
			continue
		}
		if seen != index {
			seen++
			continue
		}
		if completed {
			lines[i] = strings.Replace(line, "- [ ]", "- [x]", 1)
		} else {
			lines[i] = strings.Replace(line, "- [x]", "- [ ]", 1)
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("%w: index %d", ErrTaskLineNotFound, index)
}
