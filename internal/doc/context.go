package doc

// Context is a read-only aggregate of a document's sections and task
// list, assembled for display and agent consumption. Section content is
// passed through raw; no relevance ranking happens here.
type Context struct {
	Tasks        []Task
	Sections     map[string]string
	SectionOrder []string
}

// ExtractContext composes the section model and the task extractor into
// a single view. The first occurrence wins when a heading repeats.
func ExtractContext(text string) (*Context, error) {
	sections, err := Sections(text)
	if err != nil {
		return nil, err
	}
	tasks, err := ExtractTasks(text)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Tasks:    tasks,
		Sections: make(map[string]string, len(sections)),
	}
	for _, s := range sections {
		if _, ok := ctx.Sections[s.Name]; ok {
			continue
		}
		ctx.Sections[s.Name] = s.Content
		ctx.SectionOrder = append(ctx.SectionOrder, s.Name)
	}
	return ctx, nil
}
