package catalog

import "sort"

var templateNames = map[string]string{
	"react":      "React",
	"react-ts":   "React TypeScript",
	"vanilla":    "JavaScript",
	"vanilla-ts": "TypeScript",
	"angular":    "Angular",
	"vue":        "Vue.js",
	"vue-ts":     "Vue TypeScript",
	"nextjs":     "Next.js",
	"node":       "Node.js",
	"static":     "Static HTML/JS/CSS",
}

// DefaultTemplate is the playground's template when none has been chosen.
const DefaultTemplate = "react"

// TemplateName returns the display name, or the id itself for unknown templates.
func TemplateName(template string) string {
	if name, ok := templateNames[template]; ok {
		return name
	}
	return template
}

func IsKnownTemplate(template string) bool {
	_, ok := templateNames[template]
	return ok
}

// Templates returns a copy of the id -> display name table.
func Templates() map[string]string {
	out := make(map[string]string, len(templateNames))
	for k, v := range templateNames {
		out[k] = v
	}
	return out
}

func TemplateIds() []string {
	ids := make([]string, 0, len(templateNames))
	for id := range templateNames {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
