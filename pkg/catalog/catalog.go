// Package catalog holds the fixed list of practice questions and the sandbox
// template presets they run in.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var embeddedQuestions []byte

var ErrQuestionNotFound = errors.New("question not found")

type Question struct {
	Id          int               `yaml:"id" json:"id"`
	Title       string            `yaml:"title" json:"title"`
	Description string            `yaml:"description" json:"description"`
	Difficulty  string            `yaml:"difficulty" json:"difficulty"`
	Category    string            `yaml:"category" json:"category"`
	Template    string            `yaml:"template" json:"template"`
	StarterCode map[string]string `yaml:"starterCode" json:"starterCode"`
}

// StarterFiles returns a copy of the starter code that callers may modify.
func (q Question) StarterFiles() map[string]string {
	out := make(map[string]string, len(q.StarterCode))
	for path, content := range q.StarterCode {
		out[path] = content
	}
	return out
}

type Catalog struct {
	questions []Question
	byId      map[int]Question
}

type catalogFile struct {
	Questions []Question `yaml:"questions"`
}

// Default returns the built-in catalog. It panics only if the embedded file
// is broken, which the package tests guard against.
func Default() *Catalog {
	c, err := Parse(embeddedQuestions)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded questions invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file with the same layout as the embedded one.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byId: make(map[int]Question, len(file.Questions))}
	for _, q := range file.Questions {
		if q.Id <= 0 {
			return nil, fmt.Errorf("question %q: id must be positive", q.Title)
		}
		if _, dup := c.byId[q.Id]; dup {
			return nil, fmt.Errorf("question %d: duplicate id", q.Id)
		}
		if !IsKnownTemplate(q.Template) {
			return nil, fmt.Errorf("question %d: unknown template %q", q.Id, q.Template)
		}
		if len(q.StarterCode) == 0 {
			return nil, fmt.Errorf("question %d: no starter code", q.Id)
		}
		c.byId[q.Id] = q
		c.questions = append(c.questions, q)
	}
	sort.Slice(c.questions, func(i, j int) bool { return c.questions[i].Id < c.questions[j].Id })
	return c, nil
}

// Questions lists all questions ordered by id.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

func (c *Catalog) Find(id int) (Question, error) {
	q, ok := c.byId[id]
	if !ok {
		return Question{}, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return q, nil
}
