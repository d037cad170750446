package curriculum

import (
	"embed"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/wrongbook-backend/internal/domain/taxonomy"
)

//go:embed definitions/*.yaml
var defFS embed.FS

// Definition is one subject's versioned curriculum: an ordered list of
// grade-semester entries, each an ordered list of chapters. Math chapters carry
// sections; every other subject hangs tags directly off the chapter.
type Definition struct {
	Subject taxonomy.Subject `yaml:"subject"`
	Grades  []Grade          `yaml:"grades"`
}

type Grade struct {
	Name     string    `yaml:"name"`
	Chapters []Chapter `yaml:"chapters"`
}

type Chapter struct {
	Name     string    `yaml:"name"`
	Sections []Section `yaml:"sections,omitempty"`
	Tags     []string  `yaml:"tags,omitempty"`
}

type Section struct {
	Name string   `yaml:"name"`
	Tags []string `yaml:"tags"`
}

// NodeCount is the number of tag nodes seeding this definition creates.
func (d Definition) NodeCount() int {
	n := 0
	for _, g := range d.Grades {
		n++
		for _, c := range g.Chapters {
			n++
			n += len(c.Tags)
			for _, s := range c.Sections {
				n++
				n += len(s.Tags)
			}
		}
	}
	return n
}

// Library holds every subject's current definition.
type Library struct {
	defs map[taxonomy.Subject]Definition
}

// Load parses the embedded definitions. Malformed YAML fails loudly here, at
// boot, not at rebuild time.
func Load() (*Library, error) {
	return LoadFrom(defFS)
}

func LoadFrom(fsys fs.FS) (*Library, error) {
	entries, err := fs.Glob(fsys, "definitions/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob curriculum definitions: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no curriculum definitions found")
	}

	lib := &Library{defs: make(map[taxonomy.Subject]Definition, len(entries))}
	for _, name := range entries {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var def Definition
		if err := yaml.Unmarshal(raw, &def); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if err := validate(def); err != nil {
			return nil, fmt.Errorf("validate %s: %w", name, err)
		}
		if _, dup := lib.defs[def.Subject]; dup {
			return nil, fmt.Errorf("duplicate definition for subject %s (%s)", def.Subject, name)
		}
		lib.defs[def.Subject] = def
	}
	return lib, nil
}

func validate(def Definition) error {
	if !def.Subject.Valid() {
		return fmt.Errorf("unknown subject %q", string(def.Subject))
	}
	if len(def.Grades) == 0 {
		return fmt.Errorf("subject %s has no grades", def.Subject)
	}
	seen := make(map[string]bool, len(def.Grades))
	for _, g := range def.Grades {
		if g.Name == "" {
			return fmt.Errorf("subject %s has a grade with no name", def.Subject)
		}
		if seen[g.Name] {
			return fmt.Errorf("subject %s repeats grade %q", def.Subject, g.Name)
		}
		seen[g.Name] = true
		for _, c := range g.Chapters {
			if c.Name == "" {
				return fmt.Errorf("subject %s grade %q has a chapter with no name", def.Subject, g.Name)
			}
			if len(c.Sections) > 0 && len(c.Tags) > 0 {
				return fmt.Errorf("subject %s chapter %q mixes sections and direct tags", def.Subject, c.Name)
			}
			for _, s := range c.Sections {
				if s.Name == "" {
					return fmt.Errorf("subject %s chapter %q has a section with no name", def.Subject, c.Name)
				}
			}
		}
	}
	return nil
}

// ForSubject returns the current definition for a subject.
func (l *Library) ForSubject(s taxonomy.Subject) (Definition, bool) {
	def, ok := l.defs[s]
	return def, ok
}

// Subjects lists every subject that has a definition, in the fixed subject order.
func (l *Library) Subjects() []taxonomy.Subject {
	var out []taxonomy.Subject
	for _, s := range taxonomy.AllSubjects() {
		if _, ok := l.defs[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
