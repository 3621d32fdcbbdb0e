// Package problem provides the catalog of practice problems.
package problem

import (
	_ "embed"
	"fmt"
	"io/fs"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed problems.yaml
var builtinProblems []byte

// CatalogFile represents the YAML structure for a problem catalog
type CatalogFile struct {
	Problems []ProblemFile `yaml:"problems"`
}

// ProblemFile represents the YAML structure for a single problem
type ProblemFile struct {
	ID                string            `yaml:"id"`
	Type              string            `yaml:"type"`
	Title             string            `yaml:"title"`
	Description       string            `yaml:"description"`
	Difficulty        string            `yaml:"difficulty"`
	InputDescription  string            `yaml:"input_description"`
	OutputDescription string            `yaml:"output_description"`
	Examples          []domain.Example  `yaml:"examples"`
	Starter           map[string]string `yaml:"starter"`
}

// Parse decodes a YAML catalog into problems, preserving file order
func Parse(data []byte) ([]*domain.Problem, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse problem catalog: %w", err)
	}

	problems := make([]*domain.Problem, 0, len(file.Problems))
	for _, pf := range file.Problems {
		p, err := pf.toDomain()
		if err != nil {
			return nil, err
		}
		problems = append(problems, p)
	}
	return problems, nil
}

// LoadFile reads a YAML catalog from a file system
func LoadFile(fsys fs.FS, name string) ([]*domain.Problem, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read problem catalog: %w", err)
	}
	return Parse(data)
}

// Builtin returns the embedded problem catalog
func Builtin() ([]*domain.Problem, error) {
	return Parse(builtinProblems)
}

func (pf ProblemFile) toDomain() (*domain.Problem, error) {
	pt, err := domain.ParseProblem(pf.Type)
	if err != nil {
		return nil, fmt.Errorf("problem %s: %w", pf.ID, err)
	}
	if pf.ID != pt.ID() {
		return nil, fmt.Errorf("%w: problem %s declares type %s (id %s)", domain.ErrInvalidProblem, pf.ID, pt, pt.ID())
	}

	starter := make(map[domain.Language]string, len(pf.Starter))
	for name, code := range pf.Starter {
		lang, err := domain.ParseLanguage(name)
		if err != nil {
			return nil, fmt.Errorf("problem %s starter: %w", pf.ID, err)
		}
		starter[lang] = code
	}

	return &domain.Problem{
		ID:                pf.ID,
		Type:              pt,
		Title:             pf.Title,
		Description:       pf.Description,
		Difficulty:        domain.Difficulty(pf.Difficulty),
		InputDescription:  pf.InputDescription,
		OutputDescription: pf.OutputDescription,
		Examples:          pf.Examples,
		StarterCode:       starter,
	}, nil
}
