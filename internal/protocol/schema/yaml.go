package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Schemas []yamlSchema `yaml:"schemas"`
}

type yamlSchema struct {
	Name   string      `yaml:"name"`
	Open   bool        `yaml:"open"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	Ref      string `yaml:"ref"`
	Required bool   `yaml:"required"`
}

// ParseYAML reads schema declarations. data may hold several YAML documents,
// each with a top-level "schemas" list. The result is unresolved; pass it to
// Registry.Define.
func ParseYAML(data []byte) ([]*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var out []*Schema
	for {
		var file yamlFile
		if err := dec.Decode(&file); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("schema yaml: %w", err)
		}
		for _, ys := range file.Schemas {
			s := &Schema{Name: ys.Name, Open: ys.Open}
			for _, yf := range ys.Fields {
				kind, err := ParseKind(yf.Kind)
				if err != nil {
					return nil, ValidationError{Schema: ys.Name, Field: yf.Name, Reason: err.Error()}
				}
				s.Fields = append(s.Fields, FieldSpec{Name: yf.Name, Kind: kind, Ref: yf.Ref, Required: yf.Required})
			}
			out = append(out, s)
		}
	}
	return out, nil
}

// LoadYAML parses data and defines every declared schema in r.
func (r *Registry) LoadYAML(data []byte) error {
	decls, err := ParseYAML(data)
	if err != nil {
		return err
	}
	return r.Define(decls...)
}

// LoadFile defines the schemas declared in the YAML file at path.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("schema load failed (%s): %w", path, err)
	}
	if err := r.LoadYAML(data); err != nil {
		return fmt.Errorf("schema load failed (%s): %w", path, err)
	}
	return nil
}
