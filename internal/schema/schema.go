package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// File represents the root of a YAML schema file.
type File struct {
	// Version of the schema format.
	Version string `yaml:"version,omitempty"`

	// Package is the name of the generated package. Optional; the command
	// line can override it.
	Package string `yaml:"package,omitempty"`

	// Structs lists the register blocks.
	Structs []StructDef `yaml:"structs"`
}

// StructDef describes one struct.
type StructDef struct {
	// Name of the struct. Exported in the generated code ("timer" becomes
	// "Timer").
	Name string `yaml:"name"`

	// Layout is the layout directive. Required.
	Layout string `yaml:"layout"`

	// Doc is copied into the generated doc comment.
	Doc string `yaml:"doc,omitempty"`

	Fields []FieldDef `yaml:"fields"`

	// Line is the line of the definition in the source file.
	Line int `yaml:"-"`
}

// FieldDef describes one field.
// YAML formats supported:
//   - Full: {name: ctrl, type: u32, doc: "control register"}
//   - Shorthand: {ctrl: u32}
type FieldDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Doc  string `yaml:"doc,omitempty"`
	Line int    `yaml:"-"`
}

// UnmarshalYAML records the line of the definition.
func (s *StructDef) UnmarshalYAML(node *yaml.Node) error {
	type plain StructDef

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*s = StructDef(p)
	s.Line = node.Line

	return nil
}

// UnmarshalYAML accepts the full and the shorthand field forms.
func (f *FieldDef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected field mapping, got %v", node.Line, node.Tag)
	}

	if isShorthand(node) {
		var name, typ string
		if err := node.Content[0].Decode(&name); err != nil {
			return err
		}

		if err := node.Content[1].Decode(&typ); err != nil {
			return err
		}

		*f = FieldDef{Name: name, Type: typ, Line: node.Line}

		return nil
	}

	type plain FieldDef

	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}

	*f = FieldDef(p)
	f.Line = node.Line

	return nil
}

// isShorthand reports whether node is a single "name: type" pair.
func isShorthand(node *yaml.Node) bool {
	if len(node.Content) != 2 || node.Content[1].Kind != yaml.ScalarNode {
		return false
	}

	switch node.Content[0].Value {
	case "name", "type", "doc":
		return false
	default:
		return true
	}
}
