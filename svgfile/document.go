// Package svgfile stores svgnode scenes as declarative documents,
// in YAML or JSON.
//
// A document lists the elements of a scene by kind, with their slot
// values, transform functions and, for paths, their segments:
//
//	width: 200
//	height: 100
//	children:
//	  - kind: circle
//	    attrs: {label: sun, fill: yellow, r: 20}
//	    transform: {translate: [50, 50]}
//	  - kind: path
//	    segments:
//	      - {command: M, coords: [0, 0]}
//	      - {command: l, coords: [10, 10], close: true}
package svgfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type (
	// Scene is the document of a root svg node.
	Scene struct {
		Width    interface{}            `json:"width,omitempty" yaml:"width,omitempty"`
		Height   interface{}            `json:"height,omitempty" yaml:"height,omitempty"`
		Attrs    map[string]interface{} `json:"attrs,omitempty" yaml:"attrs,omitempty"`
		Children []Element              `json:"children,omitempty" yaml:"children,omitempty"`
	}

	// Element is the document of one node and its subtree.
	Element struct {
		Kind      string                 `json:"kind" yaml:"kind"`
		Attrs     map[string]interface{} `json:"attrs,omitempty" yaml:"attrs,omitempty"`
		Transform map[string][]float64   `json:"transform,omitempty" yaml:"transform,omitempty"`
		Segments  []Segment              `json:"segments,omitempty" yaml:"segments,omitempty"`
		Children  []Element              `json:"children,omitempty" yaml:"children,omitempty"`
	}

	// Segment is one path command. A lower case command is relative.
	Segment struct {
		Command string    `json:"command" yaml:"command"`
		Coords  []float64 `json:"coords,omitempty" yaml:"coords,omitempty"`
		Close   bool      `json:"close,omitempty" yaml:"close,omitempty"`
	}
)

// Format is the encoding of a document.
type Format uint8

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// FormatOf returns the format matching the extension of filename.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unsupported document extension %q", filepath.Ext(filename))
}

// Decode reads a document.
func Decode(r io.Reader, format Format) (*Scene, error) {
	var (
		s   Scene
		err error
	)
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&s)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&s)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s scene: %w", format, err)
	}
	return &s, nil
}

// Encode writes a document.
func Encode(w io.Writer, format Format, s *Scene) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml scene: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode json scene: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported format %s", format)
}

// Load reads the named document, its format being chosen by extension.
func Load(filename string) (*Scene, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, format)
}

// Save writes the document to the named file, its format being
// chosen by extension.
func Save(filename string, s *Scene) error {
	format, err := FormatOf(filename)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := Encode(f, format, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
