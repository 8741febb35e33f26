package report

import (
	"bytes"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseError reports a report that could not be opened or decoded.
// Callers never receive a partially parsed report alongside it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse report: %v", e.Err)
	}
	return fmt.Sprintf("parse report %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type rawReport struct {
	Modules map[string]rawModule `json:"modules"`
}

type rawModule struct {
	Attributes map[string]any     `json:"attributes"`
	Cells      map[string]rawCell `json:"cells"`
}

type rawCell struct {
	Type string `json:"type"`
}

// ParseFile reads and parses the report at path.
func ParseFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	rep, err := ParseBytes(data)
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return rep, nil
}

// Parse decodes a Yosys JSON report from r.
func Parse(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return ParseBytes(data)
}

// ParseBytes decodes a Yosys JSON report. Missing "modules", "cells" or
// "attributes" keys are treated as empty.
func ParseBytes(data []byte) (*Report, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Err: io.ErrUnexpectedEOF}
	}

	var raw rawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	rep := New()
	for name, rm := range raw.Modules {
		m := &Module{
			Name:     name,
			Cells:    make(map[string]int, len(rm.Cells)),
			Top:      attrTrue(rm.Attributes[AttrTop]),
			Blackbox: attrTrue(rm.Attributes[AttrBlackbox]),
			Whitebox: attrTrue(rm.Attributes[AttrWhitebox]),
		}
		for cellName, cell := range rm.Cells {
			if cell.Type == "" {
				return nil, &ParseError{Err: fmt.Errorf("cell %q in module %q has no type", cellName, name)}
			}
			m.AddCell(cell.Type)
		}
		rep.Add(m)
	}
	return rep, nil
}
