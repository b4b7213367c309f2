package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a profile document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported profile extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Decode reads a Description. Unknown fields are rejected and numbers are
// kept as json.Number until a parameter's declared kind resolves them.
func Decode(r io.Reader, format Format) (Description, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Description{}, fmt.Errorf("read profile: %w", err)
	}
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	default:
		return Description{}, fmt.Errorf("unsupported profile format %q", format)
	}
}

// ParseJSON decodes a JSON profile document.
func ParseJSON(data []byte) (Description, error) {
	var d Description
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Description{}, fmt.Errorf("%w: decode json: %w", ErrProfileInvalid, err)
	}
	return d, nil
}

// ParseYAML decodes a YAML profile document by way of its JSON form, so both
// formats share one set of decoding rules.
func ParseYAML(data []byte) (Description, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Description{}, fmt.Errorf("%w: decode yaml: %w", ErrProfileInvalid, err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return Description{}, fmt.Errorf("%w: convert yaml: %w", ErrProfileInvalid, err)
	}
	return ParseJSON(raw)
}

// Encode writes d in the given format. JSON is indented by two spaces.
func Encode(w io.Writer, d Description, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		// json.Number would be written as a quoted string; go through plain values
		raw, err := json.Marshal(d)
		if err != nil {
			return err
		}
		var plain map[string]any
		if err := json.Unmarshal(raw, &plain); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plain); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported profile format %q", format)
	}
}

// ReadFile reads a profile document, choosing the format by extension.
func ReadFile(path string) (Description, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Description{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Description{}, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// LoadFile reads and validates a profile file.
func LoadFile(path string, cats Catalogues) (*Profile, error) {
	d, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(d, cats)
}

// WriteFile writes p to path, choosing the format by extension.
func WriteFile(path string, p *Profile) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, p.Description(), format); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
