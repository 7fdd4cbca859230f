package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/brandbot/internal/types"
)

// loadBriefFile reads a brief from a .yaml, .yml or .json file.
func loadBriefFile(path string) (*types.BrandBrief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read brief %s: %w", path, err)
	}

	brief := types.NewBrandBrief()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(brief); err != nil {
			return nil, fmt.Errorf("failed to parse brief %s: %w", path, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(brief); err != nil {
			return nil, fmt.Errorf("failed to parse brief %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported brief format %q (use .yaml or .json)", filepath.Ext(path))
	}

	if err := brief.Validate(); err != nil {
		return nil, fmt.Errorf("invalid brief %s: %w", path, err)
	}
	return brief, nil
}

// writeBrandKit writes the brief with its generated assets as YAML into dir.
func writeBrandKit(dir string, brief *types.BrandBrief) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := slug(brief.ResolvedName())
	if name == "" {
		name = brief.ID.String()
	}
	path := filepath.Join(dir, name+".yaml")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(brief); err != nil {
		return "", fmt.Errorf("failed to encode brand kit: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode brand kit: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write brand kit: %w", err)
	}
	return path, nil
}

// slug lowercases s and keeps letters and digits, joining words with dashes.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
