package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest declares routes answered with a fixed response.
type Manifest struct {
	Routes []RouteSpec `yaml:"routes"`
}

// RouteSpec is one manifest route. {name} placeholders in Body are
// replaced with the bindings of the matched pattern.
type RouteSpec struct {
	Pattern     string `yaml:"pattern"`
	Status      int    `yaml:"status"`
	ContentType string `yaml:"content_type"`
	Body        string `yaml:"body"`
}

// LoadManifest loads and parses a YAML route manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("manifest path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return ParseManifest(data)
}

// ParseManifest parses a YAML route manifest and applies defaults.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	for i := range m.Routes {
		r := &m.Routes[i]
		if r.Pattern == "" {
			return nil, fmt.Errorf("manifest route %d: pattern is empty", i)
		}
		if r.Status == 0 {
			r.Status = 200
		}
		if r.Status < 100 || r.Status > 599 {
			return nil, fmt.Errorf("manifest route %q: invalid status %d", r.Pattern, r.Status)
		}
		if r.ContentType == "" {
			r.ContentType = "text/plain; charset=utf-8"
		}
	}

	return &m, nil
}
