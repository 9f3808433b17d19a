// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Data sources keep their connection strings here with 0600 permissions;
// the AI provider key goes to the OS keychain, never to this file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"askdb/cli/internal/xdg"
)

// DataSource is a saved database connection.
type DataSource struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	ConnectionString string `json:"connection_string"`
}

// Preset is a saved query a user chose to keep from a chat session.
type Preset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SourceID  string    `json:"source_id"`
	SQL       string    `json:"sql"`
	CreatedAt time.Time `json:"created_at"`
}

// Config holds the CLI settings and saved entities.
type Config struct {
	LogLevel    string       `json:"log_level"`
	Model       string       `json:"model,omitempty"`
	BaseURL     string       `json:"base_url,omitempty"`
	DataSources []DataSource `json:"data_sources"`
	Presets     []Preset     `json:"presets"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.LogLevel = "info"
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return c, nil
}

// Save writes configuration with 0600 permissions. Connection strings may
// carry passwords, so the file is never world-readable.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

// AddDataSource appends a data source with a fresh ID. Names must be unique;
// a duplicate name is rejected so "askdb chat --source name" stays unambiguous.
func (c *Config) AddDataSource(name, sourceType, connString string) (*DataSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("data source name must not be empty")
	}
	for _, ds := range c.DataSources {
		if strings.EqualFold(ds.Name, name) {
			return nil, fmt.Errorf("a data source named %q already exists", name)
		}
	}
	ds := DataSource{
		ID:               uuid.NewString(),
		Name:             name,
		Type:             sourceType,
		ConnectionString: connString,
	}
	c.DataSources = append(c.DataSources, ds)
	return &c.DataSources[len(c.DataSources)-1], nil
}

// FindDataSource looks a data source up by ID or name, case-insensitive on
// the name.
func (c *Config) FindDataSource(idOrName string) (*DataSource, bool) {
	for i := range c.DataSources {
		ds := &c.DataSources[i]
		if ds.ID == idOrName || strings.EqualFold(ds.Name, idOrName) {
			return ds, true
		}
	}
	return nil, false
}

// RemoveDataSource removes a data source by ID or name, along with the
// presets saved against it.
func (c *Config) RemoveDataSource(idOrName string) bool {
	ds, ok := c.FindDataSource(idOrName)
	if !ok {
		return false
	}
	id := ds.ID
	kept := c.DataSources[:0]
	for _, d := range c.DataSources {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	c.DataSources = kept

	presets := c.Presets[:0]
	for _, p := range c.Presets {
		if p.SourceID != id {
			presets = append(presets, p)
		}
	}
	c.Presets = presets
	return true
}

// AddPreset saves a query under a name for later replay.
func (c *Config) AddPreset(name, sourceID, sqlText string) (*Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("preset name must not be empty")
	}
	for _, p := range c.Presets {
		if strings.EqualFold(p.Name, name) {
			return nil, fmt.Errorf("a preset named %q already exists", name)
		}
	}
	p := Preset{
		ID:        uuid.NewString(),
		Name:      name,
		SourceID:  sourceID,
		SQL:       sqlText,
		CreatedAt: time.Now().UTC(),
	}
	c.Presets = append(c.Presets, p)
	return &c.Presets[len(c.Presets)-1], nil
}

// FindPreset looks a preset up by ID or name, case-insensitive on the name.
func (c *Config) FindPreset(idOrName string) (*Preset, bool) {
	for i := range c.Presets {
		p := &c.Presets[i]
		if p.ID == idOrName || strings.EqualFold(p.Name, idOrName) {
			return p, true
		}
	}
	return nil, false
}

// RemovePreset removes a preset by ID or name.
func (c *Config) RemovePreset(idOrName string) bool {
	p, ok := c.FindPreset(idOrName)
	if !ok {
		return false
	}
	id := p.ID
	kept := c.Presets[:0]
	for _, pr := range c.Presets {
		if pr.ID != id {
			kept = append(kept, pr)
		}
	}
	c.Presets = kept
	return true
}

// SortedPresets returns presets ordered by creation time, newest first.
func (c *Config) SortedPresets() []Preset {
	out := make([]Preset, len(c.Presets))
	copy(out, c.Presets)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
