/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package dist reads installed-distribution metadata from .dist-info
// directories, so graph nodes can be labeled with the PyPI distribution
// that provides them. Distribution contents are assumed not to change
// during a run.
package dist

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/moduli/fs"
)

// Distribution describes one installed distribution.
type Distribution struct {
	// Identifier is the path of the .dist-info directory. It is not a
	// valid Python module name.
	Identifier string

	// Name and Version come from the METADATA file.
	Name    string
	Version string

	// Files holds every file in the distribution as an absolute path.
	Files map[string]bool

	// ImportNames holds the importable module names the distribution
	// provides.
	ImportNames map[string]bool
}

// ContainsFile reports whether the distribution installed the given file.
func (d *Distribution) ContainsFile(filename string) bool {
	return d.Files[filepath.Clean(filename)]
}

// moduleSuffixes are the file suffixes that make a RECORD entry an
// importable module.
var moduleSuffixes = []string{".py", ".pyc", ".so", ".pyd"}

// Parse reads the METADATA and RECORD files of a .dist-info directory.
func Parse(fsys fs.FileSystem, distInfoDir string) (*Distribution, error) {
	name, version, err := parseMetadata(fsys, filepath.Join(distInfoDir, "METADATA"))
	if err != nil {
		return nil, err
	}

	record, err := fsys.ReadFile(filepath.Join(distInfoDir, "RECORD"))
	if err != nil {
		return nil, err
	}

	d := &Distribution{
		Identifier:  distInfoDir,
		Name:        name,
		Version:     version,
		Files:       make(map[string]bool),
		ImportNames: make(map[string]bool),
	}

	siteDir := filepath.Dir(distInfoDir)
	reader := csv.NewReader(bytes.NewReader(record))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading RECORD in %s: %w", distInfoDir, err)
	}

	for _, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		relPath := row[0]
		d.Files[filepath.Clean(filepath.Join(siteDir, relPath))] = true

		if importName, ok := importNameFor(relPath); ok {
			d.ImportNames[importName] = true
		}
	}

	return d, nil
}

// parseMetadata extracts the Name and Version headers from a METADATA
// file, which uses RFC 822 style headers followed by an optional body.
func parseMetadata(fsys fs.FileSystem, path string) (name, version string, err error) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		return "", "", err
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break // end of headers
		}
		if value, ok := strings.CutPrefix(line, "Name: "); ok {
			name = value
		}
		if value, ok := strings.CutPrefix(line, "Version: "); ok {
			version = value
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	if name == "" {
		return "", "", fmt.Errorf("no Name header in %s", path)
	}
	return name, version, nil
}

// importNameFor converts a RECORD path into an importable module name,
// or reports false for data files and bytecode caches.
func importNameFor(relPath string) (string, bool) {
	if strings.Contains(relPath, "/__pycache__/") || strings.HasPrefix(relPath, "__pycache__/") {
		return "", false
	}

	for _, suffix := range moduleSuffixes {
		if !strings.HasSuffix(relPath, suffix) {
			continue
		}
		trimmed := strings.TrimSuffix(relPath, suffix)
		trimmed = strings.TrimSuffix(trimmed, "/__init__")
		return strings.ReplaceAll(trimmed, "/", "."), true
	}
	return "", false
}

// Cache looks up the distribution providing a file, parsing each
// .dist-info directory at most once.
type Cache struct {
	fsys  fs.FileSystem
	cache map[string]*Distribution
}

// NewCache creates an empty distribution cache.
func NewCache(fsys fs.FileSystem) *Cache {
	return &Cache{fsys: fsys, cache: make(map[string]*Distribution)}
}

// ForFile finds the installed distribution containing filename by
// scanning the .dist-info directories of each search path entry.
// Returns nil when no distribution claims the file.
func (c *Cache) ForFile(filename string, path []string) *Distribution {
	for _, entry := range path {
		entries, err := c.fsys.ReadDir(entry)
		if err != nil {
			continue
		}
		for _, dirEntry := range entries {
			if !strings.HasSuffix(dirEntry.Name(), ".dist-info") {
				continue
			}
			distInfoDir := filepath.Join(entry, dirEntry.Name())
			d, cached := c.cache[distInfoDir]
			if !cached {
				parsed, err := Parse(c.fsys, distInfoDir)
				if err != nil {
					// Malformed metadata: remember the failure so the
					// directory is not re-parsed on every lookup.
					c.cache[distInfoDir] = nil
					continue
				}
				d = parsed
				c.cache[distInfoDir] = d
			}
			if d != nil && d.ContainsFile(filename) {
				return d
			}
		}
	}
	return nil
}
