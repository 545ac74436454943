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
package dist

import (
	"testing"

	"bennypowers.dev/moduli/internal/mapfs"
)

const metadata = `Metadata-Version: 2.1
Name: requests
Version: 2.31.0
Summary: HTTP for humans

Name: not-a-header-anymore
`

const record = `requests/__init__.py,sha256=abc,100
requests/api.py,sha256=def,200
requests/__pycache__/api.cpython-312.pyc,,
requests-2.31.0.dist-info/METADATA,sha256=ghi,300
_speedups.so,sha256=jkl,400
`

func distFS() *mapfs.MapFileSystem {
	mfs := mapfs.New()
	mfs.AddFile("site/requests-2.31.0.dist-info/METADATA", metadata, 0644)
	mfs.AddFile("site/requests-2.31.0.dist-info/RECORD", record, 0644)
	mfs.AddFile("site/requests/__init__.py", "", 0644)
	mfs.AddFile("site/requests/api.py", "", 0644)
	return mfs
}

func TestParse(t *testing.T) {
	d, err := Parse(distFS(), "site/requests-2.31.0.dist-info")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if d.Name != "requests" {
		t.Errorf("Expected name requests, got %q", d.Name)
	}
	if d.Version != "2.31.0" {
		t.Errorf("Expected version 2.31.0, got %q", d.Version)
	}

	if !d.ContainsFile("site/requests/api.py") {
		t.Error("Expected RECORD file to be contained")
	}
	if d.ContainsFile("site/requests/missing.py") {
		t.Error("Did not expect unlisted file")
	}

	for _, name := range []string{"requests", "requests.api", "_speedups"} {
		if !d.ImportNames[name] {
			t.Errorf("Expected import name %q, got %v", name, d.ImportNames)
		}
	}
	// Bytecode caches and metadata files are not importable.
	if d.ImportNames["requests.__pycache__.api.cpython-312"] {
		t.Error("Bytecode cache must not become an import name")
	}
}

func TestParseBodyNotScanned(t *testing.T) {
	// The Name-like line after the blank header separator belongs to the
	// body and must be ignored.
	d, err := Parse(distFS(), "site/requests-2.31.0.dist-info")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Name != "requests" {
		t.Errorf("Body line overrode header, got %q", d.Name)
	}
}

func TestParseMissingMetadata(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("site/broken-1.0.dist-info/RECORD", "", 0644)

	if _, err := Parse(mfs, "site/broken-1.0.dist-info"); err == nil {
		t.Fatal("Expected error for missing METADATA")
	}
}

func TestCacheForFile(t *testing.T) {
	mfs := distFS()
	cache := NewCache(mfs)

	d := cache.ForFile("site/requests/api.py", []string{"site"})
	if d == nil {
		t.Fatal("Expected a distribution for RECORD file")
	}
	if d.Name != "requests" {
		t.Errorf("Expected requests, got %q", d.Name)
	}

	// The same lookup hits the cache and returns the same value.
	if again := cache.ForFile("site/requests/__init__.py", []string{"site"}); again != d {
		t.Error("Expected cached distribution instance")
	}

	if unknown := cache.ForFile("site/unclaimed.py", []string{"site"}); unknown != nil {
		t.Errorf("Expected nil for unclaimed file, got %v", unknown)
	}
}

func TestCacheMalformedDistInfo(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("site/broken-1.0.dist-info/RECORD", "x.py,,\n", 0644)

	cache := NewCache(mfs)
	// A dist-info without METADATA is skipped, not fatal.
	if d := cache.ForFile("site/x.py", []string{"site"}); d != nil {
		t.Errorf("Expected nil for malformed dist-info, got %v", d)
	}
}
