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

// Package pysrc extracts import statements and module-level bindings
// from Python source files using tree-sitter.
package pysrc

import (
	"embed"
	"fmt"
	"path"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsPython "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

//go:embed queries/*.scm
var queryFiles embed.FS

// pythonLanguage holds the pre-initialized tree-sitter Python grammar.
var pythonLanguage = ts.NewLanguage(tsPython.Language())

// Parser pool for reuse across extractions.
var parserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(pythonLanguage); err != nil {
			panic("failed to set Python language: " + err.Error())
		}
		return parser
	},
}

// getParser retrieves a Python parser from the pool.
func getParser() *ts.Parser {
	return parserPool.Get().(*ts.Parser)
}

// putParser returns a Python parser to the pool.
func putParser(p *ts.Parser) {
	p.Reset()
	parserPool.Put(p)
}

// QueryManager manages compiled tree-sitter queries for Python parsing.
type QueryManager struct {
	mu      sync.Mutex
	closed  bool
	queries map[string]*ts.Query
}

// NewQueryManager creates a new QueryManager with the named queries loaded.
func NewQueryManager(names []string) (*QueryManager, error) {
	qm := &QueryManager{
		queries: make(map[string]*ts.Query),
	}

	for _, name := range names {
		if err := qm.loadQuery(name); err != nil {
			qm.Close()
			return nil, err
		}
	}

	return qm, nil
}

func (qm *QueryManager) loadQuery(name string) error {
	queryPath := path.Join("queries", name+".scm")
	data, err := queryFiles.ReadFile(queryPath)
	if err != nil {
		return fmt.Errorf("failed to read query %s: %w", queryPath, err)
	}

	query, qerr := ts.NewQuery(pythonLanguage, string(data))
	if qerr != nil {
		return fmt.Errorf("failed to parse query %s: %w", name, qerr)
	}

	qm.queries[name] = query
	return nil
}

// Close releases all query resources. Safe to call multiple times.
func (qm *QueryManager) Close() {
	qm.mu.Lock()
	if qm.closed {
		qm.mu.Unlock()
		return
	}
	qm.closed = true
	queries := qm.queries
	qm.queries = nil
	qm.mu.Unlock()

	for _, q := range queries {
		q.Close()
	}
}

// Query returns a compiled query by name.
func (qm *QueryManager) Query(name string) (*ts.Query, error) {
	q, ok := qm.queries[name]
	if !ok {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return q, nil
}

// Global query manager singleton
var (
	globalQM     *QueryManager
	globalQMOnce sync.Once
	globalQMErr  error
)

// GetQueryManager returns the global query manager instance.
func GetQueryManager() (*QueryManager, error) {
	globalQMOnce.Do(func() {
		globalQM, globalQMErr = NewQueryManager([]string{"imports", "globals"})
	})
	return globalQM, globalQMErr
}
