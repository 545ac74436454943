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

// Package trace provides the trace command for moduli.
package trace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/moduli/export"
	"bennypowers.dev/moduli/fs"
	"bennypowers.dev/moduli/graph"
	"bennypowers.dev/moduli/importinfo"
	"bennypowers.dev/moduli/internal/output"
	"bennypowers.dev/moduli/trace"
	"bennypowers.dev/moduli/venv"
)

// Cmd is the trace cobra command that scans Python scripts and modules
// for imports and reports the resulting dependency graph.
var Cmd = &cobra.Command{
	Use:   "trace [script.py...]",
	Short: "Trace Python imports into a dependency graph",
	Long: `Trace Python scripts and modules to find everything they import,
directly or indirectly, on the module search path.

Script arguments and --module roots share one graph; a module imported
from several roots appears once.`,
	Example: `  # Trace a script against the current directory
  moduli trace app.py

  # Trace scripts matching a glob pattern
  moduli trace --glob "src/**/main_*.py"

  # Trace a module by name on an explicit search path
  moduli trace --module requests -p venv/lib/python3.12/site-packages

  # Leave the test framework out of the graph
  moduli trace app.py --exclude pytest

  # Resolve stdlib paths through a virtual environment
  moduli trace app.py --venv ./venv

  # Render the graph for Graphviz
  moduli trace app.py --format dot | dot -Tsvg > deps.svg`,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "report", "Output format (report, json, dot, html)")
	Cmd.Flags().StringSliceP("module", "m", nil, "Module names to trace in addition to script arguments")
	Cmd.Flags().String("glob", "", "Glob pattern matching scripts to trace (e.g., \"src/**/*.py\")")
	Cmd.Flags().StringSliceP("exclude", "x", nil, "Module names to exclude from tracing")
	Cmd.Flags().String("venv", "", "Virtual environment directory for path canonicalization")
}

func run(cmd *cobra.Command, args []string) error {
	osfs := fs.NewOSFileSystem()

	searchPath := viper.GetStringSlice("path")
	for i, entry := range searchPath {
		abs, err := filepath.Abs(entry)
		if err != nil {
			return fmt.Errorf("invalid search path entry %q: %w", entry, err)
		}
		searchPath[i] = abs
	}

	// Collect scripts from args and glob pattern, deduplicating by
	// absolute path
	seen := make(map[string]struct{})
	var scripts []string

	for _, arg := range args {
		absPath, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("invalid file path %q: %w", arg, err)
		}
		if _, exists := seen[absPath]; !exists {
			seen[absPath] = struct{}{}
			scripts = append(scripts, absPath)
		}
	}

	globPattern, _ := cmd.Flags().GetString("glob")
	if globPattern != "" {
		matches, err := doublestar.FilepathGlob(globPattern)
		if err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
		for _, match := range matches {
			absPath, err := filepath.Abs(match)
			if err != nil {
				return fmt.Errorf("invalid file path %q: %w", match, err)
			}
			if _, exists := seen[absPath]; !exists {
				seen[absPath] = struct{}{}
				scripts = append(scripts, absPath)
			}
		}
	}

	modules, _ := cmd.Flags().GetStringSlice("module")
	if len(scripts) == 0 && len(modules) == 0 {
		return fmt.Errorf("nothing to trace: provide script arguments, --glob or --module")
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "report", "json", "dot", "html":
		// valid
	default:
		return fmt.Errorf("invalid format %q: must be one of report, json, dot, html", format)
	}

	excludes, _ := cmd.Flags().GetStringSlice("exclude")
	tracer := trace.NewTracer(osfs, searchPath).WithExcludes(excludes...)

	if venvDir, _ := cmd.Flags().GetString("venv"); venvDir != "" {
		env, err := venv.Discover(osfs, venvDir)
		if err != nil {
			return fmt.Errorf("reading virtual environment %q: %w", venvDir, err)
		}
		if env == nil {
			return fmt.Errorf("%q is not a virtual environment (no pyvenv.cfg)", venvDir)
		}
		tracer.WithVirtualEnv(env)
	}

	for _, script := range scripts {
		if _, err := tracer.AddScript(script); err != nil {
			return fmt.Errorf("tracing %s: %w", script, err)
		}
	}
	for _, name := range modules {
		if _, err := tracer.AddModule(name); err != nil {
			return fmt.Errorf("tracing module %s: %w", name, err)
		}
	}

	for _, traceErr := range tracer.Errors {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", traceErr)
	}

	var buf bytes.Buffer
	if err := render(&buf, tracer, format); err != nil {
		return err
	}
	return output.Write(osfs, buf.Bytes())
}

func render(buf *bytes.Buffer, tracer *trace.Tracer, format string) error {
	switch format {
	case "json":
		return export.JSON(buf, tracer.Graph())
	case "dot":
		return export.Dot(buf, tracer.Graph(), dotNodeAttrs, dotEdgeAttrs)
	case "html":
		return export.HTML(buf, tracer.Graph(), "Module dependencies")
	default:
		return tracer.Report(buf)
	}
}

func dotNodeAttrs(m *trace.Module) map[string]string {
	attrs := map[string]string{
		"label": m.Name + "\n" + m.Kind.String(),
	}
	switch m.Kind {
	case trace.KindMissing:
		attrs["color"] = "red"
	case trace.KindScript:
		attrs["shape"] = "box"
	case trace.KindExcluded:
		attrs["style"] = "dashed"
	}
	return attrs
}

func dotEdgeAttrs(edge graph.Edge[*trace.Module, importinfo.DependencyInfo]) map[string]string {
	attrs := map[string]string{}
	if edge.Attribute.Optional {
		attrs["style"] = "dotted"
	}
	if edge.Attribute.ImportedAs != "" {
		attrs["label"] = "as " + edge.Attribute.ImportedAs
	}
	return attrs
}
