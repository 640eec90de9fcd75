//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// main package makes it possible to build the dead-assignment checker as a standalone code
// checker that can be independently invoked against other packages.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/flowgraph/dataflow/config"
	"github.com/flowgraph/dataflow/deadassign"
)

// Analyzer is identical to deadassign.Analyzer, except that it overrides the run function for
// extra filtering of errors, since singlechecker does not support error suppression like other
// popular linter drivers do.
var Analyzer = &analysis.Analyzer{
	Name:       deadassign.Analyzer.Name,
	Doc:        deadassign.Analyzer.Doc,
	Run:        run,
	FactTypes:  deadassign.Analyzer.FactTypes,
	ResultType: deadassign.Analyzer.ResultType,
	Requires:   deadassign.Analyzer.Requires,
}

var (
	// _includeErrorsInFiles is a driver flag for specifying the list of file prefixes to only
	// report errors for.
	_includeErrorsInFiles string
	// _excludeErrorsInFiles is a driver flag for specifying the list of file prefixes to not
	// report errors for.
	_excludeErrorsInFiles string
	// _version, when non-empty, asks the driver to print its own version (validated as a semantic
	// version via golang.org/x/mod/semver) and exit, instead of running the analysis.
	_version string
)

func run(pass *analysis.Pass) (any, error) {
	// Properly parse the error suppression flags.
	includes, err := parseFilePrefixes(_includeErrorsInFiles)
	if err != nil {
		return nil, fmt.Errorf("parse file prefixes for error inclusion: %w", err)
	}
	excludes, err := parseFilePrefixes(_excludeErrorsInFiles)
	if err != nil {
		return nil, fmt.Errorf("parse file prefixes for error exclusion: %w", err)
	}

	// Override the report function to add error filtering logic.
	report := pass.Report
	pass.Report = func(d analysis.Diagnostic) {
		p := pass.Fset.File(d.Pos).Name()
		for _, e := range excludes {
			if strings.HasPrefix(p, e) {
				return
			}
		}
		for _, i := range includes {
			if strings.HasPrefix(p, i) {
				report(d)
				return
			}
		}
	}

	// Delegate the real analysis run to the underlying deadassign analyzer.
	return deadassign.Analyzer.Run(pass)
}

// parseFilePrefixes parses the comma-separated list of file prefixes, converts them to absolute
// file paths, and returns them as a slice.
func parseFilePrefixes(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	list := strings.Split(s, ",")
	for i := range list {
		p, err := filepath.Abs(list[i])
		if err != nil {
			return nil, fmt.Errorf("convert %q to absolute path: %w", list[i], err)
		}
		list[i] = p
	}
	return list, nil
}

// _buildVersion is the driver's own semantic version, reported by -version. It is deliberately
// empty in source; release builds are expected to set it via -ldflags "-X main._buildVersion=vX.Y.Z".
var _buildVersion = ""

func main() {
	// For better UX, lift the flags from config.Analyzer to the top level so that users can
	// specify them without having to specify the analyzer name ("dataflow_config"), e.g.
	// `dataflow -widening-threshold 5 ./...` instead of
	// `dataflow -dataflow_config.widening-threshold 5 ./...`.
	config.Analyzer.Flags.VisitAll(func(f *flag.Flag) { flag.Var(f.Value, f.Name, f.Usage) })

	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	flag.StringVar(&_includeErrorsInFiles, "include-errors-in-files", wd, "A comma-separated list of file prefixes to report errors, default is current working directory.")
	flag.StringVar(&_excludeErrorsInFiles, "exclude-errors-in-files", "", "A comma-separated list of file prefixes to exclude from error reporting. This takes precedence over include-errors-in-files.")
	flag.StringVar(&_version, "version", "", "if set, validate the driver's build version against this constraint and exit")
	var configPath string
	flag.StringVar(&configPath, "config", filepath.Join(wd, "dataflow.yaml"), "path to a dataflow.yaml file of flag overrides, applied before any flags given on the command line")

	// A first parse picks up -config; the file's overrides are then applied and the command line
	// is parsed again so that anything the user actually passes there still wins.
	flag.Parse()
	overrides, err := config.LoadYAMLOverrides(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dataflow: %v\n", err)
		os.Exit(1)
	}
	if err := overrides.ApplyTo(&config.Analyzer.Flags); err != nil {
		fmt.Fprintf(os.Stderr, "dataflow: %v\n", err)
		os.Exit(1)
	}

	flag.Parse()

	if _version != "" {
		if !semver.IsValid(_buildVersion) {
			fmt.Fprintf(os.Stderr, "dataflow: no valid build version embedded in this binary (got %q)\n", _buildVersion)
			os.Exit(1)
		}
		if semver.Compare(_buildVersion, _version) < 0 {
			fmt.Fprintf(os.Stderr, "dataflow: build version %s is older than required %s\n", _buildVersion, _version)
			os.Exit(1)
		}
		fmt.Println(_buildVersion)
		return
	}

	singlechecker.Main(Analyzer)
}
