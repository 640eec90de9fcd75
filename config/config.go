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

// Package config implements a sub-analyzer whose only job is to parse and expose the engine's
// handful of user-tunable knobs, so that every other analyzer in this module can simply declare
// config.Analyzer as a dependency and read pass.ResultOf[config.Analyzer].(*config.Config) instead
// of each wiring up its own flags.
package config

import (
	"flag"
	"reflect"

	"golang.org/x/tools/go/analysis"
)

// Flag names, exported so callers lifting these flags to a top-level CLI (see cmd/dataflow) can
// refer to them without repeating the literal strings.
const (
	MaxCountBeforeWideningFlag = "widening-threshold"
	PrettyPrintFlag            = "pretty-print"
	PrintFullFilePathFlag      = "print-full-file-path"
)

// Config holds every user-tunable knob the engine and its clients read.
type Config struct {
	// MaxCountBeforeWidening is the number of times a block may be merged into with
	// LeastUpperBound before the solver widens, forwarded to dataflow.NewForwardAnalyzer /
	// dataflow.NewBackwardAnalyzer. A negative value (dataflow.NeverWiden) disables widening.
	MaxCountBeforeWidening int
	// PrettyPrint requests human-friendly (rather than machine-parseable) diagnostic formatting
	// from clients built on the engine, e.g. deadassign.
	PrettyPrint bool
	// PrintFullFilePath requests full file paths (relative to the working directory), rather than
	// truncated ones, in diagnostics.
	PrintFullFilePath bool
}

// Analyzer exposes Config as a go/analysis result: any analyzer that lists config.Analyzer in its
// Requires can read pass.ResultOf[config.Analyzer].(*Config).
var Analyzer = &analysis.Analyzer{
	Name:       "dataflow_config",
	Doc:        "collects the dataflow engine's configuration flags for downstream analyzers",
	Run:        run,
	ResultType: reflect.TypeOf((*Config)(nil)),
	Flags:      flags(),
}

func flags() flag.FlagSet {
	fs := flag.NewFlagSet("dataflow_config", flag.ExitOnError)
	fs.Int(MaxCountBeforeWideningFlag, DefaultMaxCountBeforeWidening, "number of LeastUpperBound merges into a block before the solver widens")
	fs.Bool(PrettyPrintFlag, true, "format diagnostics for humans rather than machine parsing")
	fs.Bool(PrintFullFilePathFlag, false, "print full file paths (relative to the working directory) in diagnostics")
	return *fs
}

func run(pass *analysis.Pass) (any, error) {
	conf := &Config{}
	pass.Analyzer.Flags.Visit(func(*flag.Flag) {}) // no-op: the driver has already parsed the flags before run
	conf.MaxCountBeforeWidening = lookupInt(pass, MaxCountBeforeWideningFlag, DefaultMaxCountBeforeWidening)
	conf.PrettyPrint = lookupBool(pass, PrettyPrintFlag, true)
	conf.PrintFullFilePath = lookupBool(pass, PrintFullFilePathFlag, false)
	return conf, nil
}

func lookupInt(pass *analysis.Pass, name string, fallback int) int {
	f := pass.Analyzer.Flags.Lookup(name)
	if f == nil {
		return fallback
	}
	if g, ok := f.Value.(flag.Getter); ok {
		if v, ok := g.Get().(int); ok {
			return v
		}
	}
	return fallback
}

func lookupBool(pass *analysis.Pass, name string, fallback bool) bool {
	f := pass.Analyzer.Flags.Lookup(name)
	if f == nil {
		return fallback
	}
	if g, ok := f.Value.(flag.Getter); ok {
		if v, ok := g.Get().(bool); ok {
			return v
		}
	}
	return fallback
}
