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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileOverrides is the shape of a dataflow.yaml configuration file. Any field left unset in the
// file keeps whatever default config.Analyzer's flags already have.
type FileOverrides struct {
	MaxCountBeforeWidening *int  `yaml:"widening_threshold"`
	PrettyPrint            *bool `yaml:"pretty_print"`
	PrintFullFilePath      *bool `yaml:"print_full_file_path"`
}

// LoadYAMLOverrides reads and parses a dataflow.yaml-shaped file at path. A missing file is not an
// error (it simply yields an empty FileOverrides, since an optional config file is the common
// case); a file that exists but fails to parse is.
func LoadYAMLOverrides(path string) (*FileOverrides, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &FileOverrides{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var out FileOverrides
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &out, nil
}

// ApplyTo sets o's non-nil fields as the defaults of fs's corresponding flags. It must be called
// before fs.Parse so that any flag the user passes explicitly on the command line still takes
// precedence over the file.
func (o *FileOverrides) ApplyTo(set flagSetter) error {
	apply := func(name, value string) error {
		if err := set.Set(name, value); err != nil {
			return fmt.Errorf("apply config file value for %s: %w", name, err)
		}
		return nil
	}
	if o.MaxCountBeforeWidening != nil {
		if err := apply(MaxCountBeforeWideningFlag, fmt.Sprint(*o.MaxCountBeforeWidening)); err != nil {
			return err
		}
	}
	if o.PrettyPrint != nil {
		if err := apply(PrettyPrintFlag, fmt.Sprint(*o.PrettyPrint)); err != nil {
			return err
		}
	}
	if o.PrintFullFilePath != nil {
		if err := apply(PrintFullFilePathFlag, fmt.Sprint(*o.PrintFullFilePath)); err != nil {
			return err
		}
	}
	return nil
}

// flagSetter is the subset of *flag.FlagSet that ApplyTo needs; satisfied by *flag.FlagSet itself.
type flagSetter interface {
	Set(name, value string) error
}
