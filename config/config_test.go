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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowgraph/dataflow/config"
)

func TestLoadYAMLOverrides_MissingFileIsNotAnError(t *testing.T) {
	t.Parallel()

	overrides, err := config.LoadYAMLOverrides(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	require.Nil(t, overrides.MaxCountBeforeWidening)
}

func TestLoadYAMLOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataflow.yaml")
	writeFile(t, path, "widening_threshold: 7\npretty_print: false\n")

	overrides, err := config.LoadYAMLOverrides(path)
	require.NoError(t, err)
	require.NotNil(t, overrides.MaxCountBeforeWidening)
	require.Equal(t, 7, *overrides.MaxCountBeforeWidening)
	require.NotNil(t, overrides.PrettyPrint)
	require.False(t, *overrides.PrettyPrint)
}

func TestLoadYAMLOverrides_Malformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataflow.yaml")
	writeFile(t, path, "widening_threshold: [this, is, a, list, not, an, int]\n")

	_, err := config.LoadYAMLOverrides(path)
	require.Error(t, err)
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
