// Copyright 2026 The Genesis Authors
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

package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithColor(false))

	logger.Info("server listening", "addr", ":9000")

	line := strings.TrimSuffix(buf.String(), "\n")
	// 2026-08-24 10:32:01 INFO  server listening {"addr":":9000"}
	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} INFO  server listening \{"addr":":9000"\}$`)
	assert.Regexp(t, re, line)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := MustNew(WithOutput(&buf), WithColor(false), WithLevel(LevelWarn))

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept too")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "WARN  kept")
	assert.Contains(t, out, "ERROR kept too")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestHistoryRing(t *testing.T) {
	logger := MustNew(WithOutput(&bytes.Buffer{}), WithHistorySize(3))

	for i := 0; i < 5; i++ {
		logger.Info(fmt.Sprintf("msg-%d", i))
	}

	entries := logger.History().Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "msg-2", entries[0].Message)
	assert.Equal(t, "msg-4", entries[2].Message)
}

func TestJSONFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger := MustNew(WithOutput(&bytes.Buffer{}), WithJSONFile(path))

	logger.Info("persisted", "n", 1)
	logger.Warn("also persisted")
	require.NoError(t, logger.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &obj))
		lines = append(lines, obj)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "persisted", lines[0]["msg"])
	assert.Equal(t, float64(1), lines[0]["n"])
	assert.Equal(t, "WARN", lines[1]["level"])
}

func TestSinkSubscription(t *testing.T) {
	var got []Entry
	logger := MustNew(WithOutput(&bytes.Buffer{}), WithSink(func(e Entry) {
		got = append(got, e)
	}))

	logger.Info("fan out", "k", "v")

	require.Len(t, got, 1)
	assert.Equal(t, "fan out", got[0].Message)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.Equal(t, "v", got[0].Attrs["k"])
}

func TestDiscardLoggerIsSilent(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
	assert.Zero(t, logger.History().Len())
}
