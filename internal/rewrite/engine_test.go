package rewrite

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tspath/tspath/internal/project"
	"github.com/tspath/tspath/internal/testutil"
)

func newEngine(t *testing.T, root string, compact bool) *Engine {
	t.Helper()
	cfg, err := project.Load(root, "")
	require.NoError(t, err)

	eng, err := New(Config{
		Project: cfg,
		Filter:  []string{".js"},
		Compact: compact,
		Logger:  testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return eng
}

func TestRunExpanded(t *testing.T) {
	root := testutil.SetupProject(t)
	eng := newEngine(t, root, false)

	stats, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.FilesProcessed)
	assert.Equal(t, 3, stats.PathsProcessed)
	assert.Len(t, stats.Files, 4)

	assert.Equal(t, `"use strict";
const services = require("./app/services/a");
const express = require("express");
module.exports = services;
`, testutil.ReadFile(t, root, "dist/index.js"))

	assert.Equal(t, `"use strict";
// widgets live next door
const b = require("../widgets/b");
const db = require("../../database/pool");
exports.run = () => b(db);
`, testutil.ReadFile(t, root, "dist/app/services/a.js"))

	assert.Equal(t, "not javascript, never scanned", testutil.ReadFile(t, root, "dist/app/services/a.ts"))
}

func TestPathsProcessedCountsOnlyRewrites(t *testing.T) {
	root := testutil.SetupProject(t)
	testutil.WriteFiles(t, root, map[string]string{
		"dist/x.js": "const l = require(\"./local/thing\");\n",
	})
	eng := newEngine(t, root, false)

	stats, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, stats.FilesProcessed)
	assert.Equal(t, 3, stats.PathsProcessed)
	assert.Equal(t, "const l = require(\"./local/thing\");\n", testutil.ReadFile(t, root, "dist/x.js"))
}

func TestRunCompact(t *testing.T) {
	root := testutil.SetupProject(t)
	eng := newEngine(t, root, true)

	_, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `"use strict";// widgets live next door
const b=require("../widgets/b");const db=require("../../database/pool");exports.run=()=>b(db);
`, testutil.ReadFile(t, root, "dist/app/services/a.js"))
}

func TestRunIsIdempotent(t *testing.T) {
	root := testutil.SetupProject(t)

	_, err := newEngine(t, root, false).Run(context.Background())
	require.NoError(t, err)
	first := testutil.ReadFile(t, root, "dist/app/services/a.js")

	stats, err := newEngine(t, root, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PathsProcessed)
	assert.Equal(t, first, testutil.ReadFile(t, root, "dist/app/services/a.js"))
}

func TestEnginesDoNotShareCounters(t *testing.T) {
	root := testutil.SetupProject(t)
	a := newEngine(t, root, false)
	b := newEngine(t, root, false)

	_, err := a.ProcessFile(context.Background(), filepath.Join(root, "dist", "index.js"))
	require.NoError(t, err)

	assert.Equal(t, 1, a.Stats().FilesProcessed)
	assert.Equal(t, 0, b.Stats().FilesProcessed)
	assert.NotEmpty(t, a.Stats().RunID)
	assert.NotEqual(t, a.Stats().RunID, b.Stats().RunID)
}

func TestResetFilesKeepsCounters(t *testing.T) {
	root := testutil.SetupProject(t)
	eng := newEngine(t, root, false)

	_, err := eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, eng.Stats().Files, 4)

	eng.ResetFiles()
	assert.Empty(t, eng.Stats().Files)
	assert.Equal(t, 4, eng.Stats().FilesProcessed)
	assert.Equal(t, 3, eng.Stats().PathsProcessed)
}

func TestProcessFileLeavesNonPathlikeAlone(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{
		"tsconfig.json": `{"compilerOptions": {"baseUrl": ".", "outDir": "dist", "paths": {"lodash": ["vendor/lodash"]}}}`,
		"dist/a.js":     "const _ = require('lodash');\nconst p = require(`@x/y`);\n",
	})
	eng := newEngine(t, root, false)

	res, err := eng.ProcessFile(context.Background(), filepath.Join(root, "dist", "a.js"))
	require.NoError(t, err)
	assert.Empty(t, res.Rewrites)
	assert.Equal(t, "const _ = require('lodash');\nconst p = require(`@x/y`);\n", testutil.ReadFile(t, root, "dist/a.js"))
}

func TestParseErrorStopsRun(t *testing.T) {
	root := testutil.SetupProject(t)
	testutil.WriteFiles(t, root, map[string]string{
		"dist/broken.js": "const = require(;\n",
	})
	eng := newEngine(t, root, false)

	_, err := eng.Run(context.Background())
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.True(t, strings.HasSuffix(pe.Path, "broken.js"))
}

type failingWriteFS struct {
	OSFS
	writes int
}

func (f *failingWriteFS) WriteFile(string, []byte) error {
	f.writes++
	return fs.ErrPermission
}

func TestWriteErrorStopsRun(t *testing.T) {
	root := testutil.SetupProject(t)
	cfg, err := project.Load(root, "")
	require.NoError(t, err)

	fsys := &failingWriteFS{}
	eng, err := New(Config{Project: cfg, Filter: []string{".js"}, FS: fsys})
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Run(context.Background())
	require.Error(t, err)

	var we *WriteError
	require.True(t, errors.As(err, &we))
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Equal(t, 1, fsys.writes, "run stops at the first failed write")
}

func TestSkipUnchanged(t *testing.T) {
	root := testutil.SetupProject(t)
	cfg, err := project.Load(root, "")
	require.NoError(t, err)

	var results []FileResult
	eng, err := New(Config{
		Project:       cfg,
		Filter:        []string{".js"},
		SkipUnchanged: true,
		OnFile:        func(r FileResult) { results = append(results, r) },
	})
	require.NoError(t, err)
	defer eng.Close()

	_, err = eng.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 4)

	written := 0
	for _, r := range results {
		if r.Written {
			written++
		}
	}
	assert.Equal(t, 2, written, "only files with aliased requires are rewritten")
}

func TestNewRequiresProject(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
