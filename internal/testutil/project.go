package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// DefaultTSConfig maps @app and @db onto src/ and compiles into dist/.
const DefaultTSConfig = `{
  // test project
  "compilerOptions": {
    "baseUrl": "./src",
    "outDir": "./dist",
    "paths": {
      "@app/*": ["app/*"],
      "@db/*": ["database/*", "ignored/*"] /* only the first target counts */
    }
  }
}`

// WriteFiles writes files (slash separated paths relative to root) and
// creates the directories they need.
func WriteFiles(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

// ReadFile returns the content of a file relative to root.
func ReadFile(t testing.TB, root, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name))) //nolint:gosec // G304: test fixture path
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// SetupProject creates a temporary project with DefaultTSConfig, a
// package.json and a small compiled output tree.
func SetupProject(t testing.TB) string {
	t.Helper()
	root := t.TempDir()

	WriteFiles(t, root, map[string]string{
		"tsconfig.json": DefaultTSConfig,
		"package.json":  `{"name": "fixture-app", "version": "1.0.0"}`,
		"dist/index.js": `"use strict";
const services = require("@app/services/a");
const express = require("express");
module.exports = services;
`,
		"dist/app/services/a.js": `"use strict";
// widgets live next door
const b = require("@app/widgets/b");
const db = require('@db/pool');
exports.run = () => b(db);
`,
		"dist/app/widgets/b.js":  "module.exports = (x) => x;\n",
		"dist/database/pool.js":  "module.exports = {};\n",
		"dist/app/services/a.ts": "not javascript, never scanned",
	})
	return root
}
