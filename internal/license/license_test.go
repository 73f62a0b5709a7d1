package license_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"schema-export/internal/license"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestASL2_Process(t *testing.T) {
	out := license.ASL2{}.Process("Foo.java", "package foo;\n")

	assert.True(t, strings.HasPrefix(out, "/*\n * Licensed to the Apache Software Foundation (ASF)"))
	assert.True(t, strings.HasSuffix(out, " */\n\npackage foo;\n"))
	assert.Equal(t, license.ASL2Header+"package foo;\n", out)
}

func TestASL2_ProcessEmpty(t *testing.T) {
	assert.Equal(t, license.ASL2Header, license.ASL2{}.Process("", ""))
}

func TestProcessFiles(t *testing.T) {
	root := t.TempDir()
	gen := filepath.Join(root, "gen", "model.go")
	other := filepath.Join(root, "gen", "notes.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(gen), 0o755))
	require.NoError(t, os.WriteFile(gen, []byte("package gen\n"), 0o600))
	require.NoError(t, os.WriteFile(other, []byte("notes\n"), 0o644))

	n, err := license.ProcessFiles(root, nil, license.ASL2{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(gen)
	require.NoError(t, err)
	assert.Equal(t, license.ASL2Header+"package gen\n", string(data))

	info, err := os.Stat(gen)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	untouched, err := os.ReadFile(other)
	require.NoError(t, err)
	assert.Equal(t, "notes\n", string(untouched))
}

func TestProcessFiles_DryRun(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}\n"), 0o644))

	n, err := license.ProcessFiles(root, []string{"*.java"}, license.ASL2{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "class A {}\n", string(data))
}

func TestProcessFiles_BadPattern(t *testing.T) {
	_, err := license.ProcessFiles(t.TempDir(), []string{"["}, license.ASL2{}, false, nil)
	require.Error(t, err)
}

func TestProcessFiles_SecondRunKeepsOneBanner(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0o644))

	n, err := license.ProcessFiles(root, nil, license.ASL2{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = license.ProcessFiles(root, nil, license.ASL2{}, false, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = license.ProcessFiles(root, nil, license.ASL2{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "dry run counts only files that would change")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "Licensed to the Apache Software Foundation"))
	assert.Equal(t, license.ASL2Header+"package a\n", string(data))
}
