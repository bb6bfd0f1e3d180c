package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureResources(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "mapping/MAIN.TXT",
		"CODEPAGE 437\n0x82 0x00E9\n\nCODEPAGE 20437 DUPLICATES 437\n")
	writeFixture(t, dir, "mapping/ASCII.TXT", "0x00E9 e\n")
	writeFixture(t, dir, "mapping/DECOMPOSITION.TXT", "0x00E9 0x0065 0x0301\n")
	return dir
}

func runCommand(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	root := rootCommand()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(in))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	dir := fixtureResources(t)

	out, err := runCommand(t, "café", "encode", "--resources", dir, "--codepage", "437")
	require.NoError(t, err)
	assert.Equal(t, "caf\x82", out)
}

func TestEncodeCommandReportsReplacements(t *testing.T) {
	dir := fixtureResources(t)

	out, err := runCommand(t, "Ж", "encode", "--resources", dir, "--codepage", "437")
	assert.ErrorIs(t, err, errReplaced)
	assert.Contains(t, out, "?")
}

func TestDecodeCommand(t *testing.T) {
	dir := fixtureResources(t)

	out, err := runCommand(t, "caf\x82", "decode", "--resources", dir, "--codepage", "437")
	require.NoError(t, err)
	assert.Equal(t, "café", out)
}

func TestDecodeCommandFromFile(t *testing.T) {
	dir := fixtureResources(t)
	input := filepath.Join(t.TempDir(), "input.dos")
	require.NoError(t, os.WriteFile(input, []byte{0x82}, 0o644))

	out, err := runCommand(t, "", "decode", "--resources", dir, "--codepage", "437", input)
	require.NoError(t, err)
	assert.Equal(t, "é", out)
}

func TestListCommand(t *testing.T) {
	dir := fixtureResources(t)

	out, err := runCommand(t, "", "list", "--resources", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "437")
	assert.Contains(t, out, "20437 duplicates 437")
}
