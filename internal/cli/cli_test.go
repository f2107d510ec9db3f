package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creatorpulse/internal/domain/insight"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadStdin(t *testing.T) {
	input, err := ReadStdin(strings.NewReader(`{"platforms":{"youtube":[{"views":10}]}}`))
	require.NoError(t, err)
	require.Len(t, input.Platforms["youtube"], 1)
	assert.EqualValues(t, 10, input.Platforms["youtube"][0]["views"])

	input, err = ReadStdin(strings.NewReader("  \n"))
	require.NoError(t, err)
	assert.NotNil(t, input.Platforms)
	assert.Empty(t, input.Platforms)

	_, err = ReadStdin(strings.NewReader("{broken"))
	assert.Error(t, err)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	wrapped := writeFile(t, dir, "export.json", `{"platform":"tiktok","items":[{"views":1},{"views":2}]}`)
	tagged := writeFile(t, dir, "posts.json", `[{"views":3},{"views":4,"platform":"Instagram"}]`)
	named := writeFile(t, dir, "my_youtube_export.json", `[{"views":5}]`)
	anonymous := writeFile(t, dir, "data.json", `[{"views":6}]`)
	single := writeFile(t, dir, "one.json", `{"views":7}`)
	broken := writeFile(t, dir, "broken.json", `{nope`)
	missing := filepath.Join(dir, "missing.json")

	var errOut bytes.Buffer
	input := ReadFiles([]string{wrapped, tagged, named, anonymous, single, broken, missing}, &errOut)

	assert.Len(t, input.Platforms["tiktok"], 2)
	assert.Len(t, input.Platforms["instagram"], 2)
	assert.Len(t, input.Platforms["youtube"], 1)
	assert.Len(t, input.Platforms["unknown"], 2)

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "broken.json")
	assert.Contains(t, lines[1], "missing.json")
}

func TestRootCmd_Stdin(t *testing.T) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"platforms":{"YouTube":[
		{"views":100,"likes":10,"comments":1,"title":"a"},
		{"views":200,"likes":10,"comments":1,"title":"b"},
		{"views":300,"likes":10,"comments":1,"title":"c"}
	]}}`))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	var report insight.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	require.Len(t, report.PlatformFocus, 1)
	assert.Equal(t, "youtube", report.PlatformFocus[0].Platform)
	assert.Equal(t, "go", report.Meta.Engine)
}

func TestRootCmd_FilesPretty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tiktok.json", `[{"views":10}]`)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--files", path, "--pretty"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "\n  \"generatedAt\"")
}

func TestRootCmd_InvalidTimezone(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--timezone", "Mars/Olympus"})

	assert.Error(t, cmd.Execute())
}
