package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerate_JSON(t *testing.T) {
	out, err := execute(t, "generate", "--seed", "3", "--json", "--top", "3")
	require.NoError(t, err)

	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, int64(3), r.Seed)
	assert.Equal(t, 15, r.Stats.TotalUsers)
	assert.Equal(t, 9, r.Stats.TotalPosts)
	require.Len(t, r.TopPosts, 3)
	for i := 1; i < len(r.TopPosts); i++ {
		assert.GreaterOrEqual(t, r.TopPosts[i-1].DiversityScore, r.TopPosts[i].DiversityScore)
	}
	for _, p := range r.TopPosts {
		assert.NotEmpty(t, p.Author)
	}
}

func TestGenerate_SameSeedSameOutput(t *testing.T) {
	first, err := execute(t, "generate", "--seed", "11", "--extra-users", "4", "--json")
	require.NoError(t, err)
	second, err := execute(t, "generate", "--seed", "11", "--extra-users", "4", "--json")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_Text(t *testing.T) {
	out, err := execute(t, "generate", "--top", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "15 users, 9 posts")
	assert.True(t, strings.HasPrefix(lines[1], " 1. ["))
}

func TestGenerate_CustomPopulation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pop.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clusters:
  right:
    - {name: R, profile: [0.9, 0.9, 0.9]}
  left:
    - {name: L, profile: [-0.9, -0.9, -0.9]}
  center:
    - {name: C, profile: [0, 0, 0]}
  cross:
    - {name: X, profile: [0.5, -0.5, 0]}
posts:
  - {bias: left, content: "one"}
  - {bias: right, content: "two"}
`), 0o600))

	out, err := execute(t, "generate", "--population", path, "--json")
	require.NoError(t, err)
	var r report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, 4, r.Stats.TotalUsers)
	assert.Equal(t, 2, r.Stats.TotalPosts)

	_, err = execute(t, "generate", "--population", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = execute(t, "generate", "--extra-users", "-1")
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("ARCHIVE_DRIVER", "sqlite")
	t.Setenv("ARCHIVE_DSN", filepath.Join(t.TempDir(), "archive.db"))

	out, err := execute(t, "archive", "--seed", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "archived run ")
	assert.Contains(t, out, "15 users, 9 posts")
}

func TestArchive_Disabled(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("ARCHIVE_DRIVER", "")

	_, err := execute(t, "archive")
	assert.ErrorContains(t, err, "ARCHIVE_DRIVER")
}
