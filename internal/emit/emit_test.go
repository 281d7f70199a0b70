package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoreform-io/scoreform/internal/compiler"
	"github.com/scoreform-io/scoreform/internal/spec"
)

func testProject(t *testing.T) *compiler.Project {
	t.Helper()
	s, err := spec.Parse([]byte(`
workloads:
  web:
    type: container
    image: web:1
  db:
    type: database
    engine: postgres
    version: "15"
`), "score.yaml")
	require.NoError(t, err)
	p, err := compiler.Compile(s)
	require.NoError(t, err)
	return p
}

func TestWriteLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "terraform")
	written, err := Write(dir, testProject(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"provider.tf",
		"variables.tf",
		"main.tf",
		filepath.Join("modules", "container", "variables.tf"),
		filepath.Join("modules", "container", "main.tf"),
		filepath.Join("modules", "container", "outputs.tf"),
		filepath.Join("modules", "database", "variables.tf"),
		filepath.Join("modules", "database", "main.tf"),
		filepath.Join("modules", "database", "outputs.tf"),
	}, written)

	for _, rel := range written {
		body, err := os.ReadFile(filepath.Join(dir, rel))
		require.NoError(t, err, rel)
		assert.NotEmpty(t, body, rel)
	}
}

// Re-running must fully replace earlier output, including hand edits.
func TestWriteOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "terraform")
	p := testProject(t)

	_, err := Write(dir, p)
	require.NoError(t, err)

	mainPath := filepath.Join(dir, "main.tf")
	require.NoError(t, os.WriteFile(mainPath, []byte("# hand edit\n"), 0644))

	_, err = Write(dir, p)
	require.NoError(t, err)

	body, err := os.ReadFile(mainPath)
	require.NoError(t, err)
	assert.Equal(t, p.Main, body)
}

func TestWriteCreatesNestedDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", "nested", "terraform")
	_, err := Write(dir, testProject(t))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "modules", "container"))
	assert.NoError(t, err)
}
