package modelbuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	a := m.Called(ctx, dir, name, args)
	if a.Get(0) == nil {
		return nil, a.Error(1)
	}
	return a.Get(0).([]byte), a.Error(1)
}

func writeModelfile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Modelfile")
	require.NoError(t, os.WriteFile(path, []byte("FROM phi\nSYSTEM You review headlines.\n"), 0o644))
	return path
}

func TestBuildRunsCreate(t *testing.T) {
	path := writeModelfile(t)
	r := new(mockRunner)
	r.On("Run", mock.Anything, filepath.Dir(path), "ollama", []string{"create", "rog-research", "-f", "Modelfile"}).
		Return([]byte("success\n"), nil).Once()

	out, err := (&Builder{Model: "rog-research", Modelfile: path, Runner: r}).Build(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "success\n", out)
	r.AssertExpectations(t)
}

func TestBuildMissingModelfile(t *testing.T) {
	r := new(mockRunner)
	b := &Builder{Bin: "ollama", Model: "rog-research", Modelfile: filepath.Join(t.TempDir(), "Modelfile"), Runner: r}

	_, err := b.Build(context.Background())

	assert.ErrorIs(t, err, ErrModelfileNotFound)
	r.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildModelfileIsDirectory(t *testing.T) {
	_, err := (&Builder{Model: "m", Modelfile: t.TempDir(), Runner: new(mockRunner)}).Build(context.Background())
	assert.ErrorIs(t, err, ErrModelfileNotFound)
}

func TestBuildCommandFailure(t *testing.T) {
	path := writeModelfile(t)
	r := new(mockRunner)
	r.On("Run", mock.Anything, mock.Anything, "/opt/bin/ollama", mock.Anything).
		Return([]byte("Error: invalid model name\n"), errors.New("exit status 1")).Once()

	out, err := (&Builder{Bin: "/opt/bin/ollama", Model: "Bad Name", Modelfile: path, Runner: r}).Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model name")
	assert.Equal(t, "Error: invalid model name\n", out)
}

func TestBuildRequiresModelName(t *testing.T) {
	_, err := (&Builder{Modelfile: writeModelfile(t)}).Build(context.Background())
	assert.Error(t, err)
}

func TestExecRunner(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	out, err := ExecRunner{}.Run(context.Background(), dir, "/bin/sh", "-c", "pwd")
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(out[:len(out)-1]))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
