package enhance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jatenx/invoice-pipeline/internal/common"
)

type fakeRunner struct {
	run func(ctx context.Context, name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	return f.run(ctx, name, args)
}

func okProbe(run func(ctx context.Context, name string, args []string) ([]byte, []byte, error)) *fakeRunner {
	return &fakeRunner{run: func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
		if len(args) == 1 && args[0] == "--version" {
			return []byte("16.1.1"), nil, nil
		}
		return run(ctx, name, args)
	}}
}

func TestNewProbesToolchain(t *testing.T) {
	r := &fakeRunner{run: func(_ context.Context, name string, args []string) ([]byte, []byte, error) {
		return nil, nil, fmt.Errorf("executable file not found in $PATH")
	}}
	_, err := newWithRunner(Config{}, r, nil)
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeSetup))
}

func TestEnhanceFileSuccess(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "4435.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))

	r := okProbe(func(_ context.Context, name string, args []string) ([]byte, []byte, error) {
		// ocrmypdf --language spa --force-ocr --output-type pdf <in> <out>
		require.Equal(t, "ocrmypdf", name)
		require.Equal(t, []string{"--language", "spa", "--force-ocr", "--output-type", "pdf"}, args[:5])
		out := args[len(args)-1]
		return nil, nil, os.WriteFile(out, []byte("%PDF-1.4 enhanced"), 0o644)
	})

	e, err := newWithRunner(Config{OutputDir: filepath.Join(base, "enhanced")}, r, nil)
	require.NoError(t, err)

	res, err := e.EnhanceFile(context.Background(), src, "2021")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "enhanced", "2021", "4435.pdf"), res.OutputPath)
	assert.Greater(t, res.SizeKB, 0.0)
}

func TestEnhanceFileMissingSource(t *testing.T) {
	r := okProbe(func(_ context.Context, name string, args []string) ([]byte, []byte, error) {
		t.Fatal("ocrmypdf must not run for a missing source")
		return nil, nil, nil
	})
	e, err := newWithRunner(Config{OutputDir: t.TempDir()}, r, nil)
	require.NoError(t, err)

	_, err = e.EnhanceFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "")
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeNotFound))
}

func TestEnhanceFileToolFailure(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "bad.pdf")
	require.NoError(t, os.WriteFile(src, []byte("junk"), 0o644))

	r := okProbe(func(_ context.Context, name string, args []string) ([]byte, []byte, error) {
		return nil, []byte("InputFileError: not a PDF"), fmt.Errorf("exit status 2")
	})
	e, err := newWithRunner(Config{OutputDir: filepath.Join(base, "out")}, r, nil)
	require.NoError(t, err)

	_, err = e.EnhanceFile(context.Background(), src, "")
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeDocProcess))
	assert.Contains(t, err.Error(), "InputFileError")
}

func TestEnhanceFileTimeout(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "slow.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o644))

	r := okProbe(func(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	})
	e, err := newWithRunner(Config{
		OutputDir: filepath.Join(base, "out"),
		Timeout:   20 * time.Millisecond,
	}, r, nil)
	require.NoError(t, err)

	_, err = e.EnhanceFile(context.Background(), src, "")
	require.Error(t, err)
	assert.True(t, common.HasCode(err, common.CodeDocProcess))
	assert.Contains(t, err.Error(), "timeout")
}

func TestConfigDefaults(t *testing.T) {
	r := okProbe(nil)
	e, err := newWithRunner(Config{}, r, nil)
	require.NoError(t, err)
	assert.Equal(t, "ocrmypdf", e.cfg.Binary)
	assert.Equal(t, "spa", e.cfg.Language)
	assert.Equal(t, 300*time.Second, e.cfg.Timeout)
	assert.Equal(t, "ocr_processed", e.OutputDir())
}
