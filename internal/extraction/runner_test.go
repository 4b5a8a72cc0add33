package extraction

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/csfacts/internal/config"
	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/logging"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/security"
)

func runProject(t *testing.T, files map[string]string, tweak func(*config.Config)) (*model.Repository, Stats, error, string) {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, files)

	cfg := config.Default(root)
	cfg.Performance.Workers = 2
	if tweak != nil {
		tweak(cfg)
	}
	paths, err := NewDiscoverer(cfg).Discover(context.Background())
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := logging.New(&logs, logging.FormatText, logging.LevelFromString("debug"))
	repo, stats, err := NewRunner(cfg, logger).Run(context.Background(), paths)
	return repo, stats, err, logs.String()
}

func unit(t *testing.T, repo *model.Repository, suffix string) *model.CompilationUnit {
	t.Helper()
	for _, cu := range repo.CompilationUnits {
		if strings.HasSuffix(filepath.ToSlash(cu.FilePath), suffix) {
			return cu
		}
	}
	t.Fatalf("no compilation unit for %s", suffix)
	return nil
}

func TestRunResolvesAcrossFiles(t *testing.T) {
	repo, stats, err, _ := runProject(t, map[string]string{
		"Cart.cs": `namespace Shop
{
    public class Cart
    {
        public void Add(int id) { }
    }
}`,
		"Checkout.cs": `namespace Shop
{
    public class Checkout : Cart
    {
        public void Run() { Add(1); }
    }
}`,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 2, stats.Extracted)
	require.Equal(t, 2, repo.Len())

	checkout, ok := unit(t, repo, "Checkout.cs").Class("Shop.Checkout").(*model.Class)
	require.True(t, ok)
	require.Len(t, checkout.BaseTypes, 1)
	assert.Equal(t, "Shop.Cart", checkout.BaseTypes[0].Type.Name)
	assert.False(t, checkout.BaseTypes[0].Type.IsExtern)
	assert.Equal(t, model.KindClass, checkout.BaseTypes[0].Kind)

	var run *model.Method
	for _, m := range checkout.Methods {
		if m.Name == "Run" {
			run = m
		}
	}
	require.NotNil(t, run)
	require.Len(t, run.CalledMethods, 1)
	assert.Equal(t, "Shop.Cart", run.CalledMethods[0].DefinitionClassName)
	assert.False(t, run.CalledMethods[0].IsExtern)
}

func TestRunMixedLanguages(t *testing.T) {
	repo, stats, err, _ := runProject(t, map[string]string{
		"Order.cs": "class Order { }",
		"Report.vb": `Public Class Report
    Public Sub Print()
    End Sub
End Class
`,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Extracted)
	assert.Equal(t, model.LanguageCSharp, unit(t, repo, "Order.cs").Language)
	vb := unit(t, repo, "Report.vb")
	assert.Equal(t, "Report.vb", vb.FilePath)
	assert.Equal(t, model.LanguageVisualBasic, vb.Language)
	assert.NotZero(t, vb.Hash)
	assert.NotNil(t, vb.Class("Report"))
}

func TestRunDedupesIdenticalContent(t *testing.T) {
	src := "namespace N { class Same { } }"
	repo, stats, err, logs := runProject(t, map[string]string{
		"a/Same.cs": src,
		"b/Same.cs": src,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Extracted)
	require.Equal(t, 1, repo.Len())
	unit(t, repo, "a/Same.cs")
	assert.Contains(t, logs, "skipping duplicate file")
}

func TestRunWithoutDedupeReportsDuplicateClasses(t *testing.T) {
	src := "namespace N { class Same { } }"
	repo, stats, err, logs := runProject(t, map[string]string{
		"a/Same.cs": src,
		"b/Same.cs": src,
	}, func(cfg *config.Config) { cfg.Extraction.Dedupe = false })
	require.NoError(t, err)
	assert.Zero(t, stats.Duplicates)
	assert.Equal(t, 2, repo.Len())
	assert.Contains(t, logs, "class declared in more than one file")
}

func TestRunKeepsGoodFilesWhenOneFails(t *testing.T) {
	repo, stats, err, _ := runProject(t, map[string]string{
		"Good.cs":  "class Good { }",
		"Empty.cs": "   \n",
		"Good.vb":  "Class GoodVb\nEnd Class\n",
	}, nil)
	require.Error(t, err)

	var merr *csferrors.MultiError
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 1)
	assert.True(t, csferrors.IsParseError(merr.Errors[0]))
	assert.ErrorIs(t, err, csferrors.ErrEmptySource)

	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Extracted)
	assert.Equal(t, 2, repo.Len())
}

func TestRunSkipsOversizedFiles(t *testing.T) {
	repo, stats, err, _ := runProject(t, map[string]string{
		"Small.cs": "class S { }",
		"Large.cs": "class L { " + strings.Repeat("int f; ", 50) + "}",
	}, func(cfg *config.Config) { cfg.Extraction.MaxFileSize = 100 })
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TooLarge)
	assert.Equal(t, 1, repo.Len())
	unit(t, repo, "Small.cs")
}

func TestRunMissingFile(t *testing.T) {
	cfg := config.Default(t.TempDir())
	repo, stats, err := NewRunner(cfg, nil).Run(context.Background(),
		[]string{filepath.Join(cfg.Project.Root, "Gone.cs")})
	require.Error(t, err)
	var ferr *csferrors.FileError
	assert.True(t, errors.As(err, &ferr))
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, repo.Len())
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"A.cs": "class A { }"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo, _, err := NewRunner(config.Default(root), nil).Run(ctx, []string{filepath.Join(root, "A.cs")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, repo)
}

func TestRunRecordsAbsolutePathsWhenConfigured(t *testing.T) {
	repo, _, err, _ := runProject(t, map[string]string{
		"sub/A.cs": "class A { }",
	}, func(cfg *config.Config) { cfg.Output.RelativePaths = false })
	require.NoError(t, err)
	cu := unit(t, repo, "sub/A.cs")
	assert.True(t, filepath.IsAbs(cu.FilePath))
	assert.Equal(t, cu.FilePath, cu.Class("A").Head().FilePath)
}

func TestRunDecodesAndRejectsContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"Bom.cs":  "\xEF\xBB\xBFclass Bom { }",
		"Fake.cs": "MZ\x90\x00\x03\x00\x00\x00",
	})
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range "class Wide { }" {
		utf16 = append(utf16, byte(r), 0)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "Wide.cs"), utf16, 0o644))

	cfg := config.Default(root)
	paths, err := NewDiscoverer(cfg).Discover(context.Background())
	require.NoError(t, err)
	repo, stats, err := NewRunner(cfg, nil).Run(context.Background(), paths)
	require.Error(t, err)
	assert.ErrorIs(t, err, security.ErrBinary)
	assert.Equal(t, 1, stats.Failed)
	assert.NotNil(t, unit(t, repo, "Bom.cs").Class("Bom"))
	assert.NotNil(t, unit(t, repo, "Wide.cs").Class("Wide"))
}
