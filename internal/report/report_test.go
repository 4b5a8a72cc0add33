package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csferrors "github.com/standardbeagle/csfacts/internal/errors"
	"github.com/standardbeagle/csfacts/internal/extraction"
	"github.com/standardbeagle/csfacts/internal/model"
	"github.com/standardbeagle/csfacts/internal/version"
)

func sampleRepo() *model.Repository {
	repo := model.NewRepository()
	order := &model.Class{TypeHeader: model.TypeHeader{
		Declaration:             model.Declaration{Name: "Shop.Order", AccessModifier: "public"},
		ClassType:               model.KindClass,
		ContainingNamespaceName: "Shop",
		LinesOfCode:             model.LinesOfCode{SourceLines: 12},
	}}
	status := &model.Enum{TypeHeader: model.TypeHeader{
		Declaration: model.Declaration{Name: "Shop.Status"},
		ClassType:   model.KindEnum,
	}}
	repo.Add(&model.CompilationUnit{FilePath: "src/b/Order.cs", Language: model.LanguageCSharp, ClassTypes: []model.ClassType{order, status}})
	repo.Add(&model.CompilationUnit{FilePath: "src/a/Tool.vb", Language: model.LanguageVisualBasic, ClassTypes: []model.ClassType{
		&model.Class{TypeHeader: model.TypeHeader{Declaration: model.Declaration{Name: "Tool"}, ClassType: model.KindModule}},
	}})
	return repo
}

func TestNewDocument(t *testing.T) {
	stats := extraction.Stats{Files: 4, Extracted: 2, Failed: 1, Duplicates: 1, Duration: 1500 * time.Millisecond}
	err := csferrors.NewMultiError([]error{errors.New("bad file")})
	doc := New("/src", sampleRepo(), stats, err)

	assert.Equal(t, "csfacts", doc.Tool)
	assert.Equal(t, version.Version, doc.Version)
	assert.NotEmpty(t, doc.BuildID)
	assert.Equal(t, int64(1500), doc.Summary.DurationMs)
	assert.Equal(t, 3, doc.Summary.Classes)
	assert.Equal(t, []string{"bad file"}, doc.Errors)
	require.Len(t, doc.CompilationUnits, 2)
	assert.Equal(t, "src/a/Tool.vb", doc.CompilationUnits[0].FilePath)
}

func TestNewDocumentWithoutRepository(t *testing.T) {
	doc := New("/src", nil, extraction.Stats{}, errors.New("boom"))
	assert.Equal(t, []string{"boom"}, doc.Errors)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, false))
	assert.Contains(t, buf.String(), `"compilation_units":[]`)
}

func TestWriteIndent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, map[string]int{"a": 1}, true))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestFindClass(t *testing.T) {
	repo := sampleRepo()

	ct, cu := FindClass(repo, "Shop.Order")
	require.NotNil(t, ct)
	assert.Equal(t, "src/b/Order.cs", cu.FilePath)

	ct, _ = FindClass(repo, "shop.status")
	require.NotNil(t, ct)
	assert.Equal(t, "Shop.Status", ct.Head().Name)

	ct, cu = FindClass(repo, "Missing")
	assert.Nil(t, ct)
	assert.Nil(t, cu)
}

func TestListClasses(t *testing.T) {
	entries := ListClasses(sampleRepo(), "Shop.")
	require.Len(t, entries, 2)
	assert.Equal(t, ClassEntry{Name: "Shop.Order", Kind: model.KindClass, Namespace: "Shop", File: "src/b/Order.cs", Lines: 12}, entries[0])
	assert.Equal(t, "Shop.Status", entries[1].Name)

	assert.Len(t, ListClasses(sampleRepo(), ""), 3)
}

func TestSchemaMatchesDocumentKeys(t *testing.T) {
	doc := New("/src", sampleRepo(), extraction.Stats{}, nil)
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	schema := Schema()
	for _, key := range schema.Required {
		assert.Contains(t, decoded, key)
	}
	for key := range decoded {
		assert.Contains(t, schema.Properties, key)
	}

	units := decoded["compilation_units"].([]any)
	unit := units[0].(map[string]any)
	for _, key := range schema.Properties["compilation_units"].Items.Required {
		assert.Contains(t, unit, key)
	}
}
