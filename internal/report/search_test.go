package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/csfacts/internal/model"
)

func searchRepo() *model.Repository {
	repo := model.NewRepository()
	var classes []model.ClassType
	for _, name := range []string{"Billing.InvoiceService", "Billing.Invoice", "Billing.PaymentProcessor", "Io.HTTPClient2"} {
		classes = append(classes, &model.Class{TypeHeader: model.TypeHeader{
			Declaration: model.Declaration{Name: name},
			ClassType:   model.KindClass,
		}})
	}
	repo.Add(&model.CompilationUnit{FilePath: "a.cs", ClassTypes: classes})
	return repo
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"InvoiceService", []string{"invoice", "service"}},
		{"parseHTTPRequest2", []string{"parse", "http", "request", "2"}},
		{"HTTPClient", []string{"http", "client"}},
		{"payment processors", []string{"payment", "processors"}},
		{"snake_case-name", []string{"snake", "case", "name"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitWords(tt.in))
		})
	}
}

func TestStemWords(t *testing.T) {
	assert.Equal(t, []string{"invoic", "process", "io"}, StemWords([]string{"invoices", "processing", "io"}))
}

func TestSearchClasses(t *testing.T) {
	repo := searchRepo()

	names := func(entries []ClassEntry) []string {
		var out []string
		for _, e := range entries {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Billing.Invoice", "Billing.InvoiceService"}, names(SearchClasses(repo, "invoices")))
	assert.Equal(t, []string{"Billing.InvoiceService"}, names(SearchClasses(repo, "invoice services")))
	assert.Equal(t, []string{"Billing.PaymentProcessor"}, names(SearchClasses(repo, "payments")))
	assert.Equal(t, []string{"Io.HTTPClient2"}, names(SearchClasses(repo, "http client")))
	assert.Empty(t, SearchClasses(repo, "  "))
	assert.Empty(t, SearchClasses(repo, "ledger"))
}

func TestSuggestClasses(t *testing.T) {
	repo := searchRepo()
	got := SuggestClasses(repo, "Billing.InvoiceServce", 3)
	assert.NotEmpty(t, got)
	assert.Equal(t, "Billing.InvoiceService", got[0])

	assert.Len(t, SuggestClasses(repo, "Other.Invoice", 1), 1)
	assert.Empty(t, SuggestClasses(repo, "Zzz", 3))
}
