package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDocument(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     string
		wantKind DocumentKind
		wantOK   bool
	}{
		{name: "cpf digits", raw: "63657520325", want: "63657520325", wantKind: DocumentKindCPF, wantOK: true},
		{name: "cpf formatted", raw: "636.575.203-25", want: "63657520325", wantKind: DocumentKindCPF, wantOK: true},
		{name: "cnpj digits", raw: "11222333000181", want: "11222333000181", wantKind: DocumentKindCNPJ, wantOK: true},
		{name: "cnpj formatted", raw: "11.222.333/0001-81", want: "11222333000181", wantKind: DocumentKindCNPJ, wantOK: true},
		{name: "cpf surrounding spaces", raw: " 636.575.203-25 ", want: "63657520325", wantKind: DocumentKindCPF, wantOK: true},
		{name: "cpf scattered punctuation", raw: "6.3-6/57 520325"},
		{name: "cpf partial mask", raw: "636575203-25"},
		{name: "cpf inner spaces", raw: "636 575 203 25"},
		{name: "cnpj cpf style mask", raw: "11.222.333.0001-81"},
		{name: "cnpj missing slash", raw: "11.222.3330001-81"},
		{name: "cpf wrong check digit", raw: "63657520326"},
		{name: "cnpj wrong check digit", raw: "11222333000182"},
		{name: "repeated digits", raw: "11111111111"},
		{name: "letters", raw: "6365752032a"},
		{name: "wrong length", raw: "123456"},
		{name: "blank", raw: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, kind, ok := NormalizeDocument(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantKind, kind)
		})
	}
}

func TestParseDocumentKind(t *testing.T) {
	kind, ok := ParseDocumentKind(" CNPJ ")
	assert.True(t, ok)
	assert.Equal(t, DocumentKindCNPJ, kind)

	_, ok = ParseDocumentKind("passport")
	assert.False(t, ok)
}
