package cleaning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orangecx/cxpipe/internal/table"
)

func TestInferLanguageFromZip(t *testing.T) {
	tests := []struct {
		name  string
		zip   table.Value
		want  string
		found bool
	}{
		{name: "Brussels is bilingual", zip: table.String("1050"), want: LangBilingual, found: true},
		{name: "Walloon Brabant", zip: table.String("1350"), want: LangFrench, found: true},
		{name: "Flemish Brabant", zip: table.String("1500"), want: LangDutch, found: true},
		{name: "Antwerp", zip: table.String("2000"), want: LangDutch, found: true},
		{name: "Wallonia", zip: table.String("4500"), want: LangFrench, found: true},
		{name: "East Flanders", zip: table.String("9000"), want: LangDutch, found: true},
		{name: "band edges inclusive", zip: table.String("1299"), want: LangBilingual, found: true},
		{name: "below assigned range", zip: table.String("500"), found: false},
		{name: "above assigned range", zip: table.String("10250"), found: false},
		{name: "float-encoded zip", zip: table.String("2000.0"), want: LangDutch, found: true},
		{name: "non-numeric", zip: table.String("B-1000"), found: false},
		{name: "null", zip: table.Null(), found: false},
		{name: "blank", zip: table.String("  "), found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InferLanguageFromZip(tt.zip)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
