package cleaning

import (
	"github.com/orangecx/cxpipe/internal/table"
)

// Languages carried by the shop dimension.
const (
	LangDutch     = "NL"
	LangFrench    = "FR"
	LangBilingual = "BI"
)

// zipBand maps an inclusive Belgian postal code range to a language.
type zipBand struct {
	lo, hi int
	lang   string
}

// Belgian postal geography: Brussels is bilingual, Flanders Dutch, Wallonia
// French. Codes below 1000 and above 9999 are unassigned and stay unmapped.
var zipBands = []zipBand{
	{1000, 1299, LangBilingual}, // Brussels
	{1300, 1499, LangFrench},    // Walloon Brabant
	{1500, 1999, LangDutch},     // Flemish Brabant
	{2000, 3999, LangDutch},     // Antwerp, Limburg
	{4000, 7999, LangFrench},    // Wallonia
	{8000, 9999, LangDutch},     // West/East Flanders
}

// InferLanguageFromZip maps a postal code cell to a language tag. Missing,
// non-numeric, and out-of-range codes report ok=false, never an error. This
// is a fallback only: callers must not let it override an authoritative
// language value.
func InferLanguageFromZip(zip table.Value) (string, bool) {
	z, ok := zip.Int()
	if !ok {
		return "", false
	}
	for _, band := range zipBands {
		if int(z) >= band.lo && int(z) <= band.hi {
			return band.lang, true
		}
	}
	return "", false
}
