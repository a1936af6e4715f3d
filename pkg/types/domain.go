package types

// Customer type values accepted in CustomerInput.
const (
	CustomerTypeNew       = "new"
	CustomerTypeReturning = "returning"
)

// attributionValues is the fixed acquisition-source vocabulary the models
// were trained on. Order here is not significant; encoding sorts it.
var attributionValues = []string{
	"Direct",
	"Unknown",
	"Organic: Google",
	"Source: Google",
	"Web admin",
	"Source: Category",
	"Source: Metorik",
	"Referral: Dashboard.tawk.to",
	"Referral: Dash.callbell.eu",
	"Source: Chatgpt.com",
	"Source: Home",
	"Referral: Diyagric.com",
	"Source: CategoryPage",
	"Referral: Yandex.com",
	"Referral: Com.slack",
	"Referral: Duckduckgo.com",
	"Referral: Com.google.android.googlequicksearchbox",
	"Referral: Com.google.android.gm",
	"Referral: Bing.com",
	"Referral: L.instagram.com",
	"Referral: L.wl.co",
	"Source: Equipment+Category",
}

// AttributionValues returns a copy of the known acquisition sources.
func AttributionValues() []string {
	return append([]string(nil), attributionValues...)
}

// CustomerTypes returns the accepted customer type values.
func CustomerTypes() []string {
	return []string{CustomerTypeNew, CustomerTypeReturning}
}
