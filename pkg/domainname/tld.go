package domainname

// supportedTLDs is the fixed allow-list of top-level domains accepted for
// custom booking domains.
var supportedTLDs = map[string]struct{}{
	// generic
	"com": {}, "net": {}, "org": {}, "info": {}, "biz": {}, "io": {}, "co": {},
	"app": {}, "dev": {}, "ai": {}, "me": {}, "xyz": {}, "online": {}, "site": {},
	"store": {}, "shop": {}, "tech": {}, "studio": {}, "agency": {}, "pro": {},
	"life": {}, "live": {}, "world": {}, "today": {}, "email": {}, "link": {},
	// industry
	"salon": {}, "spa": {}, "beauty": {}, "hair": {}, "health": {}, "fitness": {},
	"yoga": {}, "clinic": {}, "dental": {}, "care": {}, "coach": {}, "academy": {},
	"events": {}, "services": {}, "consulting": {}, "photography": {}, "fit": {},
	// country codes
	"us": {}, "ca": {}, "uk": {}, "ie": {}, "de": {}, "fr": {}, "es": {}, "it": {},
	"nl": {}, "be": {}, "at": {}, "ch": {}, "se": {}, "no": {}, "dk": {}, "fi": {},
	"pl": {}, "pt": {}, "cz": {}, "eu": {}, "au": {}, "nz": {}, "in": {}, "jp": {},
	"sg": {}, "br": {}, "mx": {}, "za": {},
}

// IsSupportedTLD reports whether tld is on the allow-list.
func IsSupportedTLD(tld string) bool {
	_, ok := supportedTLDs[tld]
	return ok
}
