package lookup

// countryNames maps the short codes the upstream lookup returns onto
// display names. Codes outside this set render as "Unknown".
var countryNames = map[string]string{
	"BD": "Bangladesh",
	"BR": "Brazil",
	"ID": "Indonesia",
	"IN": "India",
	"KH": "Cambodia",
	"LA": "Laos",
	"MM": "Myanmar",
	"MY": "Malaysia",
	"NP": "Nepal",
	"PH": "Philippines",
	"PK": "Pakistan",
	"RU": "Russia",
	"SG": "Singapore",
	"TH": "Thailand",
	"TR": "Turkey",
	"US": "United States",
	"VN": "Vietnam",
}

func CountryName(shortCode string) string {
	if name, ok := countryNames[shortCode]; ok {
		return name
	}
	return "Unknown"
}
