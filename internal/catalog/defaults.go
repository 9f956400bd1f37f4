package catalog

// defaultSubstances is the built-in study list. Override per deployment
// through the catalog file.
var defaultSubstances = []string{
	"Psilocybin",
	"MDMA",
	"LSD",
	"Ketamine",
	"Ibogaine",
	"DMT",
	"Mescaline",
	"Ayahuasca",
	"Cannabis",
	"2C-B",
}

// countryCodes lists the ISO 3166-1 alpha-2 codes of the 193 UN member
// states, ordered by English short name.
var countryCodes = []string{
	"AF", "AL", "DZ", "AD", "AO", "AG", "AR", "AM", "AU", "AT",
	"AZ", "BS", "BH", "BD", "BB", "BY", "BE", "BZ", "BJ", "BT",
	"BO", "BA", "BW", "BR", "BN", "BG", "BF", "BI", "CV", "KH",
	"CM", "CA", "CF", "TD", "CL", "CN", "CO", "KM", "CG", "CR",
	"CI", "HR", "CU", "CY", "CZ", "KP", "CD", "DK", "DJ", "DM",
	"DO", "EC", "EG", "SV", "GQ", "ER", "EE", "SZ", "ET", "FJ",
	"FI", "FR", "GA", "GM", "GE", "DE", "GH", "GR", "GD", "GT",
	"GN", "GW", "GY", "HT", "HN", "HU", "IS", "IN", "ID", "IR",
	"IQ", "IE", "IL", "IT", "JM", "JP", "JO", "KZ", "KE", "KI",
	"KW", "KG", "LA", "LV", "LB", "LS", "LR", "LY", "LI", "LT",
	"LU", "MG", "MW", "MY", "MV", "ML", "MT", "MH", "MR", "MU",
	"MX", "FM", "MD", "MC", "MN", "ME", "MA", "MZ", "MM", "NA",
	"NR", "NP", "NL", "NZ", "NI", "NE", "NG", "MK", "NO", "OM",
	"PK", "PW", "PA", "PG", "PY", "PE", "PH", "PL", "PT", "QA",
	"RO", "RU", "RW", "KN", "LC", "VC", "WS", "SM", "ST", "SA",
	"SN", "RS", "SC", "SL", "SG", "SK", "SI", "SB", "SO", "ZA",
	"KR", "SS", "ES", "LK", "SD", "SR", "SE", "CH", "SY", "TJ",
	"TZ", "TH", "TL", "TG", "TO", "TT", "TN", "TR", "TM", "TV",
	"UG", "UA", "AE", "GB", "US", "UY", "UZ", "VU", "VE", "VN",
	"YE", "ZM", "ZW",
}
