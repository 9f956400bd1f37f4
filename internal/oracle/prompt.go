package oracle

import "strings"

const systemPrompt = `You are a drug policy research assistant. You respond with strict JSON only: no prose, no explanations, no markdown fences.`

// buildPrompt names every substance and country in the request and pins
// down the exact record shape the normalizer expects.
func buildPrompt(substances, countries []string) string {
	var sb strings.Builder

	sb.WriteString("Report the current legal access status of each substance below in each of the listed countries.\n\n")

	sb.WriteString("Substances:\n")
	for _, s := range substances {
		sb.WriteString("- ")
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	sb.WriteString("\nCountries (ISO 3166-1 alpha-2):\n")
	sb.WriteString(strings.Join(countries, ", "))
	sb.WriteString("\n\n")

	sb.WriteString("Respond with a JSON array of records. Each record must contain exactly these fields:\n")
	sb.WriteString(`  "substance": the substance name exactly as listed above` + "\n")
	sb.WriteString(`  "country_code": the country code exactly as listed above` + "\n")
	sb.WriteString(`  "access_status": one of "Unknown", "Banned", "LimitedAccessTrials", "ApprovedMedicalUse"` + "\n\n")
	sb.WriteString("Return at most one record per (substance, country_code) pair, and only pairs you have information on.")

	return sb.String()
}
