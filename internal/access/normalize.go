package access

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// rawRecord mirrors the field names the oracle is instructed to emit.
type rawRecord struct {
	Substance    string `json:"substance"`
	CountryCode  string `json:"country_code"`
	AccessStatus string `json:"access_status"`
}

// Normalizer coerces raw oracle records into canonical Records.
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize validates each raw record and returns the usable ones.
// Malformed entries are dropped with a diagnostic; a bad record never
// fails the batch. Unrecognized status strings pass through verbatim so
// the oracle's assertion is preserved, but they are flagged.
func (n *Normalizer) Normalize(raw []json.RawMessage) []Record {
	records := make([]Record, 0, len(raw))
	observed := n.now()

	for i, data := range raw {
		var rec rawRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("dropping undecodable oracle record")
			continue
		}

		if rec.Substance == "" || rec.CountryCode == "" {
			log.Warn().
				Int("index", i).
				Str("substance", rec.Substance).
				Str("country", rec.CountryCode).
				Msg("dropping oracle record with missing key fields")
			continue
		}

		// A record without a status asserts nothing worth reconciling.
		if rec.AccessStatus == "" {
			log.Warn().
				Int("index", i).
				Str("substance", rec.Substance).
				Str("country", rec.CountryCode).
				Msg("dropping oracle record with empty status")
			continue
		}

		status := Status(rec.AccessStatus)
		if !status.Known() {
			log.Warn().
				Str("substance", rec.Substance).
				Str("country", rec.CountryCode).
				Str("status", rec.AccessStatus).
				Msg("oracle returned status outside the known set")
		}

		records = append(records, Record{
			Substance:   rec.Substance,
			CountryCode: rec.CountryCode,
			Status:      status,
			ObservedAt:  observed,
		})
	}

	return records
}
