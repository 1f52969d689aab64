package domain

// MunicipalityRecord is one flattened row of the localidades registry.
// Missing hierarchy levels yield empty strings, never a failure.
type MunicipalityRecord struct {
	ID         CanonicalID `json:"id_ibge"`
	Name       string      `json:"nome"`
	StateCode  string      `json:"uf_sigla"`
	StateName  string      `json:"uf_nome"`
	RegionName string      `json:"regiao"`
}

// PopulationRecord is one raw row of the estimativas spreadsheet: unpadded
// code components plus the locale-formatted population text. The canonical
// key is derived once at ingestion so every consumer sees the same bytes.
type PopulationRecord struct {
	StateCodeRaw        string
	MunicipalityCodeRaw string
	PopulationText      string
	ID                  CanonicalID
}

// JoinedRecord is a MunicipalityRecord carrying its matched population.
// Population is nil when the municipality had no match on the right side or
// its population text did not parse.
type JoinedRecord struct {
	MunicipalityRecord
	Population *float64
}
