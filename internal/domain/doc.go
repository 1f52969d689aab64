// Package domain models IBGE municipal reference data and population estimates.
//
// # Data Sources
//
// Two independent IBGE publications feed the pipeline:
//
// The municipal registry comes from the localidades API
// (https://servicodados.ibge.gov.br/api/v1/localidades/municipios), a JSON
// array where each municipality nests its state and region several levels
// deep: microrregiao → mesorregiao → UF → regiao. Any of those levels may be
// absent for a given row; traversal uses [PathString] so a missing hop yields
// an empty field instead of a failure.
//
// Population estimates come from the estimativas spreadsheet
// (POP<year>_<date>.xlsx, sheet "Municípios"). Its header sits on the second
// row, state and municipality codes are unpadded digit strings, and the
// population column is locale-formatted text with "." as the thousands
// separator and "," as the decimal separator (e.g. "1.234,5" = 1234.5).
//
// # Canonical Identifier
//
// The two sources agree only on the 7-digit IBGE municipal code:
//
//	id_ibge = zfill(state code, 2) + zfill(municipality code, 5)
//
// e.g. state "35" + municipality "00001" → "3500001" (São Paulo). Spreadsheet
// exports sometimes carry a trailing ".0" artifact from numeric round-trips
// ("35.0"); [MakeCanonicalID] strips it before padding. A missing component
// produces [NullID]; null-keyed rows are retained in their own table but
// never participate in joins or geometry merges.
//
// # Population Text
//
// [ParsePopulation] cleans and parses the locale-formatted population column.
// Unparseable text is not an error: the value becomes null and is tallied as
// missing so data quality stays visible in the statistics report.
package domain
