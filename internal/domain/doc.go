// Package domain models the INMET historical weather archives and the
// per-year outcomes of extracting one station from them.
//
// # Data Source
//
// INMET (Instituto Nacional de Meteorologia, Brazil) publishes one ZIP archive
// per calendar year at https://portal.inmet.gov.br/uploads/dadoshistoricos/.
// Each archive holds one CSV per automatic station, named like:
//
//	2020/INMET_SE_RJ_A652_RIO DE JANEIRO - FORTE DE COPACABANA_01-01-2020_A_31-12-2020.CSV
//
// Older archives nest members under a year directory, newer ones do not, so
// members are matched by substring against the full path. See [StationIdentifier].
//
// # File Layout
//
// Files are ISO-8859-1 encoded and semicolon separated. The first eight lines
// are a station preamble in "KEY:;VALUE" form:
//
//	REGIAO:;SE
//	UF:;RJ
//	ESTACAO:;RIO DE JANEIRO - FORTE DE COPACABANA
//	CODIGO (WMO):;A652
//	LATITUDE:;-22,98833333
//	LONGITUDE:;-43,19055555
//	ALTITUDE:;13,67
//	DATA DE FUNDACAO:;28/12/07
//
// The ninth line is the column header and every following line is one hourly
// observation. Rows usually end with a trailing ";", which yields an unnamed
// empty last column.
//
// Numbers use a decimal comma ("0,2", sometimes ",2"), and -9999 marks a
// missing reading. Records are stored as published: no unit conversion,
// no sentinel replacement, no decimal-comma rewriting.
//
// # Idempotence
//
// The Parquet file at [OutputPath] is the completion marker for a year. If it
// exists the year is reported as successful without contacting INMET.
package domain
