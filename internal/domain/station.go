package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// BaseURL is the INMET directory holding the yearly archives.
	BaseURL = "https://portal.inmet.gov.br/uploads/dadoshistoricos"

	// StationIdentifier is matched case-sensitively against archive member paths.
	StationIdentifier = "INMET_SE_RJ_A652_RIO DE JANEIRO"

	// StationCode prefixes output file names.
	StationCode = "A652"

	// StationLabel is the human-readable station name used in messages.
	StationLabel = "Rio de Janeiro A652"

	// PreambleLines is the number of "KEY:;VALUE" lines preceding the header.
	PreambleLines = 8

	// Delimiter separates fields in station files.
	Delimiter = ';'

	// OutputExt is the extension of materialized artifacts.
	OutputExt = "parquet"
)

// OutputPath returns the deterministic artifact path for a year.
func OutputPath(outputDir string, year int) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s_%d.%s", StationCode, year, OutputExt))
}

// ArchiveURL returns the archive location for a year under baseURL.
func ArchiveURL(baseURL string, year int) string {
	return strings.TrimRight(baseURL, "/") + "/" + strconv.Itoa(year) + ".zip"
}

// MatchesStation reports whether an archive member belongs to the station.
func MatchesStation(memberName string) bool {
	return strings.Contains(memberName, StationIdentifier)
}
