package inmet

import (
	"bytes"
	"fmt"
	"io"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/klauspost/compress/zip"
)

// Archive is a downloaded yearly archive opened in memory.
type Archive struct {
	reader *zip.Reader
}

// OpenArchive opens an in-memory ZIP payload. Errors wrap domain.ErrArchive.
func OpenArchive(payload []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrArchive, err)
	}
	return &Archive{reader: zr}, nil
}

// Names lists member paths in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.reader.File))
	for _, f := range a.reader.File {
		names = append(names, f.Name)
	}
	return names
}

// StationMembers returns the regular-file members that belong to the station,
// in archive order.
func (a *Archive) StationMembers() []string {
	var matches []string
	for _, f := range a.reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if domain.MatchesStation(f.Name) {
			matches = append(matches, f.Name)
		}
	}
	return matches
}

// Open returns a reader for the named member. Errors wrap domain.ErrArchive.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	for _, f := range a.reader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("%w: open %s: %w", domain.ErrArchive, name, err)
			}
			return rc, nil
		}
	}
	return nil, fmt.Errorf("%w: member %q not found", domain.ErrArchive, name)
}

// ExtractStationTable locates the first station member of the archive and
// parses it. It returns domain.ErrNoStationData when no member matches.
func ExtractStationTable(payload []byte) (domain.StationTable, string, error) {
	archive, err := OpenArchive(payload)
	if err != nil {
		return domain.StationTable{}, "", err
	}

	members := archive.StationMembers()
	if len(members) == 0 {
		return domain.StationTable{}, "", domain.ErrNoStationData
	}

	member := members[0]
	rc, err := archive.Open(member)
	if err != nil {
		return domain.StationTable{}, member, err
	}
	defer rc.Close()

	table, err := domain.ParseStationCSV(rc)
	if err != nil {
		return domain.StationTable{}, member, fmt.Errorf("%w: parse %s: %w", domain.ErrArchive, member, err)
	}
	return table, member, nil
}

// Extractor implements pipeline.StationExtractor over in-memory ZIP payloads.
type Extractor struct{}

// ExtractStation delegates to ExtractStationTable.
func (Extractor) ExtractStation(payload []byte) (domain.StationTable, string, error) {
	return ExtractStationTable(payload)
}
