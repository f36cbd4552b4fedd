package pipeline

import (
	"context"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
)

// ArchiveFetcher downloads the yearly archive into memory.
type ArchiveFetcher interface {
	FetchArchive(ctx context.Context, year int) ([]byte, error)
}

// StationExtractor locates the station file inside an archive payload and
// parses it, returning the member it read.
type StationExtractor interface {
	ExtractStation(payload []byte) (domain.StationTable, string, error)
}

// TableWriter persists a parsed station table at path.
type TableWriter interface {
	WriteTable(path string, table domain.StationTable) error
}

// ArtifactMirror copies a written artifact to secondary storage.
type ArtifactMirror interface {
	Mirror(ctx context.Context, path string) error
}

// YearProcessor turns one year into an Outcome.
type YearProcessor interface {
	ProcessYear(ctx context.Context, year int) domain.Outcome
}

// OutcomePublisher announces each outcome as it is produced.
type OutcomePublisher interface {
	Publish(ctx context.Context, outcome domain.Outcome) error
}
