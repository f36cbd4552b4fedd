package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors used to classify stage failures at the processor boundary.
var (
	ErrTransport     = errors.New("transport failure")
	ErrArchive       = errors.New("archive failure")
	ErrNoStationData = errors.New("no station data")
)

// FailureKind discriminates the failure variants of an Outcome.
type FailureKind string

const (
	FailureNone          FailureKind = ""
	FailureTransport     FailureKind = "transport"
	FailureArchive       FailureKind = "archive"
	FailureNoStationData FailureKind = "no_station_data"
	FailureUnexpected    FailureKind = "unexpected"
)

// ClassifyError maps a stage error onto a FailureKind.
func ClassifyError(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrNoStationData):
		return FailureNoStationData
	case errors.Is(err, ErrTransport):
		return FailureTransport
	case errors.Is(err, ErrArchive):
		return FailureArchive
	default:
		return FailureUnexpected
	}
}

// Outcome is the result of processing a single year. Exactly one of FilePath
// and ErrorMessage is set, matching Success.
type Outcome struct {
	Year         int         `json:"year"`
	Success      bool        `json:"success"`
	FilePath     string      `json:"file_path,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Kind         FailureKind `json:"kind,omitempty"`
	Skipped      bool        `json:"skipped,omitempty"`
	CompletedAt  time.Time   `json:"completed_at"`
}

// Succeeded builds a success outcome for a freshly written artifact.
func Succeeded(year int, path string) Outcome {
	return Outcome{Year: year, Success: true, FilePath: path, CompletedAt: clock.Now().UTC()}
}

// AlreadyMaterialized builds a success outcome for an artifact found on disk.
func AlreadyMaterialized(year int, path string) Outcome {
	o := Succeeded(year, path)
	o.Skipped = true
	return o
}

// Failed builds a failure outcome. The message prefix depends on kind.
func Failed(year int, kind FailureKind, cause error) Outcome {
	if kind == FailureNone {
		kind = FailureUnexpected
	}
	return Outcome{
		Year:         year,
		ErrorMessage: FailureMessage(year, kind, cause),
		Kind:         kind,
		CompletedAt:  clock.Now().UTC(),
	}
}

// FailureMessage renders the human-readable cause for a failed year.
func FailureMessage(year int, kind FailureKind, cause error) string {
	detail := causeText(cause)
	switch kind {
	case FailureNoStationData:
		return fmt.Sprintf("No %s station data found for %d", StationLabel, year)
	case FailureTransport:
		return fmt.Sprintf("Error downloading data for %d: %s", year, detail)
	case FailureArchive:
		return fmt.Sprintf("Error processing ZIP file for %d: %s", year, detail)
	default:
		return fmt.Sprintf("Unexpected error processing %d: %s", year, detail)
	}
}

// causeText renders err without the leading sentinel label, which only
// repeats what the message prefix already says.
func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	s := err.Error()
	for _, sentinel := range []error{ErrTransport, ErrArchive} {
		s = strings.TrimPrefix(s, sentinel.Error()+": ")
	}
	return s
}

// YearFailure pairs a failed year with its error message.
type YearFailure struct {
	Year    int    `json:"year"`
	Message string `json:"message"`
}

// SuccessfulPaths returns the artifact path of every successful outcome.
func SuccessfulPaths(outcomes []Outcome) []string {
	paths := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Success && o.FilePath != "" {
			paths = append(paths, o.FilePath)
		}
	}
	return paths
}

// FailedYears returns the year and message of every failed outcome.
func FailedYears(outcomes []Outcome) []YearFailure {
	var failures []YearFailure
	for _, o := range outcomes {
		if !o.Success && o.ErrorMessage != "" {
			failures = append(failures, YearFailure{Year: o.Year, Message: o.ErrorMessage})
		}
	}
	return failures
}
