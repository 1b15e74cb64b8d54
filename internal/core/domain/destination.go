package domain

import (
	"path/filepath"
	"strings"
)

type Continent string

const (
	ContinentLATAM   Continent = "LATAM"
	ContinentNORTHAM Continent = "NORTHAM"
	ContinentAsia    Continent = "ASIA"
	ContinentEurope  Continent = "EUROPE"
	ContinentAfrica  Continent = "AFRICA"
	ContinentOceania Continent = "OCEANIA"
	ContinentOther   Continent = "OTHER"
)

// Continents lists the tokens the classifier is asked to return.
var Continents = []Continent{
	ContinentLATAM,
	ContinentNORTHAM,
	ContinentAsia,
	ContinentEurope,
	ContinentAfrica,
	ContinentOceania,
	ContinentOther,
}

func (c Continent) Known() bool {
	for _, known := range Continents {
		if c == known {
			return true
		}
	}
	return false
}

// RawDestinationRecord is one untrusted destination entry as decoded from the
// classifier response. Fields holds the original object for diagnostics.
type RawDestinationRecord struct {
	City      string         `json:"city"`
	Country   string         `json:"country"`
	Continent string         `json:"continent"`
	Fields    map[string]any `json:"-"`
}

type NormalizedDestination struct {
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Continent Continent `json:"continent"`
}

func (d NormalizedDestination) Complete() bool {
	return d.City != "" && d.Country != "" && d.Continent != ""
}

// DestinationPath is the (continent, country, city) directory under Root.
type DestinationPath struct {
	Root      string    `json:"root"`
	Continent Continent `json:"continent"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
}

func (p DestinationPath) Dir() string {
	return filepath.Join(p.Root, string(p.Continent), p.Country, p.City)
}

func (p DestinationPath) File(filename string) string {
	return filepath.Join(p.Dir(), filename)
}

func (p DestinationPath) String() string {
	return strings.Join([]string{string(p.Continent), p.Country, p.City}, "/")
}

// PlacementKey identifies one physical copy within a run.
type PlacementKey struct {
	Source      string
	Destination string
}

type RejectReason string

const (
	RejectIncomplete    RejectReason = "INCOMPLETE"
	RejectUnsafeSegment RejectReason = "UNSAFE_SEGMENT"
)

type Rejection struct {
	Reason     RejectReason
	DocumentID string
	Record     RawDestinationRecord
	Normalized NormalizedDestination
}

func (r *Rejection) Error() string {
	return "destination rejected: " + string(r.Reason)
}

func (r *Rejection) Unwrap() error {
	switch r.Reason {
	case RejectUnsafeSegment:
		return ErrUnsafeSegment
	default:
		return ErrIncompleteDestination
	}
}

type OutcomeStatus string

const (
	OutcomePlaced   OutcomeStatus = "placed"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeRejected OutcomeStatus = "rejected"
	OutcomeFailed   OutcomeStatus = "failed"
)

const SkipAlreadyPlaced = "ALREADY_PLACED"

// PlacementOutcome reports what happened to one raw destination record.
type PlacementOutcome struct {
	DocumentID  string                `json:"document_id"`
	Status      OutcomeStatus         `json:"status"`
	Reason      string                `json:"reason,omitempty"`
	Path        string                `json:"path,omitempty"`
	Destination NormalizedDestination `json:"destination"`
	Record      RawDestinationRecord  `json:"record"`
	Err         error                 `json:"-"`
	Error       string                `json:"error,omitempty"`
}

// OutcomeCounts tallies outcomes by status.
type OutcomeCounts struct {
	Placed   int `json:"placed"`
	Skipped  int `json:"skipped"`
	Rejected int `json:"rejected"`
	Failed   int `json:"failed"`
}

func (c *OutcomeCounts) Add(outcomes []PlacementOutcome) {
	for _, outcome := range outcomes {
		switch outcome.Status {
		case OutcomePlaced:
			c.Placed++
		case OutcomeSkipped:
			c.Skipped++
		case OutcomeRejected:
			c.Rejected++
		case OutcomeFailed:
			c.Failed++
		}
	}
}
