package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LeadStatus is the closed set of workflow states a lead can be in.
type LeadStatus string

const (
	StatusNew       LeadStatus = "New"
	StatusContacted LeadStatus = "Contacted"
	StatusConverted LeadStatus = "Converted"
	StatusRemoved   LeadStatus = "Removed"
)

var AllStatuses = []LeadStatus{StatusNew, StatusContacted, StatusConverted, StatusRemoved}

// Swedish labels used by the dashboard and by older clients.
var swedishLabels = map[LeadStatus]string{
	StatusNew:       "Ny",
	StatusContacted: "Kontaktad",
	StatusConverted: "Konverterad",
	StatusRemoved:   "Borttagen",
}

var transitions = map[LeadStatus][]LeadStatus{
	StatusNew:       {StatusContacted, StatusRemoved},
	StatusContacted: {StatusConverted, StatusRemoved},
	StatusConverted: {StatusRemoved},
	StatusRemoved:   nil,
}

// ParseStatus accepts the English name or the Swedish label, case-insensitively.
func ParseStatus(raw string) (LeadStatus, error) {
	v := strings.TrimSpace(raw)
	for _, s := range AllStatuses {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, swedishLabels[s]) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

func (s LeadStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s LeadStatus) Label() string {
	return swedishLabels[s]
}

func (s LeadStatus) Terminal() bool {
	return s == StatusRemoved
}

func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *LeadStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
