package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultLocation      = "Sweden"
	DefaultIndustry      = "General Business"
	MinPhoneLength       = 9
	MaxDescriptionLength = 300
)

var nonPhoneChars = regexp.MustCompile(`[^0-9+]`)

// SourceRecord is one company as delivered by a lead source, before it
// becomes part of the pool.
type SourceRecord struct {
	ExternalKey string `json:"external_key,omitempty"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
}

// CleanPhone keeps digits and '+'.
func CleanPhone(raw string) string {
	return nonPhoneChars.ReplaceAllString(raw, "")
}

// Normalize fills defaults and validates the record. Phone and company
// name are mandatory.
func (r SourceRecord) Normalize() (SourceRecord, error) {
	out := SourceRecord{
		ExternalKey: strings.TrimSpace(r.ExternalKey),
		CompanyName: cleanText(r.CompanyName),
		Industry:    cleanText(r.Industry),
		Location:    cleanText(r.Location),
		Website:     cleanText(r.Website),
		Email:       cleanText(r.Email),
		Phone:       CleanPhone(r.Phone),
		Description: cleanText(r.Description),
		Source:      cleanText(r.Source),
	}
	if out.CompanyName == "" {
		return out, fmt.Errorf("%w: company name is required", ErrInvalidRecord)
	}
	if len(out.Phone) < MinPhoneLength {
		return out, fmt.Errorf("%w: phone %q is too short", ErrInvalidRecord, r.Phone)
	}
	if out.Location == "" {
		out.Location = DefaultLocation
	}
	if out.Industry == "" {
		out.Industry = DefaultIndustry
	}
	if out.Description == "" {
		out.Description = out.CompanyName + " - " + out.Location
	}
	out.Description = truncateRunes(out.Description, MaxDescriptionLength)
	if out.Source == "" {
		out.Source = "unknown"
	}
	if out.ExternalKey == "" {
		out.ExternalKey = DeriveExternalKey(out.CompanyName, out.Phone)
	}
	return out, nil
}

// DeriveExternalKey gives records without an organisation number a stable
// identity: the same company name and phone always hash to the same key.
func DeriveExternalKey(companyName, phone string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(companyName)) + "|" + CleanPhone(phone)))
	return "h:" + hex.EncodeToString(sum[:16])
}

// ToLead converts a normalized record into an unassigned pool lead.
func (r SourceRecord) ToLead(now time.Time) *Lead {
	return &Lead{
		ExternalKey: r.ExternalKey,
		CompanyName: r.CompanyName,
		Industry:    r.Industry,
		Location:    r.Location,
		Website:     optional(r.Website),
		Email:       optional(r.Email),
		Phone:       r.Phone,
		Description: r.Description,
		Source:      r.Source,
		Status:      StatusNew,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan", "none", "null":
		return ""
	}
	return s
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
