package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceRecordNormalizeDefaults(t *testing.T) {
	rec, err := SourceRecord{
		CompanyName: "  Byggfirma Nord AB ",
		Phone:       "070-123 45 67",
		Email:       "nan",
		Source:      "Excel: leads.xlsx",
	}.Normalize()
	require.NoError(t, err)

	assert.Equal(t, "Byggfirma Nord AB", rec.CompanyName)
	assert.Equal(t, "0701234567", rec.Phone)
	assert.Equal(t, DefaultLocation, rec.Location)
	assert.Equal(t, DefaultIndustry, rec.Industry)
	assert.Equal(t, "Byggfirma Nord AB - Sweden", rec.Description)
	assert.Empty(t, rec.Email)
	assert.True(t, strings.HasPrefix(rec.ExternalKey, "h:"))
}

func TestSourceRecordNormalizeKeepsGivenKey(t *testing.T) {
	rec, err := SourceRecord{ExternalKey: "556677-8899", CompanyName: "Acme", Phone: "+46701234567"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "556677-8899", rec.ExternalKey)
	assert.Equal(t, "+46701234567", rec.Phone)
}

func TestSourceRecordNormalizeRejects(t *testing.T) {
	_, err := SourceRecord{CompanyName: "Acme", Phone: "12345"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = SourceRecord{CompanyName: "None", Phone: "0701234567"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestSourceRecordDescriptionTruncated(t *testing.T) {
	rec, err := SourceRecord{CompanyName: "Åkeri", Phone: "0701234567", Description: strings.Repeat("ö", 400)}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MaxDescriptionLength, len([]rune(rec.Description)))
}

func TestDeriveExternalKeyIsStable(t *testing.T) {
	a := DeriveExternalKey("Acme AB", "070-123 45 67")
	b := DeriveExternalKey(" acme ab", "0701234567")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, DeriveExternalKey("Acme AB", "0701234568"))
}

func TestSourceRecordToLead(t *testing.T) {
	now := time.Now()
	rec, err := SourceRecord{CompanyName: "Acme", Phone: "0701234567", Website: "https://acme.se"}.Normalize()
	require.NoError(t, err)

	lead := rec.ToLead(now)
	assert.False(t, lead.Assigned())
	assert.Equal(t, StatusNew, lead.Status)
	require.NotNil(t, lead.Website)
	assert.Equal(t, "https://acme.se", *lead.Website)
	assert.Nil(t, lead.Email)
}
