package conformance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecords = `[
	{"id": "t0", "description": "trivially true", "code": "return true;"},
	{"id": "t1", "description": "trivially false", "code": "return false;"},
	{"id": "t2", "description": "uses prelude", "prelude": "var helperValue = 41;", "code": "return helperValue + 1 === 42;"}
]`

func TestLoadRecords(t *testing.T) {
	records, err := LoadRecords([]byte(sampleRecords))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "t0", records[0].ID)
	assert.Equal(t, "trivially true", records[0].Description)
	assert.Empty(t, records[0].Prelude)
	assert.Equal(t, "var helperValue = 41;", records[2].Prelude)
}

func TestLoadRecordsRejectsInvalidJSON(t *testing.T) {
	_, err := LoadRecords([]byte("not json"))
	assert.Error(t, err)
}

func TestDriverRunPassesAndFails(t *testing.T) {
	records, err := LoadRecords([]byte(sampleRecords))
	require.NoError(t, err)

	driver := NewDriver("", 0)
	driver.Whitelist = Whitelist{}
	results := driver.Run(records)
	require.Len(t, results, 3)

	assert.True(t, results[0].Passed)
	assert.False(t, results[0].Unexpected)

	assert.False(t, results[1].Passed)
	assert.True(t, results[1].Unexpected)

	assert.True(t, results[2].Passed)

	summary := Summarize(results)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Unexpected)
}

func TestDriverHonorsWhitelist(t *testing.T) {
	records, err := LoadRecords([]byte(sampleRecords))
	require.NoError(t, err)

	driver := NewDriver("", 0)
	driver.Whitelist = Whitelist{1: "known failure: t1 returns false"}
	results := driver.Run(records)

	assert.False(t, results[1].Passed)
	assert.True(t, results[1].ExpectFailure)
	assert.False(t, results[1].Unexpected, "a whitelisted failure is expected, not unexpected")

	summary := Summarize(results)
	assert.Equal(t, 0, summary.Unexpected)
}
