package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
)

func TestTeamsAddKeepsFirstRecord(t *testing.T) {
	t.Parallel()

	teams := NewTeams()
	first := crawler.Record{TeamID: "1", TeamName: "Sentinels", LogoURL: "https://owcdn.net/a.png"}
	require.True(t, teams.Add(first))
	require.False(t, teams.Add(crawler.Record{TeamID: "1", TeamName: "Other", LogoURL: "https://owcdn.net/b.png"}))

	got, ok := teams.Get("1")
	require.True(t, ok)
	assert.Equal(t, first, got)
	assert.Equal(t, 1, teams.Len())
}

func TestFromRecordsKeepsFirstPositionLastValue(t *testing.T) {
	t.Parallel()

	teams := FromRecords([]crawler.Record{
		{TeamID: "30"},
		{TeamID: "10"},
		{TeamID: "20"},
		{TeamID: "10", TeamName: "dup"},
	})

	ids := make([]string, 0, teams.Len())
	for _, rec := range teams.Records() {
		ids = append(ids, rec.TeamID)
	}
	assert.Equal(t, []string{"30", "10", "20"}, ids)
	got, ok := teams.Get("10")
	require.True(t, ok)
	assert.Equal(t, "dup", got.TeamName)
	assert.True(t, teams.Has("20"))
	assert.False(t, teams.Has("40"))
}

func TestTeamsRecordsReturnsCopy(t *testing.T) {
	t.Parallel()

	teams := FromRecords([]crawler.Record{{TeamID: "1", TeamName: "A"}})
	records := teams.Records()
	records[0].TeamName = "mutated"

	got, _ := teams.Get("1")
	assert.Equal(t, "A", got.TeamName)
}

func TestEmptyTeamsRecordsNotNil(t *testing.T) {
	t.Parallel()

	records := NewTeams().Records()
	require.NotNil(t, records)
	assert.Empty(t, records)
}
