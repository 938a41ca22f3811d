package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
	"github.com/JakeFAU/team-logo-scraper/internal/storage/local"
)

func TestNewTeamFileRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := local.NewTeamFile("  ")
	assert.Error(t, err)
}

func TestTeamFileLoadMissingIsEmpty(t *testing.T) {
	t.Parallel()

	f, err := local.NewTeamFile(filepath.Join(t.TempDir(), "team_logos.json"))
	require.NoError(t, err)

	teams, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, teams.Len())
}

func TestTeamFileLoadMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_logos.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"team_id": "1",`), 0o600))
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	_, err = f.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestTeamFileRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "team_logos.json")
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	records := []crawler.Record{
		{TeamID: "17001", TeamName: "Zeta Division", LogoURL: "https://owcdn.net/img/zeta.png"},
		{TeamID: "9001", TeamName: "Team Liquid", LogoURL: "https://owcdn.net/img/tl.png"},
	}
	require.NoError(t, f.Save(context.Background(), records))

	teams, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, records, teams.Records())
}

func TestTeamFileLoadDuplicateIDTakesLastValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_logos.json")
	raw := `[
  {"team_id": "1", "team_name": "Old", "logo_url": "a"},
  {"team_id": "2", "team_name": "B", "logo_url": "b"},
  {"team_id": "1", "team_name": "New", "logo_url": "c"}
]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	teams, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []crawler.Record{
		{TeamID: "1", TeamName: "New", LogoURL: "c"},
		{TeamID: "2", TeamName: "B", LogoURL: "b"},
	}, teams.Records())
}

func TestTeamFileLoadRejectsNonArray(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"null", " null\n"} {
		path := filepath.Join(t.TempDir(), "team_logos.json")
		require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
		f, err := local.NewTeamFile(path)
		require.NoError(t, err)

		_, err = f.Load(context.Background())
		require.ErrorIs(t, err, local.ErrNotArray, raw)
	}
}

func TestTeamFileLoadEmptyArray(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_logos.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	teams, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, teams.Len())
}

func TestTeamFileSaveFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_logos.json")
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Save(context.Background(), []crawler.Record{
		{TeamID: "42", TeamName: "ゼータ & Co", LogoURL: "https://owcdn.net/img/a.png?x=1&y=2"},
	}))

	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "[\n" +
		"  {\n" +
		"    \"team_id\": \"42\",\n" +
		"    \"team_name\": \"ゼータ & Co\",\n" +
		"    \"logo_url\": \"https://owcdn.net/img/a.png?x=1&y=2\"\n" +
		"  }\n" +
		"]"
	assert.Equal(t, want, string(raw))
}

func TestTeamFileSaveOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "team_logos.json")
	f, err := local.NewTeamFile(path)
	require.NoError(t, err)

	require.NoError(t, f.Save(context.Background(), []crawler.Record{{TeamID: "1"}, {TeamID: "2"}}))
	require.NoError(t, f.Save(context.Background(), nil))

	// #nosec G304 -- test reads from the controlled temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestTeamFileSaveHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	f, err := local.NewTeamFile(filepath.Join(t.TempDir(), "team_logos.json"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, f.Save(ctx, nil))
}
