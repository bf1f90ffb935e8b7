package argocd_test

import (
	"testing"

	"github.com/porter-dev/argocd-deployer/pkg/argocd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appJSON = `{
  "metadata": {
    "name": "guestbook",
    "namespace": "argocd",
    "labels": {"team": "payments", "tier": "web"}
  },
  "spec": {
    "destination": {"namespace": "guestbook-prod"},
    "syncPolicy": {"automated": {"prune": true}}
  },
  "status": {
    "sync": {"status": "Synced", "revision": "4f2d9a1c0b7e6d5a4f3e2d1c0b9a8f7e6d5c4b3a"},
    "health": {"status": "Progressing"},
    "operationState": {
      "phase": "Succeeded",
      "syncResult": {"revision": "9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b"}
    },
    "history": [
      {"id": 3, "revision": "cccccccdeadbeef", "deployedAt": "2024-03-03T10:00:00Z"},
      {"id": 1, "revision": "aaaaaaa1234567", "deployedAt": "2024-03-01T10:00:00Z"},
      {"id": 2, "revision": "bbbbbbb7654321", "deployedAt": "2024-03-02T10:00:00Z"}
    ]
  }
}`

func TestParseApplication(t *testing.T) {
	app, err := argocd.ParseApplication([]byte(appJSON))
	require.NoError(t, err)

	assert.Equal(t, "guestbook", app.Name)
	assert.Equal(t, "guestbook-prod", app.Namespace)
	assert.Equal(t, map[string]string{"team": "payments", "tier": "web"}, app.Labels)
	assert.Equal(t, argocd.HealthProgressing, app.Health)
	assert.Equal(t, "Synced", app.SyncStatus)
	assert.True(t, app.AutoSyncEnabled)
	assert.Equal(t, "9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b", app.LastSuccessfulRevision())
}

func TestParseApplication_FallsBackToSyncRevision(t *testing.T) {
	app, err := argocd.ParseApplication([]byte(`{
		"metadata": {"name": "guestbook", "namespace": "argocd"},
		"status": {
			"sync": {"revision": "4f2d9a1"},
			"operationState": {"phase": "Failed", "syncResult": {"revision": "9a8b7c6"}}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "argocd", app.Namespace)
	assert.Equal(t, argocd.HealthUnknown, app.Health)
	assert.False(t, app.AutoSyncEnabled)
	assert.Equal(t, "4f2d9a1", app.LastSuccessfulRevision())
}

func TestParseApplication_Invalid(t *testing.T) {
	_, err := argocd.ParseApplication([]byte("not json"))
	assert.Error(t, err)
}

func TestParseHistoryJSON_SortsOldestFirst(t *testing.T) {
	entries, err := argocd.ParseHistoryJSON([]byte(appJSON))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, argocd.HistoryID(1), entries[0].ID)
	assert.Equal(t, "aaaaaaa1234567", entries[0].Revision)
	assert.Equal(t, argocd.HistoryID(3), entries[2].ID)
	assert.Equal(t, 2024, entries[2].DeployedAt.Year())
}

func TestParseHistoryJSON_NoHistory(t *testing.T) {
	entries, err := argocd.ParseHistoryJSON([]byte(`{"status": {}}`))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseHistoryTable(t *testing.T) {
	out := `SOURCE  https://github.com/argoproj/argocd-example-apps.git
ID      DATE                           REVISION
12      2024-03-02 10:00:00 +0000 UTC  main (bbbbbbb)
11      2024-03-01 10:00:00 +0000 UTC  main (aaaaaaa)
13      2024-03-03 10:00:00 +0000 UTC  cccccccdeadbeef
`

	entries := argocd.ParseHistoryTable(out)
	require.Len(t, entries, 3)

	assert.Equal(t, []argocd.HistoryEntry{
		{ID: 11, Revision: "aaaaaaa", DeployedAt: entries[0].DeployedAt},
		{ID: 12, Revision: "bbbbbbb", DeployedAt: entries[1].DeployedAt},
		{ID: 13, Revision: "cccccccdeadbeef", DeployedAt: entries[2].DeployedAt},
	}, entries)
	assert.Equal(t, 1, entries[0].DeployedAt.Day())
}

func TestHistoryID_String(t *testing.T) {
	assert.Equal(t, "42", argocd.HistoryID(42).String())
	assert.Equal(t, "unknown", argocd.UnknownHistoryID.String())
	assert.False(t, argocd.UnknownHistoryID.Known())
	assert.True(t, argocd.HistoryID(0).Known())
}
