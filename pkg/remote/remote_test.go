package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/shiwake/pkg/classify"
	"tableflip.dev/shiwake/pkg/event"
	"tableflip.dev/shiwake/pkg/remote"
	"tableflip.dev/shiwake/pkg/remote/mockserver"
	"tableflip.dev/shiwake/pkg/store"
	"tableflip.dev/shiwake/pkg/worktime"
)

func newTestClient(t *testing.T) *remote.Client {
	t.Helper()
	srv := httptest.NewServer(mockserver.New().Handler())
	t.Cleanup(srv.Close)
	return remote.NewClient(srv.URL, "E0123")
}

func TestUnseenWeekIsEmpty(t *testing.T) {
	c := newTestClient(t)
	key := store.WeekKey{Year: 2025, Week: 20}

	evs, err := c.WeekAchievements(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, evs)

	wts, err := c.WeekKintai(context.Background(), key)
	require.NoError(t, err)
	assert.Empty(t, wts)
}

func TestAchievementsRoundTrip(t *testing.T) {
	c := newTestClient(t)
	key := store.WeekKey{Year: 2025, Week: 20}
	ctx := context.Background()

	cls, err := event.FromPath(classify.Path{
		Top:            classify.TopProject,
		Sub:            classify.PurchaseSub,
		Detail:         "機器手配",
		PurchaseOption: 'C',
	})
	require.NoError(t, err)

	start := time.Date(2025, 5, 12, 9, 0, 0, 0, time.UTC)
	ev := event.New("E0123", start, start.Add(90*time.Minute), cls)
	ev.Title = "ポンプ手配"
	ev.ProjectCode = "PJ-1001"
	ev.Dirty = true

	require.NoError(t, c.SaveWeekAchievements(ctx, key, []*event.Event{ev}))

	got, err := c.WeekAchievements(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ev.ID, got[0].ID)
	assert.Equal(t, "P112", got[0].ActivityCode())
	assert.Equal(t, "PJ-1001", got[0].ProjectCode)
	assert.False(t, got[0].Dirty, "server stores clean documents")
	assert.True(t, got[0].Start.Equal(start))
}

func TestDeleteAchievement(t *testing.T) {
	c := newTestClient(t)
	key := store.WeekKey{Year: 2025, Week: 20}
	ctx := context.Background()

	cls, err := event.FromPath(classify.Path{Top: classify.TopIndirect, Sub: "純間接", Detail: "会議"})
	require.NoError(t, err)
	start := time.Date(2025, 5, 13, 10, 0, 0, 0, time.UTC)
	ev := event.New("E0123", start, start.Add(time.Hour), cls)
	require.NoError(t, c.SaveWeekAchievements(ctx, key, []*event.Event{ev}))

	require.NoError(t, c.DeleteAchievement(ctx, ev.ID))
	assert.Error(t, c.DeleteAchievement(ctx, ev.ID), "second delete should 404")

	got, err := c.WeekAchievements(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKintaiRoundTrip(t *testing.T) {
	c := newTestClient(t)
	key := store.WeekKey{Year: 2025, Week: 20}
	ctx := context.Background()

	monday := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	wts := worktime.StandardDefaults.Materialize(monday)
	require.NoError(t, c.SaveWeekKintai(ctx, key, wts))

	got, err := c.WeekKintai(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.Equal(t, 8*time.Hour+30*time.Minute, got[0].Worked())
	assert.Zero(t, got[5].Worked(), "saturday has no default")
}

func TestUserAndProjects(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	u, err := c.User(ctx)
	require.NoError(t, err)
	assert.Equal(t, "E0123", u.EmployeeID)

	projects, err := c.Projects(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, projects)
	for _, p := range projects {
		assert.NotEmpty(t, p.Code)
	}
}
