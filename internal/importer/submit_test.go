package importer

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/san-import-cli/internal/model"
	"github.com/sells-group/san-import-cli/internal/resilience"
	"github.com/sells-group/san-import-cli/internal/store"
)

func fastSubmitOptions() Options {
	opts := testOptions()
	opts.SubmitRetry = resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	opts.RefreshRetry = resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond}
	return opts
}

func planWithBatchMember(t *testing.T, st *fakeStore) *Plan {
	t.Helper()

	docs := []model.SourceDocument{
		{Name: "aliases.txt", Text: "device-alias name HOST1 pwwn 50:05:07:63:0a:03:17:e4\n"},
		{Name: "zones.txt", Text: "zone name Z_HOST1 vsan 10\n member device-alias HOST1\n"},
	}
	plan, err := New(st, nil).Plan(context.Background(), docs, testOptions())
	require.NoError(t, err)
	return plan
}

func TestSubmit_AliasesThenZones(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	result, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)

	require.Len(t, result.Aliases, 1)
	assert.Equal(t, "HOST1", result.Aliases[0].Name)
	assert.NotEmpty(t, result.Aliases[0].ID)

	require.Len(t, result.Zones, 1)
	assert.Equal(t, "Z_HOST1", result.Zones[0].Name)

	// The zone went to the backend with the freshly assigned alias id, not
	// a name reference.
	require.Len(t, st.createdZones, 1)
	assert.Equal(t, []string{"alias-host1"}, st.createdZones[0].MemberIDs)
}

func TestSubmit_RewritesInBatchMembers(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	_, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)

	require.Len(t, plan.Zones[0].Members, 1)
	assert.Equal(t, model.MemberPersisted, plan.Zones[0].Members[0].Kind)
	assert.Equal(t, "alias-host1", plan.Zones[0].Members[0].AliasID)
}

func TestSubmit_WaitsOutReadAfterWriteLag(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	// Created aliases stay invisible to the next two listings.
	st.hideNewAliases = 3

	_, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)

	assert.Equal(t, model.MemberPersisted, plan.Zones[0].Members[0].Kind)
	require.Len(t, st.createdZones, 1)
	assert.Equal(t, []string{"alias-host1"}, st.createdZones[0].MemberIDs)
}

func TestSubmit_RefreshExhaustionLeavesMemberUnresolved(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	// Never becomes visible within the retry budget.
	st.hideNewAliases = 100

	_, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)

	assert.Empty(t, plan.Zones[0].Members)
	require.Len(t, plan.Zones[0].Unresolved, 1)
	assert.Equal(t, "in-batch", plan.Zones[0].Unresolved[0].Kind)
	assert.Equal(t, "HOST1", plan.Zones[0].Unresolved[0].RawToken)

	// The zone is still submitted, just without the missing member.
	require.Len(t, st.createdZones, 1)
	assert.Empty(t, st.createdZones[0].MemberIDs)
}

func TestSubmit_RetriesLockContention(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	st.aliasErrs = []error{eris.New("database is locked (5) (SQLITE_BUSY)")}

	result, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)
	require.Len(t, result.Aliases, 1)
	assert.NotEmpty(t, result.Aliases[0].ID)
}

func TestSubmit_PermanentStoreErrorAborts(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)

	st.aliasErrs = []error{eris.New("schema mismatch"), eris.New("schema mismatch"), eris.New("schema mismatch")}

	_, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.Error(t, err)
	assert.Empty(t, st.createdZones, "zones must not be submitted after alias failure")
}

func TestSubmit_SkipsExistingItems(t *testing.T) {
	st := &fakeStore{}
	plan := planWithBatchMember(t, st)
	plan.Aliases[0].Exists = true
	plan.Zones[0].Exists = true

	result, err := New(st, nil).Submit(context.Background(), plan, fastSubmitOptions())
	require.NoError(t, err)
	assert.Empty(t, result.Aliases)
	assert.Empty(t, result.Zones)
	assert.Empty(t, st.createdAliases)
	assert.Empty(t, st.createdZones)
}

func TestCollectFailures(t *testing.T) {
	res := &SubmitResult{
		Aliases: []store.CreateResult{
			{Name: "HOST1", ID: "a-1"},
			{Name: "HOST2", Duplicate: true},
			{Name: "HOST3", Error: "boom"},
		},
		Zones: []store.CreateResult{
			{Name: "Z1", ID: "z-1"},
		},
	}

	err := collectFailures(res)
	require.Error(t, err)

	var se *SubmitError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.AliasFailures, 1)
	assert.Equal(t, "HOST3", se.AliasFailures[0].Name)
	assert.Empty(t, se.ZoneFailures)
	assert.Contains(t, se.Error(), "HOST3")
}

func TestCollectFailures_DuplicatesAreNotFailures(t *testing.T) {
	res := &SubmitResult{
		Aliases: []store.CreateResult{{Name: "HOST1", Duplicate: true}},
	}
	assert.NoError(t, collectFailures(res))
}
