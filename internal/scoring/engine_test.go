package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/pbfund-go/internal/model"
	"github.com/olegiv/pbfund-go/internal/testutil"
)

func fullScores(sub int) map[string]int {
	raw := make(map[string]int)
	for _, c := range model.Criteria() {
		raw[c.ID] = sub
	}
	return raw
}

func TestComputeTotal(t *testing.T) {
	assert.Equal(t, 100.0, ComputeTotal(fullScores(3)), "all criteria at max")
	assert.Equal(t, 0.0, ComputeTotal(fullScores(0)), "all criteria at zero")
	assert.Equal(t, 0.0, ComputeTotal(nil), "no sub-scores at all")

	// Five criteria at 2 of 3: 5 x (2/3 x 10).
	partial := map[string]int{
		"overview_objectives":   2,
		"local_priorities":      2,
		"community_benefit":     2,
		"activities_milestones": 2,
		"timeline_realism":      2,
	}
	assert.InDelta(t, 100.0/3.0, ComputeTotal(partial), 1e-9)

	// Ids outside the catalog contribute nothing.
	assert.Equal(t, 0.0, ComputeTotal(map[string]int{"vibes": 3}))

	// Missing criteria contribute zero alongside known ones.
	assert.InDelta(t, 10.0, ComputeTotal(map[string]int{"budget_value": 3}), 1e-9)
}

func TestClassifyBand(t *testing.T) {
	tests := []struct {
		total float64
		want  Band
	}{
		{100, BandGreen},
		{65, BandGreen},
		{64.9, BandAmber},
		{39, BandAmber},
		{38.9, BandRed},
		{0, BandRed},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, ClassifyBand(tt.total, DefaultThreshold),
			"total %v at threshold %v", tt.total, DefaultThreshold)
	}

	// The Amber cutoff tracks the configured threshold.
	assert.Equal(t, BandGreen, ClassifyBand(80, 80))
	assert.Equal(t, BandAmber, ClassifyBand(48, 80))
	assert.Equal(t, BandRed, ClassifyBand(47.9, 80))
}

func TestSaveDerivesTotal(t *testing.T) {
	st, cleanup := testutil.TestStore(t)
	defer cleanup()
	engine := NewEngine(st, DefaultThreshold)
	ctx := context.Background()

	rec, err := engine.Save(ctx, Draft{
		AppID:      "a1",
		ScorerID:   "comm_01",
		ScorerName: "Louise White",
		Scores:     fullScores(3),
		IsFinal:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.Total)
	assert.False(t, rec.Timestamp.IsZero(), "save must stamp the record")

	persisted, err := engine.Scores(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, rec.Total, persisted[0].Total)
}

func TestSaveUpsertsByAppAndScorer(t *testing.T) {
	st, cleanup := testutil.TestStore(t)
	defer cleanup()
	engine := NewEngine(st, DefaultThreshold)
	ctx := context.Background()

	_, err := engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_01", Scores: fullScores(1)})
	require.NoError(t, err)

	// Same pair again replaces, never duplicates.
	rec, err := engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_01", Scores: fullScores(2), IsFinal: true})
	require.NoError(t, err)

	scores, err := engine.Scores(ctx)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, rec.Total, scores[0].Total)
	assert.True(t, scores[0].IsFinal)

	// A different scorer on the same application is a separate record.
	_, err = engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_02", Scores: fullScores(3)})
	require.NoError(t, err)

	scores, err = engine.Scores(ctx)
	require.NoError(t, err)
	assert.Len(t, scores, 2)
}

func TestDelete(t *testing.T) {
	st, cleanup := testutil.TestStore(t)
	defer cleanup()
	engine := NewEngine(st, DefaultThreshold)
	ctx := context.Background()

	_, err := engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_01", Scores: fullScores(2)})
	require.NoError(t, err)
	_, err = engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_02", Scores: fullScores(2)})
	require.NoError(t, err)

	require.NoError(t, engine.Delete(ctx, "a1", "comm_01"))

	scores, err := engine.ScoresFor(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, "comm_02", scores[0].ScorerID)

	// Unknown pairs are a no-op.
	require.NoError(t, engine.Delete(ctx, "a1", "comm_99"))
}

func TestAggregate(t *testing.T) {
	st, cleanup := testutil.TestStore(t)
	defer cleanup()
	engine := NewEngine(st, DefaultThreshold)
	ctx := context.Background()

	avg, count, err := engine.Aggregate(ctx, "a1")
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count, "no scores at all")

	// Two finalized scores and one draft: the draft is excluded.
	_, err = engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_01", Scores: fullScores(3), IsFinal: true})
	require.NoError(t, err)
	_, err = engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_02", Scores: fullScores(2), IsFinal: true})
	require.NoError(t, err)
	_, err = engine.Save(ctx, Draft{AppID: "a1", ScorerID: "comm_03", Scores: fullScores(0)})
	require.NoError(t, err)

	avg, count, err = engine.Aggregate(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	// (100 + 66.666...) / 2 = 83.333..., rounded to one decimal.
	assert.Equal(t, 83.3, avg)

	// Only drafts present: same as none.
	_, err = engine.Save(ctx, Draft{AppID: "a2", ScorerID: "comm_01", Scores: fullScores(3)})
	require.NoError(t, err)
	avg, count, err = engine.Aggregate(ctx, "a2")
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.Zero(t, count)
}

func TestEngineThresholdFallback(t *testing.T) {
	st, cleanup := testutil.TestStore(t)
	defer cleanup()

	engine := NewEngine(st, 0)
	assert.Equal(t, DefaultThreshold, engine.Threshold())
	assert.Equal(t, BandGreen, engine.Band(65))

	engine = NewEngine(st, 80)
	assert.Equal(t, BandAmber, engine.Band(65))
}
