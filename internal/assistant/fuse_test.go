package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(id string, score float64) Result {
	return Result{Kind: KindNote, ID: id, Title: id, Score: score}
}

func task(id string, score float64) Result {
	return Result{Kind: KindTask, ID: id, Title: id, Score: score}
}

func ids(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestFuseRanksByScoreDescending(t *testing.T) {
	notes := []Result{note("n1", 0.9), note("n2", 0.4)}
	tasks := []Result{task("t1", 0.7)}
	dated := []Result{task("d1", 1.0)}

	ranked := Fuse(notes, tasks, dated, 10)
	assert.Equal(t, []string{"d1", "n1", "t1", "n2"}, ids(ranked))
}

func TestFuseIsStableOnTies(t *testing.T) {
	// Equal scores keep merge order: notes, tasks, dated.
	notes := []Result{note("n1", 0.5), note("n2", 0.5)}
	tasks := []Result{task("t1", 0.5)}
	dated := []Result{task("d1", 0.5)}

	ranked := Fuse(notes, tasks, dated, 10)
	assert.Equal(t, []string{"n1", "n2", "t1", "d1"}, ids(ranked))
}

func TestFuseTruncates(t *testing.T) {
	var notes, tasks []Result
	for i := 0; i < 8; i++ {
		notes = append(notes, note(string(rune('a'+i)), float64(8-i)/10))
		tasks = append(tasks, task(string(rune('p'+i)), float64(8-i)/20))
	}

	ranked := Fuse(notes, tasks, nil, 10)
	require.Len(t, ranked, 10)
	// Best overall first.
	assert.Equal(t, "a", ranked[0].ID)
}

func TestFuseMissingScoreSortsLast(t *testing.T) {
	notes := []Result{{Kind: KindNote, ID: "unscored"}}
	tasks := []Result{task("t1", 0.1)}

	ranked := Fuse(notes, tasks, nil, 10)
	assert.Equal(t, []string{"t1", "unscored"}, ids(ranked))
}

func TestFuseEmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil, nil, 10))
}

func TestSplitByKindPreservesOrder(t *testing.T) {
	ranked := []Result{task("t1", 0.9), note("n1", 0.8), task("t2", 0.7), note("n2", 0.6)}

	notes, tasks := SplitByKind(ranked)
	assert.Equal(t, []string{"n1", "n2"}, ids(notes))
	assert.Equal(t, []string{"t1", "t2"}, ids(tasks))
}
