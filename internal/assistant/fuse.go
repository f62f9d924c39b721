package assistant

import "sort"

// Fuse merges the semantic retrieval legs into one ranked list: note hits,
// task hits, then date-anchored tasks, stably sorted by score descending and
// truncated to limit. The stable sort preserves each leg's internal order
// among equal scores, so exact date hits (score 1.0) rank ahead of every
// semantic hit.
func Fuse(notes, tasks, dated []Result, limit int) []Result {
	merged := make([]Result, 0, len(notes)+len(tasks)+len(dated))
	merged = append(merged, notes...)
	merged = append(merged, tasks...)
	merged = append(merged, dated...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// SplitByKind partitions a ranked list into notes and tasks, preserving the
// ranked order within each partition.
func SplitByKind(results []Result) (notes, tasks []Result) {
	for _, r := range results {
		switch r.Kind {
		case KindNote:
			notes = append(notes, r)
		case KindTask:
			tasks = append(tasks, r)
		}
	}
	return notes, tasks
}
