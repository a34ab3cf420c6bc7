// Package jobs is the thin orchestrator kept separate from the fusion engine proper:
// given the high-res pair dates a caller actually has on disk and a list of target
// dates to predict, it groups targets under the pair (or pair-bracket) that would
// feed them and picks STARFM/FitFC vs. STAARCH per job. It holds no state and
// performs no I/O or scheduling; no other package of this module imports it.
package jobs

import "sort"

// Algorithm names which driver a Job should be handed to.
type Algorithm int

const (
	// STARFMAlgorithm covers both single- and double-pair STARFM/FitFC jobs.
	STARFMAlgorithm Algorithm = iota
	// STAARCHAlgorithm is picked for intervals wide enough to plausibly contain an
	// undetected land-cover disturbance (Split's disturbanceWindow parameter).
	STAARCHAlgorithm
)

func (a Algorithm) String() string {
	if a == STAARCHAlgorithm {
		return "staarch"
	}
	return "starfm"
}

// Job groups the target dates predictable from one pair bracket. HasRight is false
// when targets fall after the last available pair date (single-pair extrapolation
// forward) and HasLeft is false when they fall before the first (single-pair
// extrapolation backward); PairLeft/PairRight are 0 whenever their Has flag is false.
type Job struct {
	HasLeft, HasRight bool
	PairLeft          int64
	PairRight         int64
	Targets           []int64
	Algorithm         Algorithm
}

// Split partitions targets among the bracketing intervals of pairDates (deduplicated,
// need not be pre-sorted) and tags each double-bracketed interval STAARCH when its
// span exceeds disturbanceWindow; single-bracketed (extrapolating) jobs are always
// STARFM, since STAARCH requires both ends of an interval. disturbanceWindow <= 0
// disables STAARCH tagging entirely (every job is STARFM).
func Split(pairDates, targets []int64, disturbanceWindow int64) []Job {
	pairs := dedupSorted(pairDates)
	if len(pairs) == 0 || len(targets) == 0 {
		return nil
	}

	type bracket struct {
		hasLeft, hasRight bool
		left, right       int64
	}
	byBracket := map[bracket][]int64{}

	for _, t := range targets {
		i := sort.Search(len(pairs), func(i int) bool { return pairs[i] > t })
		// pairs[:i] are <= t, pairs[i:] are > t.
		var b bracket
		if i > 0 {
			b.hasLeft, b.left = true, pairs[i-1]
		}
		if i < len(pairs) {
			b.hasRight, b.right = true, pairs[i]
		}
		byBracket[b] = append(byBracket[b], t)
	}

	jobs := make([]Job, 0, len(byBracket))
	for b, ts := range byBracket {
		sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
		algo := STARFMAlgorithm
		if b.hasLeft && b.hasRight && disturbanceWindow > 0 && b.right-b.left > disturbanceWindow {
			algo = STAARCHAlgorithm
		}
		jobs = append(jobs, Job{
			HasLeft: b.hasLeft, PairLeft: b.left,
			HasRight: b.hasRight, PairRight: b.right,
			Targets: ts, Algorithm: algo,
		})
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].HasLeft != jobs[j].HasLeft {
			return jobs[j].HasLeft // job without a left bound (extrapolating backward) sorts first
		}
		return jobs[i].PairLeft < jobs[j].PairLeft
	})
	return jobs
}

func dedupSorted(dates []int64) []int64 {
	if len(dates) == 0 {
		return nil
	}
	sorted := append([]int64(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}
