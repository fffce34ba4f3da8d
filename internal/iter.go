package internal

import (
	"iter"
)

// MergeDefines concatenates define sequences. When a name repeats, only
// its first definition is yielded.
func MergeDefines(seqs ...iter.Seq2[string, string]) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		seen := map[string]bool{}
		for _, seq := range seqs {
			for name, value := range seq {
				if seen[name] {
					continue
				}
				seen[name] = true
				if !yield(name, value) {
					return // Stop if the consumer stops
				}
			}
		}
	}
}
