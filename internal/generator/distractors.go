package generator

import (
	"errors"
	"math/rand"
)

// ErrNotEnoughDistractors is returned when the offset palette cannot supply
// the requested number of wrong answers.
var ErrNotEnoughDistractors = errors.New("not enough distractors for answer")

// distractorOffsets are applied to the correct answer to build plausible
// wrong answers.
var distractorOffsets = []int{-3, -2, -1, 1, 2, 3, -5, 5, -10, 10}

// distractors returns count distinct positive integers different from
// correct. Every offset is tried at most once, in random order.
func distractors(rnd *rand.Rand, correct, count int) ([]int, error) {
	wrong := make([]int, 0, count)
	for _, i := range rnd.Perm(len(distractorOffsets)) {
		if len(wrong) == count {
			break
		}
		candidate := correct + distractorOffsets[i]
		if candidate <= 0 || candidate == correct || contains(wrong, candidate) {
			continue
		}
		wrong = append(wrong, candidate)
	}
	if len(wrong) < count {
		return wrong, ErrNotEnoughDistractors
	}
	return wrong, nil
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
