package encoder

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-rl/internal/entity"
)

// permutation p maps a source index to its destination: dst[p[i]] = src[i].
type permutation []int

// Symmetric folds the 8 symmetries of the square (4 rotations, each with
// and without a reflection) onto the lexicographically smallest key.
type Symmetric struct {
	cache sync.Map // int -> []transform
}

type transform struct {
	forward permutation
	inverse permutation
}

func (that *Symmetric) Encode(board entity.Board, size int) Frame {
	if len(board) != size*size {
		return Direct{}.Encode(board, size)
	}

	var (
		best     Key
		bestT    transform
		scratch  = make(entity.Board, len(board))
		haveBest bool
	)

	for _, t := range that.transforms(size) {
		for i, cell := range board {
			scratch[t.forward[i]] = cell
		}

		candidate := key(scratch, size)
		if !haveBest || candidate < best {
			best, bestT, haveBest = candidate, t, true
		}
	}

	forward, inverse := bestT.forward, bestT.inverse

	return Frame{
		Key:     best,
		ToKey:   func(i int) int { return forward[i] },
		FromKey: func(i int) int { return inverse[i] },
	}
}

func (that *Symmetric) transforms(size int) []transform {
	if cached, ok := that.cache.Load(size); ok {
		return cached.([]transform) //nolint: forcetypeassert // only []transform is stored
	}

	transforms := make([]transform, 0, 8)
	rotation := identityPermutation(size)
	for range 4 {
		transforms = append(transforms,
			newTransform(rotation),
			newTransform(compose(rotation, reflect(size))),
		)
		rotation = compose(rotation, rotate90(size))
	}

	that.cache.Store(size, transforms)

	return transforms
}

func newTransform(forward permutation) transform {
	inverse := make(permutation, len(forward))
	for src, dst := range forward {
		inverse[dst] = src
	}

	return transform{forward: forward, inverse: inverse}
}

func identityPermutation(size int) permutation {
	p := make(permutation, size*size)
	for i := range p {
		p[i] = i
	}

	return p
}

// rotate90 moves (r, c) to (c, size-1-r).
func rotate90(size int) permutation {
	p := make(permutation, size*size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			p[r*size+c] = c*size + (size - 1 - r)
		}
	}

	return p
}

// reflect moves (r, c) to (r, size-1-c).
func reflect(size int) permutation {
	p := make(permutation, size*size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			p[r*size+c] = r*size + (size - 1 - c)
		}
	}

	return p
}

// compose applies first, then second.
func compose(first, second permutation) permutation {
	p := make(permutation, len(first))
	for i := range first {
		p[i] = second[first[i]]
	}

	return p
}
