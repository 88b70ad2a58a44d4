package util

import "math/rand/v2"

// PickRandom returns a uniformly chosen element of ids, or nil when ids is empty.
func PickRandom(ids []uint) *uint {
	if len(ids) == 0 {
		return nil
	}
	id := ids[rand.IntN(len(ids))]
	return &id
}
