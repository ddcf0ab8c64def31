package availability

import (
	"context"
	"fmt"
)

// OverlapFinder is the read side of the reservation store the checker needs.
type OverlapFinder interface {
	HasOverlap(ctx context.Context, roomID int, start, end string) (bool, error)
}

type Checker struct {
	store OverlapFinder
}

func NewChecker(store OverlapFinder) *Checker {
	return &Checker{store: store}
}

// IsAvailable reports whether no stored reservation for roomID overlaps the
// closed range [start, end]. It only reads; nothing is held between this call
// and a later write.
func (c *Checker) IsAvailable(ctx context.Context, roomID int, start, end string) (bool, error) {
	taken, err := c.store.HasOverlap(ctx, roomID, start, end)
	if err != nil {
		return false, fmt.Errorf("check room %d availability: %w", roomID, err)
	}
	return !taken, nil
}
