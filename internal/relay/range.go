package relay

import "fmt"

// NextRange computes the next inclusive scan window after checkpoint,
// clamped by the chain head and the configured window size. Ranges
// produced across successive checkpoints are contiguous and
// non-overlapping.
func NextRange(checkpoint, head, window uint64) (uint64, uint64, error) {
	if window == 0 {
		return 0, 0, fmt.Errorf("window must be greater than zero")
	}
	if head <= checkpoint {
		return 0, 0, fmt.Errorf("head %d is not past checkpoint %d", head, checkpoint)
	}

	from := checkpoint + 1
	to := from + window - 1
	if to > head {
		to = head
	}
	return from, to, nil
}
