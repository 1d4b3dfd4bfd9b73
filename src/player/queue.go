package player

import (
	"math/rand"
	"sync"
)

// RepeatMode controls what happens when navigation reaches the edge of the
// queue and what a naturally ending track is followed by.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// NamedRepeatMode maps a string onto a repeat mode. Unknown names map to
// RepeatOff.
func NamedRepeatMode(str string) RepeatMode {
	switch str {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}

// A Queue is the ordered collection of queue ids eligible for playback.
//
// Only ids are stored, never resolved tracks. This keeps the queue cheap to
// copy and shuffle and defers resolution to the moment a track is actually
// needed.
//
// When shuffle is on, a permutation of the id sequence is kept alongside it.
// The permutation always holds exactly the same ids as the base sequence.
// The active id is not required to be a member of either; a dangling active
// id is a recoverable state, not corruption.
type Queue struct {
	mu       sync.Mutex
	ids      []string
	shuffled []string // non-nil iff shuffle is on
	activeID string
	repeat   RepeatMode
}

func NewQueue() *Queue {
	return &Queue{repeat: RepeatOff}
}

// Seed replaces the entire queue with a new listening context. The shuffled
// permutation, if shuffle is on, is regenerated from scratch.
func (q *Queue) Seed(ids []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append([]string{}, ids...)
	if q.shuffled != nil {
		q.shuffled = shuffleIDs(q.ids)
	}
}

// SetActive marks the id as the one being played. Membership of the queue is
// deliberately not validated.
func (q *Queue) SetActive(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.activeID = id
}

func (q *Queue) ActiveID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.activeID
}

// SetShuffle turns shuffling on or off. Turning it on generates a fresh
// unbiased permutation of the current ids; turning it off discards the
// permutation.
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if on {
		q.shuffled = shuffleIDs(q.ids)
	} else {
		q.shuffled = nil
	}
}

// ToggleShuffle flips the shuffle flag and returns the new state.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shuffled == nil {
		q.shuffled = shuffleIDs(q.ids)
		return true
	}
	q.shuffled = nil
	return false
}

func (q *Queue) Shuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shuffled != nil
}

// CycleRepeat advances off -> all -> one -> off and returns the new mode.
func (q *Queue) CycleRepeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.repeat {
	case RepeatOff:
		q.repeat = RepeatAll
	case RepeatAll:
		q.repeat = RepeatOne
	default:
		q.repeat = RepeatOff
	}
	return q.repeat
}

func (q *Queue) Repeat() RepeatMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.repeat
}

// Append adds ids to the end of the queue. If shuffle is on the ids go to
// the end of the permutation as well; they are not interleaved into the part
// that was already shuffled.
func (q *Queue) Append(ids ...string) {
	if len(ids) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, ids...)
	if q.shuffled != nil {
		q.shuffled = append(q.shuffled, ids...)
	}
}

// InsertAfterActive inserts ids directly after the active id's position in
// the order currently in effect. With shuffle on, the permutation is mutated
// and the ids are additionally appended to the base sequence so that they
// survive shuffle being turned off, albeit at the end rather than next.
//
// Without an active position the ids are inserted at the front.
func (q *Queue) InsertAfterActive(ids ...string) {
	if len(ids) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	order := q.ids
	if q.shuffled != nil {
		order = q.shuffled
	}
	insertAt := 0
	if i := indexOf(order, q.activeID); i >= 0 {
		insertAt = i + 1
	}
	inserted := make([]string, 0, len(order)+len(ids))
	inserted = append(inserted, order[:insertAt]...)
	inserted = append(inserted, ids...)
	inserted = append(inserted, order[insertAt:]...)

	if q.shuffled != nil {
		q.shuffled = inserted
		q.ids = append(q.ids, ids...)
	} else {
		q.ids = inserted
	}
}

// Remove deletes every occurrence of the id from the queue. The active id is
// left untouched even if it is the one removed; deciding what to play then
// is the caller's problem.
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = withoutID(q.ids, id)
	if q.shuffled != nil {
		q.shuffled = withoutID(q.shuffled, id)
	}
}

// Order returns a copy of the order currently in effect: the shuffled
// permutation if shuffle is on and non-empty, the base sequence otherwise.
func (q *Queue) Order() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string{}, q.order()...)
}

func (q *Queue) order() []string {
	if len(q.shuffled) > 0 {
		return q.shuffled
	}
	return q.ids
}

// Next moves the active id one position forward in the effective order and
// reports whether it moved. At the end of the order it wraps to the start
// only under repeat-all. An active id that is not part of the order is a
// no-op.
func (q *Queue) Next() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	order := q.order()
	i := indexOf(order, q.activeID)
	if i < 0 {
		return false
	}
	if i+1 >= len(order) {
		if q.repeat != RepeatAll {
			return false
		}
		q.activeID = order[0]
		return true
	}
	q.activeID = order[i+1]
	return true
}

// Previous is the mirror image of Next.
func (q *Queue) Previous() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	order := q.order()
	i := indexOf(order, q.activeID)
	if i < 0 {
		return false
	}
	if i == 0 {
		if q.repeat != RepeatAll {
			return false
		}
		q.activeID = order[len(order)-1]
		return true
	}
	q.activeID = order[i-1]
	return true
}

// Reset empties the queue and clears all modes, as on logout.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = nil
	q.shuffled = nil
	q.activeID = ""
	q.repeat = RepeatOff
}

func shuffleIDs(ids []string) []string {
	shuffled := append([]string{}, ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func indexOf(ids []string, id string) int {
	if id == "" {
		return -1
	}
	for i, other := range ids {
		if other == id {
			return i
		}
	}
	return -1
}

func withoutID(ids []string, id string) []string {
	out := ids[:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}
