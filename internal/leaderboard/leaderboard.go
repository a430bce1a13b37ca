// internal/leaderboard/leaderboard.go
//
// Ranked view over player records.
//
// Ordering (A ranks above B):
//   - A.TotalWins > B.TotalWins, or
//   - equal wins and A.WeightedGuesses() < B.WeightedGuesses().
// Records equal on both keys keep their relative order.
//
// During play the board moves only one record per win (RepositionAfterWin);
// a full sort happens only when rebuilding from storage at startup.
// The board holds pointers owned by the account map; it never copies records.

package leaderboard

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/robalobadob/wordle/apps/engine/internal/player"
)

// Entry is one row of a leaderboard snapshot.
type Entry struct {
	Rank            int     `json:"rank"`
	Username        string  `json:"username"`
	TotalWins       int     `json:"totalWins"`
	WeightedGuesses float64 `json:"weightedGuesses"`
}

// Board is the ordered list of records. Not safe for concurrent use.
type Board struct {
	records []*player.Record
}

// New returns an empty board.
func New() *Board { return &Board{} }

// RanksAbove reports whether a strictly outranks b.
func RanksAbove(a, b *player.Record) bool {
	if a.TotalWins != b.TotalWins {
		return a.TotalWins > b.TotalWins
	}
	return a.WeightedGuesses() < b.WeightedGuesses()
}

// compare is RanksAbove as a three-way comparison for sorting.
func compare(a, b *player.Record) int {
	switch {
	case RanksAbove(a, b):
		return -1
	case RanksAbove(b, a):
		return 1
	}
	return 0
}

// Add appends a record at the bottom. New accounts have no wins, so the bottom is
// always a valid position for them.
func (b *Board) Add(rec *player.Record) {
	b.records = append(b.records, rec)
}

// Remove drops the record with the given username. It reports whether one was found.
func (b *Board) Remove(username string) bool {
	i := b.indexOf(username)
	if i < 0 {
		return false
	}
	b.records = slices.Delete(b.records, i, i+1)
	return true
}

// RepositionAfterWin moves rec toward rank 1 after its ranking key improved.
// The walk swaps with each predecessor that rec strictly outranks and stops at the
// first predecessor that is better or equal, so ties never move. It reports the new index,
// or -1 when rec is not on the board.
func (b *Board) RepositionAfterWin(rec *player.Record) int {
	i := slices.Index(b.records, rec)
	if i < 0 {
		return -1
	}
	for i > 0 && RanksAbove(rec, b.records[i-1]) {
		b.records[i], b.records[i-1] = b.records[i-1], b.records[i]
		i--
	}
	return i
}

// Rebuild replaces the board with records in full comparator order.
// Input is pre-ordered by username so equal keys land deterministically.
func (b *Board) Rebuild(records []*player.Record) {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(x, y *player.Record) int { return strings.Compare(x.Username, y.Username) })
	slices.SortStableFunc(sorted, compare)
	b.records = sorted
}

// Len is the number of ranked records.
func (b *Board) Len() int { return len(b.records) }

// Rank returns the 1-based rank of username, or 0 when absent.
func (b *Board) Rank(username string) int {
	return b.indexOf(username) + 1
}

// Records returns the ranked records. The slice is a copy; the records are shared.
func (b *Board) Records() []*player.Record {
	return slices.Clone(b.records)
}

// Snapshot returns the ordered (rank, username, wins) view.
func (b *Board) Snapshot() []Entry {
	return lo.Map(b.records, func(r *player.Record, i int) Entry {
		return Entry{
			Rank:            i + 1,
			Username:        r.Username,
			TotalWins:       r.TotalWins,
			WeightedGuesses: r.WeightedGuesses(),
		}
	})
}

// Top returns at most n leading entries.
func (b *Board) Top(n int) []Entry {
	s := b.Snapshot()
	if n >= 0 && n < len(s) {
		return s[:n]
	}
	return s
}

func (b *Board) indexOf(username string) int {
	_, i, ok := lo.FindIndexOf(b.records, func(r *player.Record) bool { return r.Username == username })
	if !ok {
		return -1
	}
	return i
}
