package bot

import (
	"bigtwo/internal/domain"
)

// ChooseMove picks the cards a bot seat plays, or nil to pass. The strategy
// is conservative: lead with the lowest single, answer with the cheapest
// candidate that beats the table, pass when none exists. A lead is always
// produced for a non-empty hand, so a bot never stalls a clear table.
func ChooseMove(hand []domain.Card, table *domain.Combo) []domain.Card {
	if len(hand) == 0 {
		return nil
	}
	sorted := make([]domain.Card, len(hand))
	copy(sorted, hand)
	domain.SortCards(sorted)

	if table == nil || table.Type == domain.ComboUnknown {
		return []domain.Card{sorted[0]}
	}

	for _, candidate := range candidates(sorted, table.Type) {
		if domain.Beats(*table, domain.Classify(candidate)) {
			return candidate
		}
	}
	return nil
}

// candidates enumerates possible answers in ascending strength. The input
// must be sorted by power.
func candidates(sorted []domain.Card, t domain.ComboType) [][]domain.Card {
	switch t {
	case domain.ComboSingle:
		out := make([][]domain.Card, 0, len(sorted))
		for _, c := range sorted {
			out = append(out, []domain.Card{c})
		}
		return out
	case domain.ComboPair:
		return rankGroups(sorted, 2)
	case domain.ComboTriple:
		return rankGroups(sorted, 3)
	case domain.ComboStraight, domain.ComboFlush, domain.ComboFullHouse,
		domain.ComboFourOfAKind, domain.ComboStraightFlush:
		// Straights answer the weakest tables; a four of a kind outranks
		// everything below a straight flush. Flush and full house answers
		// are not searched, so the bot passes on tables only those could
		// answer.
		return append(straightRuns(sorted), quadCombos(sorted)...)
	}
	return nil
}

// rankGroups returns the lowest n cards of every rank held at least n times.
func rankGroups(sorted []domain.Card, n int) [][]domain.Card {
	var out [][]domain.Card
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Rank == sorted[i].Rank {
			j++
		}
		if j-i >= n {
			group := make([]domain.Card, n)
			copy(group, sorted[i:i+n])
			out = append(out, group)
		}
		i = j
	}
	return out
}

// straightRuns returns one five-card straight per viable start rank, using
// the lowest card of each rank.
func straightRuns(sorted []domain.Card) [][]domain.Card {
	lowestByRank := make(map[int32]domain.Card, 13)
	for i := len(sorted) - 1; i >= 0; i-- {
		lowestByRank[sorted[i].Rank] = sorted[i]
	}

	var out [][]domain.Card
	for start := int32(0); start+4 < domain.RankTwo; start++ {
		run := make([]domain.Card, 0, 5)
		for r := start; r <= start+4; r++ {
			c, ok := lowestByRank[r]
			if !ok {
				break
			}
			run = append(run, c)
		}
		if len(run) == 5 {
			out = append(out, run)
		}
	}
	return out
}

// quadCombos returns four of a kind plus the lowest spare card as kicker.
func quadCombos(sorted []domain.Card) [][]domain.Card {
	var out [][]domain.Card
	for _, quad := range rankGroups(sorted, 4) {
		for _, c := range sorted {
			if c.Rank != quad[0].Rank {
				out = append(out, append(append([]domain.Card{}, quad...), c))
				break
			}
		}
	}
	return out
}
