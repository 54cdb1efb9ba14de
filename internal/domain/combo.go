package domain

// ComboType classifies a played set of cards.
type ComboType string

const (
	ComboUnknown       ComboType = "unknown"
	ComboSingle        ComboType = "single"
	ComboPair          ComboType = "pair"
	ComboTriple        ComboType = "triple"
	ComboStraight      ComboType = "straight"
	ComboFlush         ComboType = "flush"
	ComboFullHouse     ComboType = "full_house"
	ComboFourOfAKind   ComboType = "four_of_a_kind"
	ComboStraightFlush ComboType = "straight_flush"
)

// Combo is a classified card set in canonical order. Rank is the power of the
// canonical order's final card, which is always the card that decides
// same-category comparisons.
type Combo struct {
	Type  ComboType `json:"type"`
	Cards []Card    `json:"cards"`
	Rank  int32     `json:"rank"`
}

// Five-card categories in ascending strength. A higher category answers any
// lower one.
var fiveCardOrder = map[ComboType]int32{
	ComboStraight:      0,
	ComboFlush:         1,
	ComboFullHouse:     2,
	ComboFourOfAKind:   3,
	ComboStraightFlush: 4,
}

// Classify identifies the combination formed by the given cards. It never
// fails: any shape that is not a legal combination comes back as
// ComboUnknown. The input is not modified; permutations of the same set
// yield identical results.
func Classify(cards []Card) Combo {
	sorted := make([]Card, len(cards))
	copy(sorted, cards)
	SortCards(sorted)

	for _, c := range sorted {
		if !ValidCard(c) {
			return Combo{Type: ComboUnknown}
		}
	}

	switch len(sorted) {
	case 1:
		return Combo{Type: ComboSingle, Cards: sorted, Rank: CardPower(sorted[0])}
	case 2:
		if allSameRank(sorted) {
			return Combo{Type: ComboPair, Cards: sorted, Rank: CardPower(sorted[1])}
		}
	case 3:
		if allSameRank(sorted) {
			return Combo{Type: ComboTriple, Cards: sorted, Rank: CardPower(sorted[2])}
		}
	case 5:
		return classifyFive(sorted)
	}
	return Combo{Type: ComboUnknown}
}

// Beats reports whether next answers prev. Singles, pairs and triples are
// answered only by a stronger combo of the same type. The five-card
// categories answer each other: a higher category beats any lower one, and
// within a category the canonical rank decides.
func Beats(prev, next Combo) bool {
	po, prevFive := fiveCardOrder[prev.Type]
	no, nextFive := fiveCardOrder[next.Type]
	if prevFive && nextFive {
		if no != po {
			return no > po
		}
		return next.Rank > prev.Rank
	}
	if prev.Type == ComboUnknown || next.Type == ComboUnknown {
		return false
	}
	return next.Type == prev.Type && next.Rank > prev.Rank
}

func classifyFive(cards []Card) Combo {
	straight := isStraight(cards)
	flush := allSameSuit(cards)
	switch {
	case straight && flush:
		return Combo{Type: ComboStraightFlush, Cards: cards, Rank: CardPower(cards[4])}
	case flush:
		return Combo{Type: ComboFlush, Cards: cards, Rank: CardPower(cards[4])}
	case straight:
		return Combo{Type: ComboStraight, Cards: cards, Rank: CardPower(cards[4])}
	}

	// Grouped shapes: full house (3+2) and four of a kind (4+1). Canonical
	// order puts the minor group first so the final card always belongs to
	// the group that decides comparisons.
	byRank := make(map[int32][]Card, 2)
	for _, c := range cards {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	if len(byRank) != 2 {
		return Combo{Type: ComboUnknown}
	}

	var major, minor []Card
	for _, group := range byRank {
		if len(group) > len(major) {
			major, minor = group, major
		} else {
			minor = group
		}
	}

	canonical := append(append(make([]Card, 0, 5), minor...), major...)
	rank := CardPower(major[len(major)-1])
	switch len(major) {
	case 3:
		return Combo{Type: ComboFullHouse, Cards: canonical, Rank: rank}
	case 4:
		return Combo{Type: ComboFourOfAKind, Cards: canonical, Rank: rank}
	}
	return Combo{Type: ComboUnknown}
}

func allSameRank(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	r := cards[0].Rank
	for _, c := range cards {
		if c.Rank != r {
			return false
		}
	}
	return true
}

func allSameSuit(cards []Card) bool {
	if len(cards) == 0 {
		return false
	}
	s := cards[0].Suit
	for _, c := range cards {
		if c.Suit != s {
			return false
		}
	}
	return true
}

// isStraight expects cards sorted by power. Ranks must be consecutive with no
// duplicates, and the two (rank 12) never sits in a straight.
func isStraight(cards []Card) bool {
	for i, c := range cards {
		if c.Rank == RankTwo {
			return false
		}
		if i > 0 && c.Rank != cards[i-1].Rank+1 {
			return false
		}
	}
	return true
}
