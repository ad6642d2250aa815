package wordle

type Medal int

const (
	Gold Medal = iota
	Silver
	Bronze
)

const medalTiers = 3

// Podium is every entry sharing one value, placed under one medal.
type Podium[T any] struct {
	Medal   Medal
	Value   float64
	Entries []T
}

// AssignMedals places entries on at most three podiums. Entries tied on a
// value share the podium, and the next medal goes to the next distinct value.
// Entries for which value reports false never qualify. Higher is better
// unless lowerWins is set.
func AssignMedals[T any](entries []T, value func(T) (float64, bool), lowerWins bool) []Podium[T] {
	type candidate struct {
		entry T
		value float64
	}

	pool := make([]candidate, 0, len(entries))
	for _, e := range entries {
		if v, ok := value(e); ok {
			pool = append(pool, candidate{entry: e, value: v})
		}
	}

	var podiums []Podium[T]
	for medal := Gold; medal < medalTiers && len(pool) > 0; medal++ {
		best := pool[0].value
		for _, c := range pool[1:] {
			if lowerWins && c.value < best || !lowerWins && c.value > best {
				best = c.value
			}
		}

		p := Podium[T]{Medal: medal, Value: best}
		rest := pool[:0]
		for _, c := range pool {
			if c.value == best {
				p.Entries = append(p.Entries, c.entry)
				continue
			}
			rest = append(rest, c)
		}
		pool = rest
		podiums = append(podiums, p)
	}

	return podiums
}
