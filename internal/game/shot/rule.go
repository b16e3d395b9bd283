// shot/rule.go
package shot

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Outcome is the result of comparing two shots. The values follow the
// usual comparator convention so callers can switch on the sign.
type Outcome int

const (
	AWins Outcome = 1
	BWins Outcome = -1
	Tie   Outcome = 0
)

func (o Outcome) String() string {
	switch o {
	case AWins:
		return "a_wins"
	case BWins:
		return "b_wins"
	default:
		return "tie"
	}
}

// MarshalText writes the outcome by name so JSON and logs agree.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "a_wins":
		*o = AWins
	case "b_wins":
		*o = BWins
	case "tie":
		*o = Tie
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// defaultBeats is the reference table. The key beats every shot in its value.
var defaultBeats = []struct {
	shot  Shot
	beats []Shot
}{
	{Drive, []Shot{Dink, Drop}},
	{Lob, []Shot{Drive, Drop}},
	{Dink, []Shot{Drop, Lob}},
	{Drop, []Shot{Drive, Smash}},
	{Smash, []Shot{Dink, Lob}},
}

// Rules is an immutable beats relation. It is safe for concurrent use.
type Rules struct {
	order []Shot
	beats map[Shot]map[Shot]struct{}
}

// DefaultRules returns the reference drive/lob/dink/drop/smash table.
func DefaultRules() *Rules {
	order := make([]Shot, 0, len(defaultBeats))
	table := make(map[Shot][]Shot, len(defaultBeats))
	for _, row := range defaultBeats {
		order = append(order, row.shot)
		table[row.shot] = row.beats
	}
	r, err := newRules(order, table)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRules builds a relation from a shot → beaten-shots table. Shot order in
// listings is alphabetical. Every beaten shot must itself be a key.
func NewRules(table map[Shot][]Shot) (*Rules, error) {
	order := make([]Shot, 0, len(table))
	for s := range table {
		order = append(order, s)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	return newRules(order, table)
}

func newRules(order []Shot, table map[Shot][]Shot) (*Rules, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}
	r := &Rules{
		order: make([]Shot, 0, len(order)),
		beats: make(map[Shot]map[Shot]struct{}, len(order)),
	}
	for _, s := range order {
		n := normalize(string(s))
		if n == "" {
			return nil, fmt.Errorf("rule table contains an empty shot name")
		}
		if _, dup := r.beats[n]; dup {
			return nil, fmt.Errorf("shot %q is defined twice", n)
		}
		r.order = append(r.order, n)
		r.beats[n] = make(map[Shot]struct{})
	}
	for _, s := range order {
		n := normalize(string(s))
		for _, beaten := range table[s] {
			b := normalize(string(beaten))
			if _, ok := r.beats[b]; !ok {
				return nil, fmt.Errorf("shot %q beats unknown shot %q", n, b)
			}
			if b == n {
				return nil, fmt.Errorf("shot %q cannot beat itself", n)
			}
			r.beats[n][b] = struct{}{}
		}
	}
	return r, nil
}

// LoadRules reads a JSON object of the form {"drive": ["dink", "drop"], ...}.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule table: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule table: %w", err)
	}
	table := make(map[Shot][]Shot, len(raw))
	for s, beats := range raw {
		row := make([]Shot, len(beats))
		for i, b := range beats {
			row[i] = Shot(b)
		}
		table[Shot(s)] = row
	}
	return NewRules(table)
}

// Resolve compares shot a (player A) against shot b (player B).
// Pairs with no relation either way are a tie.
func (r *Rules) Resolve(a, b Shot) Outcome {
	if a == b {
		return Tie
	}
	if _, ok := r.beats[a][b]; ok {
		return AWins
	}
	if _, ok := r.beats[b][a]; ok {
		return BWins
	}
	return Tie
}

// Parse validates raw player input against the table.
func (r *Rules) Parse(raw string) (Shot, error) {
	s := normalize(raw)
	if !r.Valid(s) {
		return "", invalidShotError(raw, r.order)
	}
	return s, nil
}

func (r *Rules) Valid(s Shot) bool {
	_, ok := r.beats[s]
	return ok
}

// Shots lists the valid shots in table order.
func (r *Rules) Shots() []Shot {
	return append([]Shot(nil), r.order...)
}

// Beats lists what s defeats, in table order.
func (r *Rules) Beats(s Shot) []Shot {
	row, ok := r.beats[s]
	if !ok {
		return nil
	}
	out := make([]Shot, 0, len(row))
	for _, candidate := range r.order {
		if _, ok := row[candidate]; ok {
			out = append(out, candidate)
		}
	}
	return out
}

// Table returns a copy of the relation keyed by shot name, handy for JSON.
func (r *Rules) Table() map[string][]string {
	out := make(map[string][]string, len(r.order))
	for _, s := range r.order {
		beaten := r.Beats(s)
		names := make([]string, len(beaten))
		for i, b := range beaten {
			names[i] = string(b)
		}
		out[string(s)] = names
	}
	return out
}
