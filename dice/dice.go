// Package dice implements spec.md §4.1: notation parsing and rolling
// behind a swappable RNG port, with no opinion about what a roll means
// (critical hits, advantage bands, etc. are the skills package's job).
package dice

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/xldeveloper/theinterneti-tta-solo/rpgerr"
)

// minDieValue/maxDieValue bound N and X in "NdX" per spec.md §4.1.
const (
	minDieValue = 1
	maxDieValue = 1000
)

// Roller is the RNG port (spec.md §6): roll n dice of the given number
// of sides and return the individual results. A Roller is stateless or
// per-session-seeded; it is never globally mutable (spec.md §5).
type Roller interface {
	Roll(ctx context.Context, n, sides int) ([]int, error)
}

// CryptoRoller is the default, cryptographically secure Roller.
type CryptoRoller struct{}

// NewCryptoRoller constructs the default secure roller.
func NewCryptoRoller() *CryptoRoller { return &CryptoRoller{} }

// Roll implements Roller using crypto/rand.
func (CryptoRoller) Roll(_ context.Context, n, sides int) ([]int, error) {
	if err := validateDie(n, sides); err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(sides)))
		if err != nil {
			return nil, rpgerr.Repo(err, "dice.crypto_roll")
		}
		out[i] = int(v.Int64()) + 1
	}
	return out, nil
}

// SeededRoller is a deterministic Roller for tests and reproducible
// seeds (spec.md §4.1, §8 "identical seeds and inputs").
type SeededRoller struct {
	rng *mrand.Rand
}

// NewSeededRoller constructs a deterministic roller from a fixed seed.
func NewSeededRoller(seed int64) *SeededRoller {
	return &SeededRoller{rng: mrand.New(mrand.NewSource(seed))}
}

// Roll implements Roller using the seeded PRNG.
func (s *SeededRoller) Roll(_ context.Context, n, sides int) ([]int, error) {
	if err := validateDie(n, sides); err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = s.rng.Intn(sides) + 1
	}
	return out, nil
}

// FixedRoller always returns a pre-scripted sequence of rolls, consumed
// one Roll() call at a time. It exists for scenario tests that assert
// on literal roll values (spec.md §8 end-to-end scenarios).
type FixedRoller struct {
	sequence [][]int
	next     int
}

// NewFixedRoller constructs a roller that replays the given sequence.
func NewFixedRoller(sequence [][]int) *FixedRoller {
	return &FixedRoller{sequence: sequence}
}

// Roll returns the next scripted result, ignoring n/sides validation
// beyond basic bounds so tests can script exact dice.
func (f *FixedRoller) Roll(_ context.Context, n, sides int) ([]int, error) {
	if err := validateDie(n, sides); err != nil {
		return nil, err
	}
	if f.next >= len(f.sequence) {
		return nil, rpgerr.BadInput("fixed roller exhausted its scripted sequence")
	}
	out := f.sequence[f.next]
	f.next++
	return out, nil
}

func validateDie(n, sides int) error {
	if n < minDieValue || n > maxDieValue {
		return rpgerr.BadInput(fmt.Sprintf("dice count %d out of range [%d,%d]", n, minDieValue, maxDieValue))
	}
	if sides < minDieValue || sides > maxDieValue {
		return rpgerr.BadInput(fmt.Sprintf("die size %d out of range [%d,%d]", sides, minDieValue, maxDieValue))
	}
	return nil
}

// Term is a single parsed dice or modifier term, e.g. "3d6", "+2",
// "2d20kh1". Sign carries the +/- that chains terms together.
type Term struct {
	Sign  int // +1 or -1
	Count int // 0 for a flat modifier term
	Sides int
	Keep  string // "h" (highest), "l" (lowest), or "" for none
	KeepN int
	Flat  int // used when Count == 0
}

// Pool is a parsed dice expression: an ordered list of terms.
type Pool struct {
	Notation string
	Terms    []Term
}

// Result is the outcome of rolling a Pool (spec.md §4.1 return shape).
type Result struct {
	Notation string
	Rolls    []int
	Kept     []int // nil when no keep-highest/lowest was applied
	Modifier int
	Total    int
}

var notationTermPattern = regexp.MustCompile(`^(\d+)d(\d+)(k([hl])(\d+))?$`)

// ParseNotation parses "NdX", "NdX+M", "NdX-M", "NdXkhK", "NdXklK", and
// chains of the same joined by + or - (spec.md §4.1).
func ParseNotation(notation string) (*Pool, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(notation), " ", "")
	if clean == "" {
		return nil, rpgerr.BadInput("empty dice notation")
	}

	// Split on + and - while keeping the sign with each term.
	signed := splitSigned(clean)
	pool := &Pool{Notation: notation}

	for _, st := range signed {
		term, err := parseTerm(st)
		if err != nil {
			return nil, err
		}
		pool.Terms = append(pool.Terms, term)
	}
	if len(pool.Terms) == 0 {
		return nil, rpgerr.BadInput(fmt.Sprintf("invalid dice notation %q", notation))
	}
	return pool, nil
}

// splitSigned splits a chained expression like "2d20kh1+3-1d4" into
// signed chunks ["+2d20kh1", "+3", "-1d4"].
func splitSigned(expr string) []string {
	var out []string
	start := 0
	sign := "+"
	for i := 0; i <= len(expr); i++ {
		if i == len(expr) || expr[i] == '+' || expr[i] == '-' {
			if i > start {
				out = append(out, sign+expr[start:i])
			}
			if i < len(expr) {
				sign = string(expr[i])
				start = i + 1
			}
		}
	}
	return out
}

func parseTerm(signed string) (Term, error) {
	sign := 1
	body := signed
	if strings.HasPrefix(signed, "+") {
		body = signed[1:]
	} else if strings.HasPrefix(signed, "-") {
		sign = -1
		body = signed[1:]
	}

	if !strings.Contains(body, "d") {
		flat, err := strconv.Atoi(body)
		if err != nil {
			return Term{}, rpgerr.BadInput(fmt.Sprintf("invalid modifier term %q", signed))
		}
		return Term{Sign: sign, Flat: flat}, nil
	}

	m := notationTermPattern.FindStringSubmatch(body)
	if m == nil {
		return Term{}, rpgerr.BadInput(fmt.Sprintf("invalid dice term %q", signed))
	}
	count, _ := strconv.Atoi(m[1])
	sides, _ := strconv.Atoi(m[2])
	if err := validateDie(count, sides); err != nil {
		return Term{}, err
	}
	term := Term{Sign: sign, Count: count, Sides: sides}
	if m[3] != "" {
		term.Keep = m[4]
		keepN, _ := strconv.Atoi(m[5])
		if keepN < 1 || keepN > count {
			return Term{}, rpgerr.BadInput(fmt.Sprintf("keep count %d out of range for %dd%d", keepN, count, sides))
		}
		term.KeepN = keepN
	}
	return term, nil
}

// Roll evaluates the pool with the given Roller.
func (p *Pool) Roll(ctx context.Context, roller Roller) (*Result, error) {
	if roller == nil {
		return nil, rpgerr.BadInput("nil roller")
	}
	result := &Result{Notation: p.Notation}

	for _, term := range p.Terms {
		if term.Count == 0 {
			result.Modifier += term.Sign * term.Flat
			continue
		}
		rolls, err := roller.Roll(ctx, term.Count, term.Sides)
		if err != nil {
			return nil, err
		}
		result.Rolls = append(result.Rolls, rolls...)

		kept := rolls
		if term.Keep != "" {
			kept = keepN(rolls, term.Keep, term.KeepN)
			result.Kept = append(result.Kept, kept...)
		}
		for _, v := range kept {
			result.Total += term.Sign * v
		}
	}
	result.Total += result.Modifier
	return result, nil
}

func keepN(rolls []int, mode string, n int) []int {
	sorted := append([]int(nil), rolls...)
	// simple insertion sort: dice pools are small (<=1000, usually <10)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	if mode == "h" {
		return sorted[len(sorted)-n:]
	}
	return sorted[:n]
}

// Roll is a convenience that parses and rolls in one call.
func Roll(ctx context.Context, notation string, roller Roller) (*Result, error) {
	pool, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	return pool.Roll(ctx, roller)
}
