package dispenseid

import (
	"fmt"
	"math/rand"
	"regexp"
	"sync"

	"github.com/pharmadesk/pharmadesk/internal/clock"
)

// Pattern matches every identifier this generator produces.
var Pattern = regexp.MustCompile(`^DISP-\d{4}-\d{4}$`)

// Generator produces dispense identifiers of the form DISP-YYYY-NNNN,
// where NNNN is a zero-padded integer in [1,9999]. Collisions are not
// detected here; the unique index on payment_approvals.dispense_id is
// the backstop.
type Generator struct {
	clock clock.Clock

	mu  sync.Mutex
	rng *rand.Rand
}

func New(clk clock.Clock, seed int64) *Generator {
	return &Generator{
		clock: clk,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) Generate() string {
	g.mu.Lock()
	n := g.rng.Intn(9999) + 1
	g.mu.Unlock()

	return fmt.Sprintf("DISP-%04d-%04d", g.clock.Now().UTC().Year(), n)
}

// Valid reports whether value is a well-formed dispense identifier.
func Valid(value string) bool {
	return Pattern.MatchString(value)
}
