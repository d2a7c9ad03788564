package model

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGen synthesizes ids for services and assignments created during an
// import. Each generator carries a random batch prefix plus a counter, so
// ids stay unique within the parse and across concatenated batches.
type IDGen struct {
	batch string
	n     int
}

// NewIDGen returns a generator with a fresh batch prefix.
func NewIDGen() *IDGen {
	return &IDGen{batch: uuid.NewString()[:8]}
}

// Next returns the next id with the given kind prefix ("svc", "asg").
func (g *IDGen) Next(kind string) string {
	g.n++
	return fmt.Sprintf("%s-%s-%d", kind, g.batch, g.n)
}
