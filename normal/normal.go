// Package normal contains string normalizers, mostly for category codes.
package normal

import "strings"

type Pipeline struct {
	Normalizer []Normalizer
}

func (p *Pipeline) Normalize(s string) string {
	for _, n := range p.Normalizer {
		s = n.Normalize(s)
	}
	return s
}

type Normalizer interface {
	Normalize(string) string
}

// Fields applies a normalizer to each whitespace separated token of s and
// joins the result with a single space.
func Fields(n Normalizer, s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = n.Normalize(f)
	}
	return strings.Join(fields, " ")
}
