// Package chainio reads backbone coordinate files, the hand-off format
// between a structure loader and the encoder. One file holds one or
// more chains:
//
//	> d1a2b__ first chain header
//	@ MKVL
//	ca.x ca.y ca.z n.x n.y n.z c.x c.y c.z cb.x cb.y cb.z
//	...
//
// Each residue line carries twelve fields, or nine when the C-beta is
// absent; a single "." in place of the three C-beta fields also marks
// it missing. The optional @ line gives the amino-acid sequence, one
// letter per residue.
package chainio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"foldcode/internal/geom"
)

// Chain is the parsed coordinate set of one chain.
type Chain struct {
	Name     string
	Sequence string
	CA       []geom.Vec3
	N        []geom.Vec3
	C        []geom.Vec3
	CB       []geom.Vec3
}

// Len returns the number of residues.
func (c *Chain) Len() int { return len(c.CA) }

// Read parses every chain in r. A file with no '>' header yields a
// single unnamed chain.
func Read(r io.Reader) ([]Chain, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var chains []Chain
	var cur *Chain
	ensure := func() *Chain {
		if cur == nil {
			chains = append(chains, Chain{})
			cur = &chains[len(chains)-1]
		}
		return cur
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line[0] {
		case '>':
			chains = append(chains, Chain{Name: strings.TrimSpace(line[1:])})
			cur = &chains[len(chains)-1]
		case '@':
			ensure().Sequence = strings.TrimSpace(line[1:])
		default:
			ca, n, c, cb, err := parseResidue(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			ch := ensure()
			ch.CA = append(ch.CA, ca)
			ch.N = append(ch.N, n)
			ch.C = append(ch.C, c)
			ch.CB = append(ch.CB, cb)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for i := range chains {
		if chains[i].Sequence == "" {
			chains[i].Sequence = strings.Repeat("X", chains[i].Len())
		}
		if len(chains[i].Sequence) != chains[i].Len() {
			return nil, fmt.Errorf("chain %q: sequence length %d does not match %d residues",
				chains[i].Name, len(chains[i].Sequence), chains[i].Len())
		}
	}
	return chains, nil
}

// Write renders chains in the format Read parses.
func Write(w io.Writer, chains []Chain) error {
	bw := bufio.NewWriter(w)
	for _, ch := range chains {
		if ch.Name != "" {
			fmt.Fprintf(bw, "> %s\n", ch.Name)
		}
		if ch.Sequence != "" {
			fmt.Fprintf(bw, "@ %s\n", ch.Sequence)
		}
		for i := range ch.CA {
			fmt.Fprintf(bw, "%g %g %g %g %g %g %g %g %g",
				ch.CA[i].X, ch.CA[i].Y, ch.CA[i].Z,
				ch.N[i].X, ch.N[i].Y, ch.N[i].Z,
				ch.C[i].X, ch.C[i].Y, ch.C[i].Z)
			if ch.CB[i].Finite() {
				fmt.Fprintf(bw, " %g %g %g\n", ch.CB[i].X, ch.CB[i].Y, ch.CB[i].Z)
			} else {
				fmt.Fprint(bw, " .\n")
			}
		}
	}
	return bw.Flush()
}

func parseResidue(line string) (ca, n, c, cb geom.Vec3, err error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 9:
		cb = geom.Missing()
	case 10:
		if fields[9] != "." {
			return ca, n, c, cb, fmt.Errorf("unexpected field %q, want \".\" or three C-beta coordinates", fields[9])
		}
		cb = geom.Missing()
		fields = fields[:9]
	case 12:
	default:
		return ca, n, c, cb, fmt.Errorf("residue line has %d fields, want 9, 10, or 12", len(fields))
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, perr := strconv.ParseFloat(f, 64)
		if perr != nil {
			return ca, n, c, cb, fmt.Errorf("field %d: %w", i+1, perr)
		}
		values[i] = v
	}

	ca = geom.Vec3{X: values[0], Y: values[1], Z: values[2]}
	n = geom.Vec3{X: values[3], Y: values[4], Z: values[5]}
	c = geom.Vec3{X: values[6], Y: values[7], Z: values[8]}
	if len(values) == 12 {
		cb = geom.Vec3{X: values[9], Y: values[10], Z: values[11]}
		if !cb.Finite() {
			cb = geom.Missing()
		}
	}
	for _, v := range []geom.Vec3{ca, n, c} {
		if !v.Finite() {
			return ca, n, c, cb, fmt.Errorf("backbone atom is not finite: %v", v)
		}
	}
	return ca, n, c, cb, nil
}
