package perm

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of a swap plan.
//
// Chromosomes are drawn left to right in current order as rounded boxes,
// pinned to one rank. Every swap becomes an undirected edge labelled with its
// step number, so the order of playback can be read off the picture.
// Chromosomes the plan never touches are drawn dimmed.
//
// Example:
//
//	plan := perm.MinSwaps(target, current)
//	dot := perm.ToDOT(current, plan)
func ToDOT(current []string, swaps []Swap) string {
	moved := make(map[string]bool)
	for _, id := range Moved(swaps) {
		moved[id] = true
	}

	var buf bytes.Buffer
	buf.WriteString("graph SwapPlan {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, shape=box, style=\"filled,rounded\", fillcolor=white];\n")
	buf.WriteString("  edge [fontname=\"SF Mono, Menlo, monospace\", fontsize=11];\n\n")

	buf.WriteString("  { rank=same;")
	for i := range current {
		fmt.Fprintf(&buf, " n%d;", i)
	}
	buf.WriteString(" }\n")

	pos := Positions(current)
	for i, id := range current {
		if moved[id] {
			fmt.Fprintf(&buf, "  n%d [label=%q];\n", i, id)
		} else {
			fmt.Fprintf(&buf, "  n%d [label=%q, fontcolor=gray, color=gray];\n", i, id)
		}
	}
	for i := 1; i < len(current); i++ {
		fmt.Fprintf(&buf, "  n%d -- n%d [style=invis];\n", i-1, i)
	}
	for step, s := range swaps {
		a, okA := pos[s[0]]
		b, okB := pos[s[1]]
		if !okA || !okB {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -- n%d [label=\"%d\", constraint=false];\n", a, b, step+1)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a swap plan as an SVG image via [ToDOT].
//
// RenderSVG requires the Graphviz library (github.com/goccy/go-graphviz).
// Errors are returned if Graphviz cannot initialize, the DOT is malformed,
// or rendering fails. All errors are wrapped with context using %w.
func RenderSVG(ctx context.Context, current []string, swaps []Swap) ([]byte, error) {
	dot := ToDOT(current, swaps)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
