package merge

import (
	"fmt"
	"path"
	"strings"

	"github.com/archivemaster/archivemaster/pkg/types"
)

// scannedInput is the result of enumerating one input during planning.
// Entry bodies are never read at this stage.
type scannedInput struct {
	path    string
	kind    types.ArchiveKind
	entries []*types.ArchiveEntry
}

// mergePlan maps every source entry to its final path in the output, in
// stable input-then-enumeration order. The plan drives the write pass, so
// identical inputs always produce byte-identical output.
type mergePlan struct {
	inputs []*plannedInput
	total  uint64
}

type plannedInput struct {
	path    string
	kind    types.ArchiveKind
	outputs []*plannedOutput
}

// plannedOutput is the fate of one source entry, indexed by its position in
// the source's enumeration order.
type plannedOutput struct {
	path string
	skip bool
}

type claim struct {
	source int
	out    *plannedOutput
}

// buildPlan assigns unique output paths to every scanned entry. When two
// inputs contribute the same relative path the later input keeps the plain
// name and the earlier entry is renamed with a suffix derived from its
// source index. Directory entries are collapsed to one per unique path.
//
// Names are settled in two passes. The first records every claim; the
// second renames the losers against the full set of plain names, so a
// generated name can never land on a path some input carries literally.
func buildPlan(scanned []*scannedInput) *mergePlan {
	plan := &mergePlan{}
	claims := map[string][]*claim{}
	var order []string
	dirs := map[string]bool{}

	for i, in := range scanned {
		pi := &plannedInput{path: in.path, kind: in.kind}
		for _, e := range in.entries {
			po := &plannedOutput{}
			if e.IsDir {
				if dirs[e.Path] {
					po.skip = true
				} else {
					dirs[e.Path] = true
					po.path = e.Path
					plan.total++
				}
			} else {
				if _, ok := claims[e.Path]; !ok {
					order = append(order, e.Path)
				}
				claims[e.Path] = append(claims[e.Path], &claim{source: i, out: po})
				plan.total++
			}
			pi.outputs = append(pi.outputs, po)
		}
		plan.inputs = append(plan.inputs, pi)
	}

	taken := map[string]bool{}
	for p := range claims {
		taken[p] = true
	}
	for _, p := range order {
		cs := claims[p]
		cs[len(cs)-1].out.path = p
		for _, c := range cs[:len(cs)-1] {
			c.out.path = collisionName(p, c.source, taken)
			taken[c.out.path] = true
		}
	}
	return plan
}

// collisionName derives the disambiguated output path for the entry that
// lost a name collision, from its 1-based source archive index.
func collisionName(p string, source int, taken map[string]bool) string {
	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	candidate := fmt.Sprintf("%s__from_%d%s", stem, source+1, ext)
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s__from_%d_%d%s", stem, source+1, n, ext)
	}
	return candidate
}
