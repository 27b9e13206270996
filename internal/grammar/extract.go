package grammar

import "sort"

// Extract returns the structural nodes of the requested kind. It first
// applies the language's registered structural query, then the generic
// cross-language type-set traversal when no query exists or the query yields
// nothing. Extraction never fails: any internal problem degrades to zero
// nodes so the caller can pick the next tier.
func Extract(tree *Tree, kind ExtractKind) (nodes []*Node) {
	if tree == nil || tree.Root == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			nodes = nil
		}
	}()

	if langQueries, ok := queries[tree.Language]; ok {
		if q, ok := langQueries[kind]; ok {
			nodes = collect(tree.Root, q.nodeTypes, q.nested)
			if len(nodes) > 0 {
				return nodes
			}
		}
	}

	return collect(tree.Root, genericTypeSets[kind], false)
}

// collect walks the tree breadth-first with an explicit queue, gathering
// nodes whose type is in wanted. When nested is false a match's subtree is
// not descended into. Results are returned in source order.
func collect(root *Node, wanted []string, nested bool) []*Node {
	wantedSet := make(map[string]bool, len(wanted))
	for _, t := range wanted {
		wantedSet[t] = true
	}

	var out []*Node
	queue := []*Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == nil {
			continue
		}
		if n.Depth > MaxTraversalDepth {
			continue
		}

		if wantedSet[n.Type] {
			out = append(out, n)
			if !nested {
				continue
			}
		}

		queue = append(queue, n.Children...)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartByte != out[j].StartByte {
			return out[i].StartByte < out[j].StartByte
		}
		return out[i].EndByte > out[j].EndByte
	})

	return out
}
