package btree

import (
	"fmt"

	"github.com/mobanhawi/linotype/internal/segtype"
)

// Check walks the whole tree verifying invariants I1, I4, I5 (§8). It is
// a debug-time consistency assertion (§7) never meant to run in production;
// callers invoke it from tests, not from edit paths.
func (t *Tree) Check() error {
	if err := checkNode(t.Root, true); err != nil {
		return err
	}
	last := t.lastLine()
	if last != t.Dummy {
		return fmt.Errorf("btree: dummy line is not the tree's last line")
	}
	for slot := range t.Dummy.Pixels {
		if t.Dummy.Pixels[slot].Height != 0 {
			return fmt.Errorf("btree: dummy line has nonzero pixel height for viewer %d", slot)
		}
	}
	return nil
}

func checkNode(n *Node, isRoot bool) error {
	count := numItems(n)
	if isRoot {
		if n.IsLeaf() && count < 1 {
			return fmt.Errorf("btree: root leaf has no lines")
		}
		if !n.IsLeaf() && count < 2 {
			return fmt.Errorf("btree: root interior has fewer than 2 children")
		}
	} else {
		if count < MinChildren || count > MaxChildren {
			return fmt.Errorf("btree: node has %d children, want [%d,%d]", count, MinChildren, MaxChildren)
		}
	}

	if n.IsLeaf() {
		for i, l := range n.Lines {
			if l.leaf != n {
				return fmt.Errorf("btree: line %d has stale leaf back-pointer", i)
			}
			if err := segtype.Check(l.Segments); err != nil && l != n.tree.Dummy {
				return fmt.Errorf("btree: line %d: %w", i, err)
			}
		}
		return nil
	}

	sumLines := 0
	for _, c := range n.Children {
		if c.Parent != n {
			return fmt.Errorf("btree: child has stale parent back-pointer")
		}
		if err := checkNode(c, false); err != nil {
			return err
		}
		sumLines += c.NumLines
	}
	if sumLines != n.NumLines {
		return fmt.Errorf("btree: numLines %d does not match children sum %d", n.NumLines, sumLines)
	}
	return nil
}
