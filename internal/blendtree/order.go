package blendtree

import (
	"context"
	"fmt"
	"sort"

	"rigconvert/internal/asset"
	"rigconvert/internal/converr"
)

// Collect loads every blend tree reachable from roots, following tree
// children transitively.
func Collect(ctx context.Context, store asset.Store, roots []asset.ID) (map[asset.ID]*asset.BlendTree, error) {
	trees := make(map[asset.ID]*asset.BlendTree)
	queue := append([]asset.ID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id.IsZero() {
			continue
		}
		if _, ok := trees[id]; ok {
			continue
		}
		tree, err := asset.Load[*asset.BlendTree](ctx, store, id)
		if err != nil {
			return nil, fmt.Errorf("load blend tree %s: %w", id, err)
		}
		trees[id] = tree
		queue = append(queue, tree.ChildTrees()...)
	}
	return trees, nil
}

// Order returns tree ids so that every child tree precedes its parents.
// Among ready trees the smallest id goes first. Child references to trees
// outside the set are treated as already converted.
func Order(trees map[asset.ID]*asset.BlendTree) ([]asset.ID, error) {
	ids := make([]asset.ID, 0, len(trees))
	for id := range trees {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	done := make(map[asset.ID]bool, len(trees))
	order := make([]asset.ID, 0, len(trees))
	for len(order) < len(ids) {
		progressed := false
		for _, id := range ids {
			if done[id] || !ready(trees[id], trees, done) {
				continue
			}
			done[id] = true
			order = append(order, id)
			progressed = true
			break
		}
		if !progressed {
			var stuck []asset.ID
			for _, id := range ids {
				if !done[id] {
					stuck = append(stuck, id)
				}
			}
			return nil, &converr.CycleError{IDs: stuck}
		}
	}
	return order, nil
}

func ready(tree *asset.BlendTree, trees map[asset.ID]*asset.BlendTree, done map[asset.ID]bool) bool {
	for _, child := range tree.ChildTrees() {
		if _, inSet := trees[child]; !inSet {
			continue
		}
		if !done[child] {
			return false
		}
	}
	return true
}
