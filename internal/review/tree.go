package review

import (
	"slices"

	"github.com/30-dung/salon-web/internal/domain"
)

// BuildReplyTree turns flat or partly nested replies into a tree ordered
// oldest first. A reply whose parent is unknown becomes a top-level reply.
// Depth is 0 for replies to the review itself.
func BuildReplyTree(replies []domain.ReviewReply) []domain.ReviewReply {
	nodes := make(map[int64]domain.ReviewReply)
	var order []int64
	var flatten func([]domain.ReviewReply)
	flatten = func(rs []domain.ReviewReply) {
		for _, r := range rs {
			kids := r.Children
			r.Children = nil
			if _, seen := nodes[r.ID]; !seen {
				order = append(order, r.ID)
			}
			nodes[r.ID] = r
			flatten(kids)
		}
	}
	flatten(replies)

	children := make(map[int64][]int64)
	var roots []int64
	for _, id := range order {
		n := nodes[id]
		if p := n.ParentReplyID; p != nil && *p != id {
			if _, ok := nodes[*p]; ok {
				children[*p] = append(children[*p], id)
				continue
			}
		}
		roots = append(roots, id)
	}

	byTime := func(a, b int64) int {
		na, nb := nodes[a], nodes[b]
		if c := na.CreatedAt.Compare(nb.CreatedAt.Time); c != 0 {
			return c
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}

	visited := make(map[int64]bool, len(nodes))
	var build func(id int64, depth int) domain.ReviewReply
	build = func(id int64, depth int) domain.ReviewReply {
		visited[id] = true
		n := nodes[id]
		n.Depth = depth
		kids := slices.Clone(children[id])
		slices.SortFunc(kids, byTime)
		n.Children = make([]domain.ReviewReply, 0, len(kids))
		for _, k := range kids {
			if !visited[k] {
				n.Children = append(n.Children, build(k, depth+1))
			}
		}
		return n
	}

	slices.SortFunc(roots, byTime)
	tree := make([]domain.ReviewReply, 0, len(roots))
	for _, id := range roots {
		tree = append(tree, build(id, 0))
	}

	// Replies caught in a parent cycle are unreachable from any root.
	var stranded []int64
	for _, id := range order {
		if !visited[id] {
			stranded = append(stranded, id)
		}
	}
	slices.SortFunc(stranded, byTime)
	for _, id := range stranded {
		if !visited[id] {
			tree = append(tree, build(id, 0))
		}
	}

	return tree
}

// CountReplies returns the number of nodes in a reply tree.
func CountReplies(tree []domain.ReviewReply) int {
	n := 0
	for _, r := range tree {
		n += 1 + CountReplies(r.Children)
	}
	return n
}

// FindReply returns the node with the given id.
func FindReply(tree []domain.ReviewReply, id int64) (domain.ReviewReply, bool) {
	for _, r := range tree {
		if r.ID == id {
			return r, true
		}
		if found, ok := FindReply(r.Children, id); ok {
			return found, true
		}
	}
	return domain.ReviewReply{}, false
}
