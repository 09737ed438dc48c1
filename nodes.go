package sigma

// NodeSimpleAnd is a list of branches connected with logical conjunction
type NodeSimpleAnd []Branch

// Walk implements Branch
func (n NodeSimpleAnd) Walk(fn func(*DetectionItem)) {
	for _, b := range n {
		b.Walk(fn)
	}
}

// Reduce cleans up unneeded slices
// Static structures can be used if node only holds one or two elements
func (n NodeSimpleAnd) Reduce() Branch {
	if len(n) == 1 {
		return n[0]
	}
	if len(n) == 2 {
		return &NodeAnd{L: n[0], R: n[1]}
	}
	return n
}

// NodeSimpleOr is a list of branches connected with logical disjunction
type NodeSimpleOr []Branch

// Walk implements Branch
func (n NodeSimpleOr) Walk(fn func(*DetectionItem)) {
	for _, b := range n {
		b.Walk(fn)
	}
}

// Reduce cleans up unneeded slices
// Static structures can be used if node only holds one or two elements
func (n NodeSimpleOr) Reduce() Branch {
	if len(n) == 1 {
		return n[0]
	}
	if len(n) == 2 {
		return &NodeOr{L: n[0], R: n[1]}
	}
	return n
}

// NodeNot negates a branch
type NodeNot struct {
	B Branch
}

// Walk implements Branch
func (n NodeNot) Walk(fn func(*DetectionItem)) {
	n.B.Walk(fn)
}

// NodeAnd is a two element node of a binary tree with Left and Right branches
// connected via logical conjunction
type NodeAnd struct {
	L, R Branch
}

// Walk implements Branch
func (n NodeAnd) Walk(fn func(*DetectionItem)) {
	n.L.Walk(fn)
	n.R.Walk(fn)
}

// NodeOr is a two element node of a binary tree with Left and Right branches
// connected via logical disjunction
type NodeOr struct {
	L, R Branch
}

// Walk implements Branch
func (n NodeOr) Walk(fn func(*DetectionItem)) {
	n.L.Walk(fn)
	n.R.Walk(fn)
}

func newNodeNotIfNegated(b Branch, negated bool) Branch {
	if negated {
		return &NodeNot{B: b}
	}
	return b
}
