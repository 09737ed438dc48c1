package sigma

// Branch is a node of a parsed detection tree
// Both condition expressions and individual searches are built from branches
type Branch interface {
	// Walk visits every detection item below the branch
	// depth first, in the order items were written in rule
	Walk(func(*DetectionItem))
}
