package toolgen

import "fmt"

// Namer owns the set of tool names issued during one run. It is created at
// run start and discarded with the run; never shared across runs.
type Namer struct {
	issued map[string]struct{}
}

func NewNamer() *Namer {
	return &Namer{issued: make(map[string]struct{})}
}

// Issue returns base unchanged when it is still free, otherwise the first
// free base_2, base_3, … form. Never fails.
func (n *Namer) Issue(base string) string {
	if _, taken := n.issued[base]; !taken {
		n.issued[base] = struct{}{}
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if _, taken := n.issued[name]; !taken {
			n.issued[name] = struct{}{}
			return name
		}
	}
}

// Count returns how many names have been issued.
func (n *Namer) Count() int {
	return len(n.issued)
}
