package aggregate

// nodeSet keeps labels in first-seen order with O(1) membership.
type nodeSet struct {
	labels []string
	index  map[string]int
}

func newNodeSet() *nodeSet {
	return &nodeSet{index: map[string]int{}}
}

func (s *nodeSet) add(label string) int {
	if i, ok := s.index[label]; ok {
		return i
	}
	s.index[label] = len(s.labels)
	s.labels = append(s.labels, label)
	return len(s.labels) - 1
}

func (s *nodeSet) len() int { return len(s.labels) }
