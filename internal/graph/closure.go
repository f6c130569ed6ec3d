package graph

// close verifies the graph is closed under the dependency relation and
// computes the target build order.
func (g *Graph) close() error {
	for _, p := range g.Projects() {
		for _, dep := range p.Dependencies {
			if _, ok := g.paths[dep]; !ok {
				return &DanglingReferenceError{Name: dep, From: p.Name()}
			}
		}
	}

	var nodes []TargetRef
	for _, p := range g.Projects() {
		for _, t := range p.Manifest.Targets {
			nodes = append(nodes, TargetRef{Project: p.Name(), Target: t.Name})
		}
	}
	order, err := sortTargets(nodes, g.targetEdges)
	if err != nil {
		return err
	}
	g.buildOrder = order
	return nil
}

// targetEdges returns the targets ref depends on, in declaration order.
func (g *Graph) targetEdges(ref TargetRef) ([]TargetRef, error) {
	p := g.projects[ref.Project]
	t, _ := p.Manifest.Target(ref.Target)

	edges := make([]TargetRef, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		owner := p
		if !d.IsLocal() {
			owner, _ = g.ProjectAt(ResolveLocation(p.Path, d.Project))
		}
		to := TargetRef{Project: owner.Name(), Target: d.Target}
		if _, ok := owner.Manifest.Target(d.Target); !ok {
			return nil, &DanglingReferenceError{Name: to.String(), From: ref.String()}
		}
		edges = append(edges, to)
	}
	return edges, nil
}

const (
	unvisited = iota
	visiting
	done
)

// sortTargets orders nodes dependencies first with a depth-first walk.
// Ties keep the input order.
func sortTargets(nodes []TargetRef, edges func(TargetRef) ([]TargetRef, error)) ([]TargetRef, error) {
	state := make(map[TargetRef]int, len(nodes))
	order := make([]TargetRef, 0, len(nodes))
	var path []TargetRef

	var visit func(TargetRef) error
	visit = func(n TargetRef) error {
		switch state[n] {
		case done:
			return nil
		case visiting:
			return targetCycle(path, n)
		}
		state[n] = visiting
		path = append(path, n)

		deps, err := edges(n)
		if err != nil {
			return err
		}
		for _, d := range deps {
			if err := visit(d); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[n] = done
		order = append(order, n)
		return nil
	}

	for _, n := range nodes {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func targetCycle(path []TargetRef, n TargetRef) *CycleError {
	start := 0
	for i, p := range path {
		if p == n {
			start = i
			break
		}
	}
	err := &CycleError{}
	for _, p := range path[start:] {
		err.Path = append(err.Path, p.String())
	}
	err.Path = append(err.Path, n.String())
	return err
}
