package classify

// state is the classifier state. stateLoop is absorbing.
type state int

const (
	stateInitial state = iota
	statePrimitive
	stateLoop
)

func (s state) String() string {
	switch s {
	case stateInitial:
		return "INITIAL"
	case statePrimitive:
		return "PRIMITIVE"
	default:
		return "LOOP"
	}
}

// remaining holds the labels of each side that are not classified yet.
// It owns its slices; callers' sequences are never modified.
type remaining struct {
	node, left, right []string
}

func newRemaining(node, left, right []string) remaining {
	return remaining{
		node:  append([]string(nil), node...),
		left:  append([]string(nil), left...),
		right: append([]string(nil), right...),
	}
}

// machine is the two-phase classification state machine.
type machine struct {
	state  state
	cursor Category // Last primitive category assigned, valid in statePrimitive
	rem    remaining
	out    Classification
	placed map[string]Bucket
}

func newMachine(node, left, right []string) *machine {
	return &machine{
		state:  stateInitial,
		rem:    newRemaining(node, left, right),
		placed: make(map[string]Bucket, len(node)+len(left)+len(right)),
	}
}

// Classify classifies every label of a binary contraction node = left × right.
//
// Phase 1 scans node from its last label backwards, phase 2 assigns the
// contracted labels that are left over on both operands. A nil
// Classification is returned together with an *Error when the contraction is
// faulty.
func Classify(node, left, right []string) (*Classification, error) {
	for _, seq := range []struct {
		name   string
		labels []string
	}{{"node", node}, {"left", left}, {"right", right}} {
		if l, ok := firstDuplicate(seq.labels); ok {
			return nil, faultyf(l, "repeated in %s operand", seq.name)
		}
	}

	m := newMachine(node, left, right)
	for len(m.rem.node) > 0 {
		if err := m.step(); err != nil {
			return nil, err
		}
	}
	if err := m.drainContracted(); err != nil {
		return nil, err
	}
	return &m.out, nil
}

// acceptsPrimitive reports whether category c may still be assigned a
// primitive label: the machine is not in the loop state and c does not come
// before the last primitive category. The K slot holds a single label.
func (m *machine) acceptsPrimitive(c Category) bool {
	if c == CategoryK && len(m.out.Primitive.K) > 0 {
		return false
	}
	switch m.state {
	case stateInitial:
		return true
	case statePrimitive:
		return c >= m.cursor
	default:
		return false
	}
}

func (m *machine) assignPrimitive(c Category, label string) error {
	if err := m.add(primitiveBucket(c), label); err != nil {
		return err
	}
	m.state = statePrimitive
	m.cursor = c
	return nil
}

// add prepends label to bucket b so that buckets keep physical order.
func (m *machine) add(b Bucket, label string) error {
	if label == "" {
		return internalf(label, "empty label submitted to %s", b)
	}
	if prev, ok := m.placed[label]; ok {
		return internalf(label, "already classified as %s, cannot add to %s", prev, b)
	}
	m.placed[label] = b

	var dims *Dims
	if b.IsPrimitive() {
		dims = &m.out.Primitive
	} else {
		dims = &m.out.Loop
	}
	s := dims.slot(b.Category())
	*s = append([]string{label}, *s...)
	return nil
}

// step classifies at least one label while node is not empty.
func (m *machine) step() error {
	if m.state != stateLoop {
		ok, err := m.primitiveStep()
		if err != nil || ok {
			return err
		}
		m.state = stateLoop
	}
	return m.loopStep()
}

// primitiveStep tries to assign the trailing labels to a primitive bucket.
// It reports false when the trailing labels do not fit, which ends the
// primitive phase.
func (m *machine) primitiveStep() (bool, error) {
	r := &m.rem
	x, _ := last(r.node)
	l, lok := last(r.left)
	rt, rok := last(r.right)

	var cat Category
	switch {
	case lok && rok && x == l && x == rt:
		cat = CategoryC
	case lok && x == l && !contains(r.right, x):
		cat = CategoryM
	case rok && x == rt && !contains(r.left, x):
		cat = CategoryN
	case lok && rok && l == rt && !contains(r.node, l):
		if !m.acceptsPrimitive(CategoryK) {
			return false, nil
		}
		r.left, r.right = pop(r.left), pop(r.right)
		return true, m.assignPrimitive(CategoryK, l)
	default:
		return false, nil
	}

	if !m.acceptsPrimitive(cat) {
		return false, nil
	}
	r.node = pop(r.node)
	if cat != CategoryN {
		r.left = pop(r.left)
	}
	if cat == CategoryC || cat == CategoryN {
		r.right = pop(r.right)
	}
	return true, m.assignPrimitive(cat, x)
}

// loopStep classifies one label in the loop state. Trailing operand labels
// that are not part of node are contracted and consumed first without
// advancing the node scan.
func (m *machine) loopStep() error {
	r := &m.rem
	if l, ok := last(r.left); ok && !contains(r.node, l) {
		if !contains(r.right, l) {
			return faultyf(l, "in left operand only and missing from the result")
		}
		r.left, r.right = pop(r.left), remove(r.right, l)
		return m.add(loopBucket(CategoryK), l)
	}
	if rt, ok := last(r.right); ok && !contains(r.node, rt) {
		if !contains(r.left, rt) {
			return faultyf(rt, "in right operand only and missing from the result")
		}
		r.right, r.left = pop(r.right), remove(r.left, rt)
		return m.add(loopBucket(CategoryK), rt)
	}

	x, _ := last(r.node)
	r.node = pop(r.node)
	inLeft, inRight := contains(r.left, x), contains(r.right, x)
	var cat Category
	switch {
	case inLeft && inRight:
		r.left, r.right = remove(r.left, x), remove(r.right, x)
		cat = CategoryC
	case inLeft:
		r.left = remove(r.left, x)
		cat = CategoryM
	case inRight:
		r.right = remove(r.right, x)
		cat = CategoryN
	default:
		return faultyf(x, "in the result but in neither operand")
	}
	return m.add(loopBucket(cat), x)
}

// drainContracted assigns the labels left on the operands once node is
// exhausted. Every one of them must be present on both sides. The residual
// right operand is scanned from its end; its trailing-most label claims the
// primitive K slot when that slot is still open.
func (m *machine) drainContracted() error {
	r := &m.rem
	for i := len(r.right) - 1; i >= 0; i-- {
		y := r.right[i]
		if !contains(r.left, y) {
			return faultyf(y, "contracted label has no partner in left operand")
		}
		r.left = remove(r.left, y)

		var err error
		if m.acceptsPrimitive(CategoryK) {
			err = m.assignPrimitive(CategoryK, y)
		} else {
			err = m.add(loopBucket(CategoryK), y)
		}
		if err != nil {
			return err
		}
	}
	r.right = r.right[:0]

	if len(r.left) > 0 {
		y := r.left[len(r.left)-1]
		return faultyf(y, "contracted label has no partner in right operand")
	}
	return nil
}

func last(s []string) (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	return s[len(s)-1], true
}

func pop(s []string) []string { return s[:len(s)-1] }

func contains(s []string, label string) bool {
	for _, l := range s {
		if l == label {
			return true
		}
	}
	return false
}

// remove returns s without the first occurrence of label.
func remove(s []string, label string) []string {
	for i, l := range s {
		if l == label {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

func firstDuplicate(s []string) (string, bool) {
	seen := make(map[string]struct{}, len(s))
	for _, l := range s {
		if _, ok := seen[l]; ok {
			return l, true
		}
		seen[l] = struct{}{}
	}
	return "", false
}
