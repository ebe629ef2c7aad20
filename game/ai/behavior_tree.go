package ai

// Status is the result of a behavior tree node tick.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusRunning
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "running"
	}
}

// Node is a single node in a behavior tree.
type Node interface {
	Tick(ctx *Context) Status
}

// ---- Composite nodes ----

// Selector succeeds as soon as one child succeeds (logical OR).
type Selector struct {
	Children []Node
}

func (s *Selector) Tick(ctx *Context) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case StatusSuccess:
			return StatusSuccess
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusFailure
}

// Sequence succeeds only when all children succeed (logical AND).
type Sequence struct {
	Children []Node
}

func (s *Sequence) Tick(ctx *Context) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case StatusFailure:
			return StatusFailure
		case StatusRunning:
			return StatusRunning
		}
	}
	return StatusSuccess
}

// ---- Leaf nodes ----

// Condition evaluates a predicate.
type Condition struct {
	Name string
	Fn   func(*Context) bool
}

func (c *Condition) Tick(ctx *Context) Status {
	if c.Fn(ctx) {
		return StatusSuccess
	}
	return StatusFailure
}

// Action runs a step and reports its status.
type Action struct {
	Name string
	Fn   func(*Context) Status
}

func (a *Action) Tick(ctx *Context) Status {
	ctx.Last = a.Name
	return a.Fn(ctx)
}

// ---- Decorator nodes ----

// Inverter negates the result of its child.
type Inverter struct {
	Child Node
}

func (i *Inverter) Tick(ctx *Context) Status {
	switch i.Child.Tick(ctx) {
	case StatusSuccess:
		return StatusFailure
	case StatusFailure:
		return StatusSuccess
	default:
		return StatusRunning
	}
}

// Tree wraps the root node.
type Tree struct {
	Root Node
}

// Tick runs one step of the tree.
func (t *Tree) Tick(ctx *Context) Status {
	if t.Root == nil {
		return StatusFailure
	}
	return t.Root.Tick(ctx)
}
