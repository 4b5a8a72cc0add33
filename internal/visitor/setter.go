package visitor

// Setter discovers children of kind C under a parent node P, builds one model
// CM per child, runs Visitors on it and attaches it to the parent model PM.
// Children are processed in the order Children returns them.
type Setter[P, PM, C, CM any] struct {
	Kind     string
	Children func(ctx *Context, parent P) []C
	New      func() CM
	Attach   func(parent PM, child CM)
	Visitors []Visitor[C, CM]
}

// NewSetter creates a setter. Contained visitors are added with Add.
func NewSetter[P, PM, C, CM any](
	kind string,
	children func(ctx *Context, parent P) []C,
	newModel func() CM,
	attach func(parent PM, child CM),
) *Setter[P, PM, C, CM] {
	return &Setter[P, PM, C, CM]{
		Kind:     kind,
		Children: children,
		New:      newModel,
		Attach:   attach,
	}
}

// Add appends visitors. It allows a setter to contain itself, as local
// functions do.
func (s *Setter[P, PM, C, CM]) Add(visitors ...Visitor[C, CM]) *Setter[P, PM, C, CM] {
	s.Visitors = append(s.Visitors, visitors...)
	return s
}

func (s *Setter[P, PM, C, CM]) Name() string { return s.Kind + "Setter" }

// Visit runs the setter on one parent. Failures of contained visitors are
// absorbed per child; the child is attached with whatever they managed to set.
func (s *Setter[P, PM, C, CM]) Visit(ctx *Context, parent P, pm PM) error {
	for _, child := range s.Children(ctx, parent) {
		s.Attach(pm, s.Build(ctx, child))
	}
	return nil
}

// Build creates the model of one child and runs the contained visitors on it.
func (s *Setter[P, PM, C, CM]) Build(ctx *Context, child C) CM {
	m := s.New()
	Run(ctx, s.Visitors, child, m)
	return m
}

// Route sends the children accepted by match to this setter when it is used
// inside a Dispatch.
func (s *Setter[P, PM, C, CM]) Route(match func(C) bool) Route[C, PM] {
	return Route[C, PM]{
		Match: match,
		Build: func(ctx *Context, child C, pm PM) { s.Attach(pm, s.Build(ctx, child)) },
	}
}

// Route builds and attaches the children of one kind of a Dispatch.
type Route[C, PM any] struct {
	Match func(C) bool
	Build func(ctx *Context, child C, parent PM)
}

// Dispatch is a setter over children of several kinds that share one
// parent collection. Each child goes to the first route that matches it, so
// models of different kinds keep their relative source order.
type Dispatch[P, PM, C any] struct {
	Kind     string
	Children func(ctx *Context, parent P) []C
	Routes   []Route[C, PM]
}

// NewDispatch creates a dispatching setter.
func NewDispatch[P, PM, C any](kind string, children func(ctx *Context, parent P) []C, routes ...Route[C, PM]) *Dispatch[P, PM, C] {
	return &Dispatch[P, PM, C]{Kind: kind, Children: children, Routes: routes}
}

func (d *Dispatch[P, PM, C]) Name() string { return d.Kind + "Setter" }

// Visit builds every child that some route accepts. Children no route
// accepts are skipped.
func (d *Dispatch[P, PM, C]) Visit(ctx *Context, parent P, pm PM) error {
	for _, child := range d.Children(ctx, parent) {
		for _, r := range d.Routes {
			if r.Match(child) {
				r.Build(ctx, child, pm)
				break
			}
		}
	}
	return nil
}

// Adapt lets a visitor written for node type N run where the pipeline holds
// node type P, using conv to get from one to the other.
func Adapt[P, N, M any](v Visitor[N, M], conv func(P) N) Visitor[P, M] {
	return NewFunc(v.Name(), func(ctx *Context, node P, m M) error {
		return v.Visit(ctx, conv(node), m)
	})
}
