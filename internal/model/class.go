package model

// Class kinds recorded in TypeHeader.ClassType.
const (
	KindClass     = "class"
	KindInterface = "interface"
	KindStruct    = "struct"
	KindRecord    = "record"
	KindModule    = "module"
	KindEnum      = "enum"
	KindDelegate  = "delegate"
)

// BaseType is one entry of a type's base list.
type BaseType struct {
	Type EntityType
	Kind string
}

// TypeHeader holds the attributes common to every class-like entity.
type TypeHeader struct {
	Declaration
	AttributeSet
	ClassType               string
	FilePath                string `json:",omitempty"`
	ContainingNamespaceName string
	ContainingClassName     string `json:",omitempty"`
	GenericParameters       []*GenericParameter
	BaseTypes               []BaseType
	LinesOfCode             `json:"LinesOfCode"`
	Metrics                 []Metric
}

// Head exposes the header of a class-like entity.
func (h *TypeHeader) Head() *TypeHeader { return h }

// AddMetric appends m, replacing an existing metric with the same name.
func (h *TypeHeader) AddMetric(m Metric) {
	for i := range h.Metrics {
		if h.Metrics[i].Name == m.Name {
			h.Metrics[i] = m
			return
		}
	}
	h.Metrics = append(h.Metrics, m)
}

// Metric returns the metric named name.
func (h *TypeHeader) Metric(name string) (Metric, bool) {
	for _, m := range h.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// ClassType is implemented by *Class, *Enum and *Delegate.
type ClassType interface {
	Head() *TypeHeader
	classType()
}

// Class models classes, interfaces, structs and records.
type Class struct {
	TypeHeader
	Fields       []*Field
	Properties   []*Property
	Constructors []*Constructor
	Methods      []*Method
	Destructor   *Destructor `json:",omitempty"`
}

func (*Class) classType() {}

// Namespace derives the containing namespace from a qualified name when
// ContainingNamespaceName was not recorded.
func (c *Class) Namespace() string {
	if c.ContainingNamespaceName != "" {
		return c.ContainingNamespaceName
	}
	name := StripTypeArguments(c.Name)
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return ""
}

// Enum models enum declarations.
type Enum struct {
	TypeHeader
	Type   EntityType
	Labels []*EnumLabel
}

func (*Enum) classType() {}

// Delegate models delegate declarations.
type Delegate struct {
	TypeHeader
	Signature
	ReturnValue *ReturnValue
}

func (*Delegate) classType() {}
