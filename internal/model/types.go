// Package model defines the language-agnostic fact model produced by the
// C# and Visual Basic extractors.
package model

// LinesOfCode classifies every physical line of a span exactly once.
type LinesOfCode struct {
	SourceLines    int
	EmptyLines     int
	CommentedLines int
}

// Lines returns the receiver so entities embedding LinesOfCode expose it
// through a common capability.
func (l *LinesOfCode) Lines() *LinesOfCode { return l }

// Total returns the number of physical lines accounted for.
func (l LinesOfCode) Total() int {
	return l.SourceLines + l.EmptyLines + l.CommentedLines
}

// Add accumulates other into l.
func (l *LinesOfCode) Add(other LinesOfCode) {
	l.SourceLines += other.SourceLines
	l.EmptyLines += other.EmptyLines
	l.CommentedLines += other.CommentedLines
}

// Metric is a name-tagged extracted value. Relation metrics carry a
// map[string]int of type name to occurrence count.
type Metric struct {
	Name      string
	ValueType string
	Value     any
}

// RelationValue returns the name→count map of a relation metric.
func (m Metric) RelationValue() (map[string]int, bool) {
	v, ok := m.Value.(map[string]int)
	return v, ok
}

// Metric names for class-level relation aggregates.
const (
	MetricExceptionsThrown = "ExceptionsThrownRelation"
	MetricObjectCreation   = "ObjectCreationRelation"
	RelationValueType      = "map[string]int"
)

// EntityType is a resolved type reference. Name is the full display string,
// FullType its parsed tree.
type EntityType struct {
	Name     string
	FullType GenericType
	IsExtern bool
}

// GenericType is one node of a parsed type reference.
type GenericType struct {
	Name           string
	IsNullable     bool
	ContainedTypes []GenericType `json:",omitempty"`
}

// NewEntityType parses a display string into an EntityType.
func NewEntityType(name string, extern bool) EntityType {
	return EntityType{
		Name:     name,
		FullType: ParseGenericType(name),
		IsExtern: extern,
	}
}

// IsZero reports whether no type was recorded.
func (e EntityType) IsZero() bool { return e.Name == "" }

// Nullable reports whether the outermost type is nullable.
func (e EntityType) Nullable() bool { return e.FullType.IsNullable }
