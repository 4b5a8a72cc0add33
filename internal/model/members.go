package model

// Declaration holds the name and modifiers shared by every declared entity.
type Declaration struct {
	Name           string
	AccessModifier string
	Modifier       string
}

// Decl exposes the declaration part of an entity.
func (d *Declaration) Decl() *Declaration { return d }

// AttributeSet holds attributes applied to an entity in source order.
type AttributeSet struct {
	Attributes []*Attribute
}

// Attrs exposes the attribute part of an entity.
func (a *AttributeSet) Attrs() *AttributeSet { return a }

// Signature is shared by methods, constructors, destructors and delegates.
type Signature struct {
	Parameters        []*Parameter
	GenericParameters []*GenericParameter
}

// Sig exposes the signature part of an entity.
func (s *Signature) Sig() *Signature { return s }

// Body holds facts read from an executable body.
type Body struct {
	ContainingTypeName   string
	CalledMethods        []MethodCall
	AccessedFields       []AccessedField
	LocalVariableTypes   []*LocalVariable
	LocalFunctions       []*Method
	LinesOfCode          `json:"LinesOfCode"`
	CyclomaticComplexity int
	Metrics              []Metric `json:",omitempty"`
}

// MethodBody exposes the body part of an entity.
func (b *Body) MethodBody() *Body { return b }

// Method models methods, local functions and property accessors.
type Method struct {
	Declaration
	Signature
	Body
	AttributeSet
	ReturnValue *ReturnValue
}

// Constructor models instance and static constructors.
type Constructor struct {
	Declaration
	Signature
	Body
	AttributeSet
}

// Destructor models finalizers.
type Destructor struct {
	Declaration
	Signature
	Body
	AttributeSet
}

// Property models properties and events declared with accessors.
type Property struct {
	Declaration
	AttributeSet
	ContainingTypeName   string
	Type                 EntityType
	IsEvent              bool
	IsNullable           bool
	CyclomaticComplexity int
	Accessors            []*Method
	LinesOfCode          `json:"LinesOfCode"`
}

// Field models fields and field-like events.
type Field struct {
	Declaration
	AttributeSet
	ContainingTypeName string
	Type               EntityType
	IsEvent            bool
	IsNullable         bool
}

// Parameter models one formal or attribute-argument parameter.
type Parameter struct {
	AttributeSet
	Type         EntityType
	Modifier     string `json:",omitempty"`
	DefaultValue string `json:",omitempty"`
	IsNullable   bool
}

// ReturnValue models a method or delegate return type.
type ReturnValue struct {
	AttributeSet
	Type       EntityType
	Modifier   string `json:",omitempty"`
	IsNullable bool
}

// GenericParameter models a declared type parameter.
type GenericParameter struct {
	AttributeSet
	Name        string
	Modifier    string `json:",omitempty"`
	Constraints []EntityType
}

// Attribute target tags.
const (
	TargetType     = "type"
	TargetMethod   = "method"
	TargetField    = "field"
	TargetProperty = "property"
	TargetParam    = "param"
	TargetReturn   = "return"
)

// Attribute models one attribute application.
type Attribute struct {
	Type       EntityType
	Target     string
	Parameters []*Parameter
}

// EnumLabel models one enum member.
type EnumLabel struct {
	AttributeSet
	Name string
}

// AliasType classifies the target of an aliased import.
type AliasType string

const (
	AliasNone          AliasType = "None"
	AliasNamespace     AliasType = "Namespace"
	AliasClass         AliasType = "Class"
	AliasNotDetermined AliasType = "NotDetermined"
)

// Import models a using/Imports directive.
type Import struct {
	Name      string
	IsStatic  bool
	Alias     string
	AliasType AliasType
}

// LocalVariable models a local declaration inside a body.
type LocalVariable struct {
	Name       string
	Type       EntityType
	Modifier   string `json:",omitempty"`
	IsNullable bool
}

// MethodCall models one invocation found in a body.
type MethodCall struct {
	Name                string
	DefinitionClassName string
	LocationClassName   string
	ParameterTypes      []EntityType
	GenericParameters   []EntityType `json:",omitempty"`
	IsExtern            bool         `json:",omitempty"`
}

// AccessKind distinguishes reads from writes.
type AccessKind string

const (
	AccessGetter AccessKind = "Getter"
	AccessSetter AccessKind = "Setter"
)

// AccessedField models one field or property access found in a body.
type AccessedField struct {
	Name                string
	DefinitionClassName string
	LocationClassName   string
	Kind                AccessKind
}
