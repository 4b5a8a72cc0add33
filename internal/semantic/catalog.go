package semantic

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed bcl.toml
var bclCatalog []byte

// catalogFile is the root structure of bcl.toml
type catalogFile struct {
	Version int           `toml:"version"`
	Types   []catalogType `toml:"type"`
}

type catalogType struct {
	Name           string          `toml:"name"`
	Kind           string          `toml:"kind"`
	TypeParameters []string        `toml:"type_parameters,omitempty"`
	Bases          []string        `toml:"bases,omitempty"`
	Static         bool            `toml:"static,omitempty"`
	Fields         []catalogMember `toml:"fields,omitempty"`
	Properties     []catalogMember `toml:"properties,omitempty"`
	Events         []catalogMember `toml:"events,omitempty"`
	Methods        []catalogMember `toml:"methods,omitempty"`
	Constructors   []catalogMember `toml:"constructors,omitempty"`
}

type catalogMember struct {
	Name           string   `toml:"name"`
	Type           string   `toml:"type"`
	Parameters     []string `toml:"parameters,omitempty"`
	TypeParameters []string `toml:"type_parameters,omitempty"`
	Static         bool     `toml:"static,omitempty"`
	Extension      bool     `toml:"extension,omitempty"`
}

var (
	catalogOnce  sync.Once
	catalogTypes []*TypeSymbol
	catalogErr   error
)

// frameworkTypes returns the parsed catalog. Symbols are shared by every
// compilation and never modified after parsing.
func frameworkTypes() ([]*TypeSymbol, error) {
	catalogOnce.Do(func() {
		catalogTypes, catalogErr = parseCatalog(bclCatalog)
	})
	return catalogTypes, catalogErr
}

func parseCatalog(data []byte) ([]*TypeSymbol, error) {
	var file catalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse framework catalog: %w", err)
	}

	symbols := make([]*TypeSymbol, 0, len(file.Types))
	for _, ct := range file.Types {
		if ct.Name == "" || ct.Kind == "" {
			return nil, fmt.Errorf("framework catalog entry %q has no name or kind", ct.Name)
		}
		ns, name := splitQualified(ct.Name)
		sym := &TypeSymbol{
			FullName:       ct.Name,
			Name:           name,
			Namespace:      ns,
			Kind:           ct.Kind,
			TypeParameters: ct.TypeParameters,
			Bases:          ct.Bases,
			Static:         ct.Static,
			Scope:          &Scope{framework: true},
		}
		add := func(kind MemberKind, members []catalogMember) {
			for _, cm := range members {
				m := &MemberSymbol{
					Name:           cm.Name,
					Kind:           kind,
					Type:           cm.Type,
					TypeParameters: cm.TypeParameters,
					Static:         cm.Static,
					Extension:      cm.Extension,
				}
				if kind == MemberConstructor {
					m.Name = name
					m.Type = ct.Name
				}
				for i, p := range cm.Parameters {
					m.Parameters = append(m.Parameters, parseCatalogParameter(fmt.Sprintf("arg%d", i), p))
				}
				sym.AddMember(m)
			}
		}
		add(MemberField, ct.Fields)
		add(MemberProperty, ct.Properties)
		add(MemberEvent, ct.Events)
		add(MemberMethod, ct.Methods)
		add(MemberConstructor, ct.Constructors)
		symbols = append(symbols, sym)
	}
	return symbols, nil
}

// parseCatalogParameter reads "opt T", "params T[]", "out T" and plain types.
func parseCatalogParameter(name, spec string) Parameter {
	p := Parameter{Name: name}
	for {
		head, rest, ok := strings.Cut(spec, " ")
		if !ok {
			break
		}
		switch head {
		case "opt":
			p.Optional = true
		case "params":
			p.Params = true
		case "out", "ref", "in":
			p.Modifier = head
		default:
			p.Type = spec
			return p
		}
		spec = rest
	}
	p.Type = spec
	return p
}

// splitQualified splits "A.B.C" into "A.B" and "C".
func splitQualified(name string) (string, string) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
