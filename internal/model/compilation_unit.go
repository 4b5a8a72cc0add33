package model

import "sync"

// Language names recorded on compilation units.
const (
	LanguageCSharp      = "C#"
	LanguageVisualBasic = "Visual Basic"
)

// CompilationUnit is the fact model of one parsed source file. Nested types
// are listed in ClassTypes after their containing type.
type CompilationUnit struct {
	FilePath    string
	Language    string
	Hash        uint64 `json:",omitempty"`
	ClassTypes  []ClassType
	Imports     []*Import
	LinesOfCode `json:"LinesOfCode"`
	Metrics     []Metric `json:",omitempty"`
}

// Class returns the class-like entity with the given qualified name.
func (cu *CompilationUnit) Class(name string) ClassType {
	for _, ct := range cu.ClassTypes {
		if ct.Head().Name == name {
			return ct
		}
	}
	return nil
}

// Repository aggregates compilation units from many files. Add is safe for
// concurrent use.
type Repository struct {
	mu               sync.Mutex
	CompilationUnits []*CompilationUnit
	classIndex       map[string]string
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{classIndex: make(map[string]string)}
}

// Add appends cu and returns the qualified names of classes that were
// already declared by another file.
func (r *Repository) Add(cu *CompilationUnit) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.classIndex == nil {
		r.classIndex = make(map[string]string)
	}

	var duplicates []string
	for _, ct := range cu.ClassTypes {
		h := ct.Head()
		if h.Modifier != "" && containsWord(h.Modifier, "partial") {
			continue
		}
		if prev, ok := r.classIndex[h.Name]; ok && prev != cu.FilePath {
			duplicates = append(duplicates, h.Name)
			continue
		}
		r.classIndex[h.Name] = cu.FilePath
	}
	r.CompilationUnits = append(r.CompilationUnits, cu)
	return duplicates
}

// Len returns the number of compilation units.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.CompilationUnits)
}

// Replace swaps the unit stored for cu.FilePath, or appends it.
func (r *Repository) Replace(cu *CompilationUnit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.CompilationUnits {
		if existing.FilePath == cu.FilePath {
			r.CompilationUnits[i] = cu
			return
		}
	}
	r.CompilationUnits = append(r.CompilationUnits, cu)
}

func containsWord(s, word string) bool {
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ' ' {
			if s[start:i] == word || s[start:i] == "Partial" && word == "partial" {
				return true
			}
			start = i + 1
		}
	}
	return false
}
