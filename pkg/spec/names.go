package spec

import (
	"strings"
	"unicode"
)

// veryGeneric holds the role words that disqualify a single-word name.
// Deliberately lenient: anything with an internal space passes.
var veryGeneric = map[string]struct{}{
	"client":     {},
	"freelancer": {},
	"designer":   {},
	"customer":   {},
}

// IsGenericName reports whether a name is a generic placeholder rather than
// an actual name. Empty names count as generic.
func IsGenericName(name string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return true
	}

	if strings.Contains(trimmed, " ") {
		return false
	}

	_, generic := veryGeneric[trimmed]

	return generic
}

// ProperName title-cases a person or business name, keeping prefixes like
// "Mc" and "O'" intact: "sarah chen" -> "Sarah Chen", "o'brien" -> "O'Brien",
// "mcdonald" -> "McDonald". Words already containing an uppercase letter are
// left alone so acronyms and stylized brands survive.
func ProperName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}

	words := strings.Split(name, " ")
	for i, w := range words {
		words[i] = properWord(w)
	}

	return strings.Join(words, " ")
}

func properWord(w string) string {
	if w == "" || strings.IndexFunc(w, unicode.IsUpper) >= 0 {
		return w
	}

	// Apostrophe names: o'brien -> O'Brien
	if idx := strings.Index(w, "'"); idx > 0 && idx < len(w)-1 {
		return capitalize(w[:idx]) + "'" + capitalize(w[idx+1:])
	}

	if strings.HasPrefix(w, "mc") && len(w) > 2 {
		return "Mc" + capitalize(w[2:])
	}

	return capitalize(w)
}

func capitalize(w string) string {
	if w == "" {
		return ""
	}

	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

// SentenceCase trims a free-text field and uppercases its first letter.
func SentenceCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])

	return string(r)
}

// TidySpec applies the deterministic text normalization that follows chat
// extraction: proper-cased party names, sentence-cased free text, trimmed
// whitespace.
func TidySpec(s *ContractSpec) {
	s.Freelancer.Name = ProperName(s.Freelancer.Name)
	s.Freelancer.BusinessName = ProperName(s.Freelancer.BusinessName)
	s.Client.Name = ProperName(s.Client.Name)
	s.Client.BusinessName = ProperName(s.Client.BusinessName)

	s.Freelancer.Email = strings.TrimSpace(s.Freelancer.Email)
	s.Client.Email = strings.TrimSpace(s.Client.Email)

	s.Title = SentenceCase(s.Title)

	for i := range s.Deliverables {
		s.Deliverables[i].Item = strings.TrimSpace(s.Deliverables[i].Item)
		s.Deliverables[i].Description = SentenceCase(s.Deliverables[i].Description)
		s.Deliverables[i].Format = strings.TrimSpace(s.Deliverables[i].Format)
	}
}
