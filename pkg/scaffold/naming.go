package scaffold

import (
	"strings"
	"unicode"
)

// SnakeToPascal splits s on underscores and capitalizes each segment.
// Segments keep their remaining letters, so a PascalCase input is returned unchanged.
func SnakeToPascal(s string) string {
	var b strings.Builder
	for _, segment := range strings.Split(s, "_") {
		if segment == "" {
			continue
		}
		runes := []rune(segment)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// PascalToSnake inserts an underscore before every interior capital and lowercases.
// Dashes and spaces are treated as word separators.
func PascalToSnake(s string) string {
	var b strings.Builder
	prevUnderscore := true
	for _, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			if !prevUnderscore {
				b.WriteRune('_')
			}
			prevUnderscore = true
			continue
		case unicode.IsUpper(r):
			if !prevUnderscore {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
		prevUnderscore = false
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ToCamel returns s in lowerCamelCase.
func ToCamel(s string) string {
	pascal := SnakeToPascal(PascalToSnake(s))
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// ToKebab returns s in kebab-case.
func ToKebab(s string) string {
	return strings.ReplaceAll(PascalToSnake(s), "_", "-")
}

// ToTitle returns the words of s capitalized and separated by spaces.
func ToTitle(s string) string {
	words := strings.Split(PascalToSnake(s), "_")
	out := words[:0]
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, SnakeToPascal(w))
	}
	return strings.Join(out, " ")
}

// BindingName is the placeholder name an argument is bound under.
func BindingName(argument string) string {
	return strings.ReplaceAll(argument, "-", "_")
}

// CheckIdentifier reports whether value follows the naming convention.
func CheckIdentifier(value string, convention Convention) error {
	if convention == ConventionNone {
		if strings.TrimSpace(value) == "" {
			return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "must not be empty"}
		}
		return nil
	}
	if value == "" {
		return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "must not be empty"}
	}

	first := rune(value[0])
	switch convention {
	case ConventionSnake:
		if !isASCIILetter(first) {
			return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "must start with a letter"}
		}
		for _, r := range value {
			if !isASCIILetter(r) && !isASCIIDigit(r) && r != '_' {
				return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "may only contain letters, digits and underscores"}
			}
		}
	case ConventionPascal:
		if first < 'A' || first > 'Z' {
			return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "must be PascalCase (start with an upper-case letter)"}
		}
		for _, r := range value {
			if !isASCIILetter(r) && !isASCIIDigit(r) {
				return &InvalidIdentifierError{Value: value, Convention: convention, Reason: "must be PascalCase (letters and digits only)"}
			}
		}
	}
	return nil
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
