package prompts

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/JaimeStill/promptchan/pkg/validation"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^}\s]+)\s*\}\}`)

// ValidateTemplate checks that every {{ has a matching }}, that input names
// are unique, and, when inputs are declared, that every placeholder names one.
func ValidateTemplate(template string, inputs []InputField) error {
	if !bracketsBalanced(template) {
		return validation.Invalid("template has unbalanced {{ }} brackets")
	}

	dups := lo.FindDuplicatesBy(inputs, func(f InputField) string { return f.Name })
	if len(dups) > 0 {
		return validation.Invalid("input name %q is declared more than once", dups[0].Name)
	}

	if len(inputs) == 0 {
		return nil
	}

	declared := lo.SliceToMap(inputs, func(f InputField) (string, struct{}) {
		return f.Name, struct{}{}
	})

	unknown := lo.Uniq(lo.FilterMap(
		Placeholders(template),
		func(name string, _ int) (string, bool) {
			_, ok := declared[name]
			return name, !ok
		},
	))

	if len(unknown) > 0 {
		return validation.Invalid(
			"placeholders %s do not match any declared input",
			strings.Join(unknown, ", "),
		)
	}

	return nil
}

// Placeholders returns the placeholder names in template in order of appearance.
func Placeholders(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	return lo.Map(matches, func(m []string, _ int) string { return m[1] })
}

func bracketsBalanced(s string) bool {
	depth := 0
	for i := 0; i < len(s)-1; {
		switch s[i : i+2] {
		case "{{":
			depth++
			i += 2
		case "}}":
			if depth == 0 {
				return false
			}
			depth--
			i += 2
		default:
			i++
		}
	}
	return depth == 0
}

// NormalizeTags splits a comma-separated tag list, trims each tag, and drops
// empties and case-insensitive duplicates. Returns nil when nothing remains.
func NormalizeTags(raw *string) *string {
	if raw == nil {
		return nil
	}

	tags := lo.FilterMap(strings.Split(*raw, ","), func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return tag, tag != ""
	})
	tags = lo.UniqBy(tags, strings.ToLower)

	if len(tags) == 0 {
		return nil
	}

	joined := strings.Join(tags, ",")
	return &joined
}
