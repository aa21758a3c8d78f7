package etl

import (
	"regexp"
	"strings"

	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DefaultLocationName is used when a code carries no letters at all.
const DefaultLocationName = "Leito"

// commonNames expands the abbreviations hospital systems put in bed codes.
var commonNames = map[string]string{
	"QTO":    "Quarto",
	"QUARTO": "Quarto",
	"APTO":   "Apartamento",
	"APT":    "Apartamento",
	"LEITO":  "Leito",
	"LT":     "Leito",
	"SL":     "Sala",
	"SALA":   "Sala",
	"CX":     "Caixa",
	"BOX":    "Box",
	"UTI":    "UTI",
	"SPA":    "SPA",
	"LBX":    "Laboratório",
}

// ExpandName returns the full name for a known abbreviation, or abbr unchanged.
func ExpandName(abbr string) string {
	if name, ok := commonNames[strings.ToUpper(abbr)]; ok {
		return name
	}
	return abbr
}

type ParsedCode struct {
	Name   string
	Number string
}

// CodeMatcher is one strategy for turning an external code into name and number.
type CodeMatcher interface {
	TryParse(code string) (ParsedCode, bool)
}

// CodeParser tries its matchers in order. The last one always matches, so
// Parse never fails for a non-empty code.
type CodeParser struct {
	matchers []CodeMatcher
	mappings *mappingMatcher
}

// NewCodeParser builds the matcher chain for tc. Only active mappings are used.
func NewCodeParser(tc models.TransformationConfig, mappings []models.LocationMapping) (*CodeParser, error) {
	mm := newMappingMatcher(mappings)
	p := &CodeParser{mappings: mm}
	p.matchers = append(p.matchers, mm)

	pm, err := newPatternMatcher(tc)
	if err != nil {
		return nil, err
	}
	if pm != nil {
		p.matchers = append(p.matchers, pm)
	}

	for _, sm := range builtinShapes {
		p.matchers = append(p.matchers, sm)
	}
	if tc.NameSeparator != "" {
		p.matchers = append(p.matchers, separatorMatcher{sep: tc.NameSeparator})
	}
	p.matchers = append(p.matchers, fallbackMatcher{})
	return p, nil
}

func (p *CodeParser) Parse(code string) ParsedCode {
	code = strings.TrimSpace(code)
	for _, m := range p.matchers {
		if parsed, ok := m.TryParse(code); ok {
			return parsed
		}
	}
	// unreachable while fallbackMatcher is last
	return ParsedCode{Name: DefaultLocationName, Number: code}
}

// HasOverride reports whether an active mapping exists for code.
func (p *CodeParser) HasOverride(code string) bool {
	_, ok := p.mappings.byCode[strings.TrimSpace(code)]
	return ok
}

type mappingMatcher struct {
	byCode map[string]models.LocationMapping
}

func newMappingMatcher(mappings []models.LocationMapping) *mappingMatcher {
	active := lo.Filter(mappings, func(m models.LocationMapping, _ int) bool {
		return m.IsActive &&
			strings.TrimSpace(m.InternalName) != "" &&
			strings.TrimSpace(m.InternalNumber) != ""
	})
	return &mappingMatcher{
		byCode: lo.KeyBy(active, func(m models.LocationMapping) string {
			return strings.TrimSpace(m.ExternalCode)
		}),
	}
}

func (m *mappingMatcher) TryParse(code string) (ParsedCode, bool) {
	mapping, ok := m.byCode[code]
	if !ok {
		return ParsedCode{}, false
	}
	return ParsedCode{
		Name:   strings.TrimSpace(mapping.InternalName),
		Number: strings.TrimSpace(mapping.InternalNumber),
	}, true
}

// patternMatcher applies the operator-supplied regexes; both must match.
type patternMatcher struct {
	name   *regexp.Regexp
	number *regexp.Regexp
}

// newPatternMatcher returns nil when patterns are not in use.
func newPatternMatcher(tc models.TransformationConfig) (*patternMatcher, error) {
	if tc.NamePattern == "" || tc.NumberPattern == "" {
		if tc.CustomTransform {
			return nil, &ConfigError{Missing: []string{"namePattern and numberPattern (customTransform is on)"}}
		}
		return nil, nil
	}
	nameRe, err := regexp.Compile(tc.NamePattern)
	if err != nil {
		return nil, errors.Wrap(err, "invalid namePattern")
	}
	numberRe, err := regexp.Compile(tc.NumberPattern)
	if err != nil {
		return nil, errors.Wrap(err, "invalid numberPattern")
	}
	return &patternMatcher{name: nameRe, number: numberRe}, nil
}

func (m *patternMatcher) TryParse(code string) (ParsedCode, bool) {
	name := firstGroup(m.name, code)
	number := firstGroup(m.number, code)
	if name == "" || number == "" {
		return ParsedCode{}, false
	}
	return ParsedCode{Name: name, Number: number}, true
}

// firstGroup returns capture group 1, or the whole match for a group-less pattern.
func firstGroup(re *regexp.Regexp, s string) string {
	sub := re.FindStringSubmatch(s)
	switch len(sub) {
	case 0:
		return ""
	case 1:
		return strings.TrimSpace(sub[0])
	}
	return strings.TrimSpace(sub[1])
}

type shapeMatcher struct {
	re          *regexp.Regexp
	nameGroup   int
	numberGroup int
}

var builtinShapes = []shapeMatcher{
	// QTO-101, LT-3A
	{regexp.MustCompile(`^([A-Za-z]+)-([0-9]+[A-Za-z]?)$`), 1, 2},
	// QTO101, APTO202B
	{regexp.MustCompile(`^([A-Za-z]+)([0-9]+[A-Za-z]?)$`), 1, 2},
	// 101-UTI
	{regexp.MustCompile(`^([0-9]+)-([A-Za-z]+)$`), 2, 1},
}

func (m shapeMatcher) TryParse(code string) (ParsedCode, bool) {
	sub := m.re.FindStringSubmatch(code)
	if sub == nil {
		return ParsedCode{}, false
	}
	return ParsedCode{Name: ExpandName(sub[m.nameGroup]), Number: sub[m.numberGroup]}, true
}

// separatorMatcher splits "UTI ADULTO 12" style codes: the last part is the
// number and must carry a digit, otherwise the fallback decides.
type separatorMatcher struct {
	sep string
}

func (m separatorMatcher) TryParse(code string) (ParsedCode, bool) {
	parts := lo.Compact(lo.Map(strings.Split(code, m.sep), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(parts) < 2 {
		return ParsedCode{}, false
	}
	last := parts[len(parts)-1]
	if !digitsRe.MatchString(last) {
		return ParsedCode{}, false
	}
	name := ExpandName(strings.Join(parts[:len(parts)-1], " "))
	return ParsedCode{Name: name, Number: last}, true
}

var (
	digitsRe    = regexp.MustCompile(`[0-9]+`)
	nonDigitsRe = regexp.MustCompile(`[^0-9]+`)
)

type fallbackMatcher struct{}

func (fallbackMatcher) TryParse(code string) (ParsedCode, bool) {
	name := strings.TrimSpace(digitsRe.ReplaceAllString(code, ""))
	if name == "" {
		name = DefaultLocationName
	}
	number := nonDigitsRe.ReplaceAllString(code, "")
	if number == "" {
		number = code
	}
	return ParsedCode{Name: name, Number: number}, true
}
