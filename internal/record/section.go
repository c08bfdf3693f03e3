package record

// Section is a changelog section heading. Every kind routes to exactly
// one section; sections render in the fixed order returned by Sections.
type Section string

const (
	SectionBreaking Section = "Breaking Changes"
	SectionFeatures Section = "Features Added"
	SectionFixes    Section = "Bugs Fixed"
	SectionOther    Section = "Other Changes"
)

// Sections returns all changelog sections in rendering order.
func Sections() []Section {
	return []Section{SectionBreaking, SectionFeatures, SectionFixes, SectionOther}
}

// Section returns the changelog section this kind routes to.
// Returns UnroutableKindError for a kind outside the closed enum; that
// is an invariant violation, not a user error, since ParseKind and
// Validate reject such kinds at the boundary.
func (k Kind) Section() (Section, error) {
	switch k {
	case KindBreaking:
		return SectionBreaking, nil
	case KindFeature:
		return SectionFeatures, nil
	case KindFix:
		return SectionFixes, nil
	case KindDeprecation, KindDependencies, KindInternal:
		return SectionOther, nil
	}
	return "", &UnroutableKindError{Kind: string(k)}
}
