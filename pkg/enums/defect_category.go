package enums

import "fmt"

// DefectCategory identifies one of the deliberate data-quality defects the
// chaos engine can apply to an order row. Categories are mutually exclusive
// per injection pass.
type DefectCategory string

const (
	DefectOrphan         DefectCategory = "orphan"
	DefectNegativeAmount DefectCategory = "negative_amount"
	DefectMathError      DefectCategory = "math_error"
	DefectFutureOrder    DefectCategory = "future_order"
	DefectBadStatus      DefectCategory = "bad_status"
	DefectDuplicate      DefectCategory = "duplicate"
)

var validDefectCategories = []DefectCategory{
	DefectOrphan,
	DefectNegativeAmount,
	DefectMathError,
	DefectFutureOrder,
	DefectBadStatus,
	DefectDuplicate,
}

// DefectCategories returns the full category set in declaration order.
func DefectCategories() []DefectCategory {
	out := make([]DefectCategory, len(validDefectCategories))
	copy(out, validDefectCategories)
	return out
}

// String implements fmt.Stringer.
func (c DefectCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is recognized.
func (c DefectCategory) IsValid() bool {
	for _, candidate := range validDefectCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// Predicate returns the boolean column name the downstream reporting layer
// uses to exclude rows of this category from clean revenue.
func (c DefectCategory) Predicate() string {
	switch c {
	case DefectOrphan:
		return "is_orphan_order"
	case DefectNegativeAmount:
		return "has_negative_amount"
	case DefectMathError:
		return "has_math_error"
	case DefectFutureOrder:
		return "is_future_order"
	case DefectBadStatus:
		return "has_bad_status"
	case DefectDuplicate:
		return "is_duplicate"
	default:
		return ""
	}
}

// ParseDefectCategory converts a raw string into a DefectCategory.
func ParseDefectCategory(value string) (DefectCategory, error) {
	for _, candidate := range validDefectCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid defect category %q", value)
}
