package enums

import "testing"

func TestDefectCategoryPredicateMapping(t *testing.T) {
	expected := map[DefectCategory]string{
		DefectOrphan:         "is_orphan_order",
		DefectNegativeAmount: "has_negative_amount",
		DefectMathError:      "has_math_error",
		DefectFutureOrder:    "is_future_order",
		DefectBadStatus:      "has_bad_status",
		DefectDuplicate:      "is_duplicate",
	}

	if len(DefectCategories()) != len(expected) {
		t.Fatalf("expected %d categories, got %d", len(expected), len(DefectCategories()))
	}

	for category, predicate := range expected {
		if !category.IsValid() {
			t.Fatalf("expected %s to be valid", category)
		}
		if got := category.Predicate(); got != predicate {
			t.Fatalf("expected predicate %q for %s, got %q", predicate, category, got)
		}
	}
}

func TestParseDefectCategory(t *testing.T) {
	category, err := ParseDefectCategory("math_error")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if category != DefectMathError {
		t.Fatalf("expected math_error, got %s", category)
	}

	if _, err := ParseDefectCategory("truncated_row"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("delivered")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if status != OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", status)
	}

	if OrderStatus("in_limbo").IsValid() {
		t.Fatal("expected in_limbo to be invalid")
	}
	if _, err := ParseOrderStatus("SHIPED"); err == nil {
		t.Fatal("expected error for misspelled status")
	}
}
