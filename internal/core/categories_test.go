package core

import "testing"

func TestEveryCategoryHasLabelAndColor(t *testing.T) {
	for _, typ := range Types() {
		cats := Categories(typ)
		if len(cats) == 0 {
			t.Fatalf("no categories for %s", typ)
		}
		for _, c := range cats {
			if c.Label == "" || c.Label == c.Key {
				t.Errorf("%s: missing label", c.Key)
			}
			if len(c.Color) != 7 || c.Color[0] != '#' {
				t.Errorf("%s: bad color %q", c.Key, c.Color)
			}
			if !IsCategoryOf(typ, c.Key) {
				t.Errorf("%s: not registered for %s", c.Key, typ)
			}
		}
	}
}

func TestLookupCategoryFallback(t *testing.T) {
	c := LookupCategory("lottery")
	if c.Label != "lottery" || c.Color != NeutralColor {
		t.Fatalf("fallback = %+v", c)
	}
	if got := LookupCategory("food"); got.Label != "Alimentación" || got.Color != "#dc3545" {
		t.Fatalf("food = %+v", got)
	}
}

func TestCategoriesAreTypeScoped(t *testing.T) {
	if IsCategoryOf(Expense, "salary") {
		t.Fatal("salary must not be an expense category")
	}
	if IsCategoryOf(Income, "food") {
		t.Fatal("food must not be an income category")
	}
	if DefaultCategory(Income) != "salary" || DefaultCategory(Expense) != "food" {
		t.Fatal("unexpected default categories")
	}
}

func TestCategoriesReturnsCopy(t *testing.T) {
	cats := Categories(Income)
	cats[0].Label = "changed"
	if LookupCategory(cats[0].Key).Label == "changed" {
		t.Fatal("registry mutated through returned slice")
	}
}
