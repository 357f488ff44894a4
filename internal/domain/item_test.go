package domain

import (
	"reflect"
	"testing"
)

func TestComposedText_AllFields(t *testing.T) {
	it := Item{
		Title:       "TI-84 Calculator",
		Description: "Graphing calculator, lightly used",
		Category:    "Electronics",
		Condition:   "good",
		Tags:        []string{"calculator", "math"},
	}

	want := "Title: TI-84 Calculator\n" +
		"Description: Graphing calculator, lightly used\n" +
		"Category: Electronics\n" +
		"Condition: good\n" +
		"Tags: calculator,math"
	if got := it.ComposedText(); got != want {
		t.Errorf("ComposedText:\ngot  %q\nwant %q", got, want)
	}
}

func TestComposedText_OptionalFieldsOmitted(t *testing.T) {
	it := Item{
		Title:       "Desk lamp",
		Description: "White LED lamp",
		Category:    "Furniture",
	}

	want := "Title: Desk lamp\nDescription: White LED lamp\nCategory: Furniture"
	if got := it.ComposedText(); got != want {
		t.Errorf("ComposedText:\ngot  %q\nwant %q", got, want)
	}
}

func TestComposedText_TagsKeepInsertionOrder(t *testing.T) {
	it := Item{
		Title:       "Chem textbook",
		Description: "Organic chemistry",
		Category:    "Books",
		Tags:        []string{"zeta", "alpha", "middle"},
	}

	want := "Title: Chem textbook\nDescription: Organic chemistry\nCategory: Books\nTags: zeta,alpha,middle"
	if got := it.ComposedText(); got != want {
		t.Errorf("ComposedText:\ngot  %q\nwant %q", got, want)
	}
}

func TestSharedTags(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []string
		want  []string
	}{
		{"overlap keeps receiver order", []string{"calculator", "math"}, []string{"math", "science", "calculator"}, []string{"calculator", "math"}},
		{"no overlap", []string{"a"}, []string{"b"}, nil},
		{"case sensitive", []string{"Math"}, []string{"math"}, nil},
		{"empty side", nil, []string{"math"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Item{Tags: tt.a}
			b := Item{Tags: tt.b}
			if got := a.SharedTags(&b); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SharedTags(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKeywordText(t *testing.T) {
	it := Item{
		Title:       "TI-84 Calculator",
		Description: "Great for Math class",
		Tags:        []string{"Calculator", "electronics"},
	}
	want := "ti-84 calculator great for math class calculator electronics"
	if got := it.KeywordText(); got != want {
		t.Errorf("KeywordText = %q, want %q", got, want)
	}
}

func TestAvailable(t *testing.T) {
	if !(&Item{Status: StatusAvailable}).Available() {
		t.Error("available item reported unavailable")
	}
	if (&Item{Status: StatusPending}).Available() {
		t.Error("pending item reported available")
	}
}
