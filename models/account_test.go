package models

import "testing"

func TestAccountClassOf(t *testing.T) {
	cases := map[string]int{
		"12":   1,
		"21":   2,
		"401":  4,
		"411":  4,
		"491":  4,
		"515":  5,
		"6817": 6,
		"70":   7,
	}
	for number, want := range cases {
		got, err := AccountClassOf(number)
		if err != nil {
			t.Fatalf("AccountClassOf(%q): %v", number, err)
		}
		if got != want {
			t.Errorf("AccountClassOf(%q) = %d, want %d", number, got, want)
		}
	}
}

func TestAccountClassOfRejectsMalformedNumbers(t *testing.T) {
	for _, number := range []string{"", "0", "012", "4a1", "abc", "9 9"} {
		if _, err := AccountClassOf(number); err == nil {
			t.Errorf("AccountClassOf(%q): expected error", number)
		}
	}
}

func TestClassPartition(t *testing.T) {
	for class := 1; class <= 5; class++ {
		if !IsBalanceSheetClass(class) {
			t.Errorf("class %d should be balance sheet", class)
		}
		if IsProfitLossClass(class) {
			t.Errorf("class %d should not be profit and loss", class)
		}
	}
	for _, class := range []int{6, 7} {
		if IsBalanceSheetClass(class) {
			t.Errorf("class %d should not be balance sheet", class)
		}
		if !IsProfitLossClass(class) {
			t.Errorf("class %d should be profit and loss", class)
		}
	}
	if IsBalanceSheetClass(8) || IsProfitLossClass(8) {
		t.Error("class 8 is neither carried forward nor closed to result")
	}
}
