package docgen

import "testing"

func TestReplaceIdentityTokens(t *testing.T) {
	vals := Values{InvoiceNo: "INV-042", InvoiceDate: "Aug 26, 2026", Reference: "PO-7781"}

	got := Replace("INVOICE No: JFINV DATE: JFTIME REF: JFREF", vals)
	want := "INVOICE No: INV-042 DATE: Aug 26, 2026 REF: PO-7781"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceBuyerTokens(t *testing.T) {
	vals := Values{CustomerName: "ACME Corp", CustomerAddress: "12 Harbour Rd"}

	got := Replace("TO: [[CUSTOMER_NAME]]\n[[CUSTOMER_ADDRESS]]", vals)
	want := "TO: ACME Corp\n12 Harbour Rd"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceEmptyValueLeavesTokenUntouched(t *testing.T) {
	got := Replace("No: JFINV Ref: JFREF", Values{InvoiceNo: "INV-1"})
	want := "No: INV-1 Ref: JFREF"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceAllOccurrencesInOnePass(t *testing.T) {
	got := Replace("JFINV / JFINV / JFINV", Values{InvoiceNo: "X"})
	if got != "X / X / X" {
		t.Errorf("Expected every occurrence replaced, got %q", got)
	}
}

func TestReplaceSubstitutedValueStaysLiteral(t *testing.T) {
	// The invoice number itself contains a later token of the same class.
	vals := Values{InvoiceNo: "JFTIME-7", InvoiceDate: "2026-08-26"}

	got := Replace("No: JFINV at JFTIME", vals)
	want := "No: JFTIME-7 at 2026-08-26"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceDescriptionResolvesLast(t *testing.T) {
	// Tokens inside the description value must survive as literal text,
	// even though their classes have values set.
	vals := Values{
		InvoiceNo:    "INV-9",
		CustomerName: "ACME Corp",
		Description:  "JFINV boxes for [[CUSTOMER_NAME]]",
	}

	got := Replace("Goods: [[DESCRIPTION]] (ref JFINV)", vals)
	want := "Goods: JFINV boxes for [[CUSTOMER_NAME]] (ref INV-9)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceCustomTokens(t *testing.T) {
	vals := Values{Custom: map[string]string{
		"[[PAYMENT_TERM]]": "T/T 30 DAYS",
		"[[PORT]]":         "HAIPHONG",
	}}

	got := Replace("TERMS: [[PAYMENT_TERM]], FROM [[PORT]]", vals)
	want := "TERMS: T/T 30 DAYS, FROM HAIPHONG"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceLongerCustomTokenWinsSharedPrefix(t *testing.T) {
	vals := Values{Custom: map[string]string{
		"NW":    "100",
		"NW/GW": "100/110",
	}}

	got := Replace("NW/GW: ____", vals)
	want := "100/110: ____"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceLeftmostTokenWinsAcrossClassOrder(t *testing.T) {
	// Within one class the scan is left to right, so an earlier shorter
	// token is consumed before a later longer one.
	vals := Values{Custom: map[string]string{
		"NW":    "100",
		"NW/GW": "100/110",
	}}

	got := Replace("NW first, NW/GW second", vals)
	want := "100 first, 100/110 second"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReplaceNoTokensIsIdentity(t *testing.T) {
	text := "PACKING LIST No 44 of 2026"
	if got := Replace(text, Values{InvoiceNo: "INV-1"}); got != text {
		t.Errorf("Expected text unchanged, got %q", got)
	}
}

func TestValuesEmpty(t *testing.T) {
	if !(Values{}).Empty() {
		t.Error("Expected zero Values to be empty")
	}
	if (Values{Reference: "R"}).Empty() {
		t.Error("Expected Values with a reference to be non-empty")
	}
	if (Values{Custom: map[string]string{"X": "y"}}).Empty() {
		t.Error("Expected Values with custom tokens to be non-empty")
	}
}
