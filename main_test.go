package main

import (
	"strings"
	"testing"
)

func TestSlotFlag(t *testing.T) {
	var slot slotFlag
	if err := slot.Set("2025-10-22"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := slot.Set("5"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := slot.Set("22"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if len(slot) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(slot))
	}
	if slot.String() != "2025-10-22|5|22" {
		t.Errorf("String = %q, expected %q", slot.String(), "2025-10-22|5|22")
	}
}

func completeParams() *RunParams {
	return &RunParams{
		UserID:    "tennis-fan",
		Password:  "hunter2",
		CValue:    "5",
		Date:      "2025-10-22",
		SlotParts: []string{"2025-10-22|5|22|8|4000"},
		GoodName:  "성사야외 6번 예약",
		BuyerName: "tennis-fan",
		Amount:    "4000",
	}
}

func TestValidateParamsComplete(t *testing.T) {
	if err := validateParams(completeParams()); err != nil {
		t.Errorf("complete params should validate, got %v", err)
	}
}

func TestValidateParamsMissing(t *testing.T) {
	tests := []struct {
		name  string
		strip func(*RunParams)
		flag  string
	}{
		{"no user id", func(p *RunParams) { p.UserID = "" }, "-login-userid"},
		{"no password", func(p *RunParams) { p.Password = "" }, "-login-password"},
		{"no cvalue", func(p *RunParams) { p.CValue = "" }, "-reserve-cvalue"},
		{"no date", func(p *RunParams) { p.Date = "" }, "-reserve-date"},
		{"no slot", func(p *RunParams) { p.SlotParts = nil }, "-reserve-slot"},
		{"no good name", func(p *RunParams) { p.GoodName = "" }, "-payment-good-name"},
		{"no buyer name", func(p *RunParams) { p.BuyerName = "" }, "-payment-buyer-name"},
		{"no amount", func(p *RunParams) { p.Amount = "" }, "-payment-amount"},
	}

	for _, test := range tests {
		params := completeParams()
		test.strip(params)
		err := validateParams(params)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
			continue
		}
		if !strings.Contains(err.Error(), test.flag) {
			t.Errorf("%s: error should name %s: %v", test.name, test.flag, err)
		}
	}
}

func TestValidateParamsBadDate(t *testing.T) {
	params := completeParams()
	params.Date = "22/10/2025"
	err := validateParams(params)
	if err == nil {
		t.Fatal("malformed date should fail")
	}
	if !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("error should hint at the format: %v", err)
	}
}

func TestResolveCourtParams(t *testing.T) {
	params := &RunParams{
		UserID: "tennis-fan",
		Date:   "2025-10-22", // Wednesday
	}

	if err := resolveCourtParams(params, "성사야외", 6, 8, false); err != nil {
		t.Fatalf("resolveCourtParams failed: %v", err)
	}

	if params.CValue != "5" {
		t.Errorf("cvalue = %q, expected %q", params.CValue, "5")
	}
	if params.Amount != "8000" {
		t.Errorf("amount = %q, expected %q", params.Amount, "8000")
	}
	if got := coerceSlot(params.SlotParts); got != "2025-10-22|5|22|8|8000" {
		t.Errorf("slot descriptor = %q, expected %q", got, "2025-10-22|5|22|8|8000")
	}
	if params.GoodName != "성사야외 6번 예약" {
		t.Errorf("good name = %q", params.GoodName)
	}
	if params.BuyerName != "tennis-fan" {
		t.Errorf("buyer name should default to the user id, got %q", params.BuyerName)
	}
}

func TestResolveCourtParamsHalfPriceNight(t *testing.T) {
	params := &RunParams{UserID: "u", Date: "2025-10-25"} // Saturday

	if err := resolveCourtParams(params, "충장", 4, 18, true); err != nil {
		t.Fatalf("resolveCourtParams failed: %v", err)
	}
	if params.Amount != "6500" {
		t.Errorf("amount = %q, expected %q", params.Amount, "6500")
	}
	if got := coerceSlot(params.SlotParts); got != "2025-10-25|7|31|18|6500" {
		t.Errorf("slot descriptor = %q, expected %q", got, "2025-10-25|7|31|18|6500")
	}
}

func TestResolveCourtParamsExplicitFlagsWin(t *testing.T) {
	params := &RunParams{
		UserID:    "u",
		Date:      "2025-10-22",
		Amount:    "1234",
		GoodName:  "custom name",
		BuyerName: "someone else",
	}

	if err := resolveCourtParams(params, "성사야외", 1, 10, false); err != nil {
		t.Fatalf("resolveCourtParams failed: %v", err)
	}
	if params.Amount != "1234" {
		t.Errorf("explicit amount overridden: %q", params.Amount)
	}
	if params.GoodName != "custom name" {
		t.Errorf("explicit good name overridden: %q", params.GoodName)
	}
	if params.BuyerName != "someone else" {
		t.Errorf("explicit buyer name overridden: %q", params.BuyerName)
	}
	// The resolved slot still uses the table price, not the explicit amount.
	if got := coerceSlot(params.SlotParts); got != "2025-10-22|5|17|10|8000" {
		t.Errorf("slot descriptor = %q, expected %q", got, "2025-10-22|5|17|10|8000")
	}
}

func TestResolveCourtParamsRejects(t *testing.T) {
	if err := resolveCourtParams(&RunParams{}, "성사야외", 1, 10, false); err == nil {
		t.Error("missing date should fail")
	}
	if err := resolveCourtParams(&RunParams{Date: "2025-10-22"}, "성사야외", 1, 9, false); err == nil {
		t.Error("invalid slot hour should fail")
	}
	if err := resolveCourtParams(&RunParams{Date: "2025-10-22"}, "성사야외", 9, 10, false); err == nil {
		t.Error("invalid court number should fail")
	}
	if err := resolveCourtParams(&RunParams{Date: "2025-10-22"}, "없는코트", 1, 10, false); err == nil {
		t.Error("unknown court should fail")
	}
}
