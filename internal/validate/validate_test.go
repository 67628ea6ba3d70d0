package validate

import "testing"

func TestPhone(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"09123456789", true},
		{"09999999999", true},
		{" 09123456789 ", true}, // trimmed
		{"091234567890", false}, // 12 digits, no partial match
		{"0912345678", false},   // 10 digits
		{"08123456789", false},  // wrong prefix
		{"9123456789", false},
		{"09-12345678", false},
		{"+639123456789", false},
		{"", false},
	}
	for _, tc := range cases {
		_, err := Phone(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("Phone(%q) err=%v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}

func TestAddress(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Brgy. Bacan, Cabatuan, Iloilo", true},
		{"Purok 3, Oton", true},
		{"blk 5 street 2, tigbauan", true},
		{"123 Main St", false},          // no locality keyword, no town
		{"Brgy. Bacan", false},          // no allow-listed town
		{"Cabatuan", false},             // too short, no keyword
		{"Somewhere in Pavia town", false}, // town but no locality keyword
		{"", false},
	}
	for _, tc := range cases {
		_, err := Address(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("Address(%q) err=%v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}

func TestFullName(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"Juan Dela Cruz", true},
		{"Ma. Elena Cruz", true},
		{"Jose Rizal-Mercado", true},
		{"Juan", false},
		{"Juan 123", false},
		{"", false},
		{"   ", false},
	}
	for _, tc := range cases {
		_, err := FullName(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("FullName(%q) err=%v, want ok=%v", tc.in, err, tc.ok)
		}
	}
}

func TestAccountNo(t *testing.T) {
	if _, err := AccountNo("123456"); err != nil {
		t.Fatalf("6 digits should pass: %v", err)
	}
	if _, err := AccountNo("123456789012"); err != nil {
		t.Fatalf("12 digits should pass: %v", err)
	}
	for _, bad := range []string{"12345", "1234567890123", "12a456", ""} {
		if _, err := AccountNo(bad); err == nil {
			t.Errorf("AccountNo(%q) unexpectedly passed", bad)
		}
	}
}

func TestMeterConcern_MatchedKeywordStored(t *testing.T) {
	got, err := MeterConcern("The meter has NO DISPLAY since yesterday")
	if err != nil {
		t.Fatalf("MeterConcern: %v", err)
	}
	if got != "no display" {
		t.Fatalf("stored value = %q, want matched keyword", got)
	}
	if _, err := MeterConcern("it looks fine actually"); err == nil {
		t.Fatal("non-keyword concern should be rejected")
	}
}

func TestJobOrderRef(t *testing.T) {
	got, err := JobOrderRef("jo-20250601-1234")
	if err != nil {
		t.Fatalf("JobOrderRef: %v", err)
	}
	if got != "JO-20250601-1234" {
		t.Fatalf("normalized ref = %q", got)
	}
	for _, bad := range []string{"JO-2025-1234", "20250601-1234", "JO-20250601-12", ""} {
		if _, err := JobOrderRef(bad); err == nil {
			t.Errorf("JobOrderRef(%q) unexpectedly passed", bad)
		}
	}
}

func TestLocationParts(t *testing.T) {
	brgy, town := LocationParts("Brgy. Bacan, Cabatuan, Iloilo")
	if brgy != "Brgy. Bacan" {
		t.Fatalf("brgy = %q", brgy)
	}
	if town != "Cabatuan" {
		t.Fatalf("town = %q", town)
	}

	brgy, town = LocationParts("purok 2, sta barbara")
	if town != "Sta. Barbara" {
		t.Fatalf("canonical town = %q, want Sta. Barbara", town)
	}
	if brgy != "Purok 2" {
		t.Fatalf("brgy = %q", brgy)
	}

	if b, tn := LocationParts(""); b != "" || tn != "" {
		t.Fatal("empty address should produce empty parts")
	}

	_, tn := LocationParts("123 Main St, Springfield")
	if tn != "" {
		t.Fatalf("non-service-area town = %q, want empty", tn)
	}
}
