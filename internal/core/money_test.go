package core

import "testing"

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: "12.34"},
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "integer", input: "500", want: "500"},
		{name: "surrounding space", input: " 9.99 ", want: "9.99"},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "explicit plus", input: "+5", wantErr: true},
		{name: "garbage", input: "12.3.4", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "sub-cent precision", input: "10.005", wantErr: true},
		{name: "comma sub-cent", input: "10,005", wantErr: true},
		{name: "redundant third decimal", input: "10.050", want: "10.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMoney(%q) expected error, got %s", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.input, err)
			}
			if got.Decimal.String() != tt.want {
				t.Errorf("ParseMoney(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyCents(t *testing.T) {
	// Sub-cent inputs never pass ingestion, but arithmetic results can carry
	// extra precision; Cents rounds those half-up on the third decimal.
	tests := []struct {
		input float64
		want  int64
	}{
		{input: 12.34, want: 1234},
		{input: 12.345, want: 1235},
		{input: 12.344, want: 1234},
		{input: 0.01, want: 1},
	}

	for _, tt := range tests {
		if got := MoneyFromFloat(tt.input).Cents(); got != tt.want {
			t.Errorf("Cents(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestMoneyValidateRejectsSubCentPrecision(t *testing.T) {
	if err := MoneyFromFloat(10.005).Validate(); err == nil {
		t.Fatal("expected sub-cent amount to fail validation")
	}
	if err := MoneyFromCents(1000).Validate(); err != nil {
		t.Fatalf("whole-cent amount should validate: %v", err)
	}
}

func TestRawPercent(t *testing.T) {
	tests := []struct {
		name  string
		part  float64
		whole float64
		want  float64
	}{
		{name: "under threshold", part: 420, whole: 500, want: 84},
		{name: "over limit stays uncapped", part: 650, whole: 500, want: 130},
		{name: "zero whole yields zero", part: 650, whole: 0, want: 0},
		{name: "zero part", part: 0, whole: 500, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RawPercent(MoneyFromFloat(tt.part), MoneyFromFloat(tt.whole))
			if got != tt.want {
				t.Errorf("RawPercent(%v, %v) = %v, want %v", tt.part, tt.whole, got, tt.want)
			}
		})
	}
}

func TestCappedPercent(t *testing.T) {
	if got := CappedPercent(MoneyFromFloat(650), MoneyFromFloat(500)); got != 100 {
		t.Errorf("CappedPercent over limit = %v, want 100", got)
	}
	if got := CappedPercent(MoneyFromFloat(420), MoneyFromFloat(500)); got != 84.0 {
		t.Errorf("CappedPercent = %v, want 84.0", got)
	}
	if got := CappedPercent(MoneyFromFloat(1), MoneyFromFloat(3)); got != 33.3 {
		t.Errorf("CappedPercent rounding = %v, want 33.3", got)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 84.04, want: 84.0},
		{in: 84.06, want: 84.1},
		{in: 20.0, want: 20.0},
		{in: -12.36, want: -12.4},
	}
	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
