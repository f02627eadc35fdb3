package brokerage

import "testing"

func TestMoneyString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{USD(10000), "$10,000.00"},
		{USD(-500), "-$500.00"},
		{USD(0.005), "$0.01"},
		{NO(12.5), "12.50"},
	}
	for _, tc := range tests {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Money(%s %s).String() = %q, want %q", tc.m.Decimal(), tc.m.Currency(), got, tc.want)
		}
	}
}

func TestMoneyWeakCurrency(t *testing.T) {
	got := NO(10).Add(USD(5))
	if want := USD(15); !got.Equal(want) {
		t.Errorf("NO(10).Add(USD(5)) = %v, want %v", got, want)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("USD(1).Add(EUR(1)) did not panic")
		}
	}()
	USD(1).Add(EUR(1))
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney(" 12.34 ", "USD")
	if err != nil {
		t.Fatalf("ParseMoney() unexpected error: %v", err)
	}
	if want := USD(12.34); !m.Equal(want) {
		t.Errorf("ParseMoney() = %v, want %v", m, want)
	}
	if _, err := ParseMoney("twelve", "USD"); err == nil {
		t.Errorf("ParseMoney(%q) = nil error, want an error", "twelve")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    Quantity
		wantErr bool
	}{
		{"20", 20, false},
		{"-3", -3, false},
		{"1.5", 0, true},
		{"", 0, true},
	}
	for _, tc := range tests {
		got, err := ParseQuantity(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseQuantity(%q) = %v, %v; want %v, error %v", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
}
