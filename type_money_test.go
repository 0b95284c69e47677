package harvest

import "testing"

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{USD(-5), "-$5.00"},
		{USD(0.005), "$0.01"},
		{USD(2.0049), "$2.00"},
		{NO(3.14159), "3.14"},
	}
	for _, tc := range testCases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("Money(%s).String() = %q, want %q", tc.m.Decimal(), got, tc.want)
		}
	}
}

func TestMoney_SignedString(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{USD(12), "+$12.00"},
		{USD(-12), "-$12.00"},
		{USD(0.001), "-"},
		{Money{}, "-"},
	}
	for _, tc := range testCases {
		if got := tc.m.SignedString(); got != tc.want {
			t.Errorf("Money(%s).SignedString() = %q, want %q", tc.m.Decimal(), got, tc.want)
		}
	}
}

func TestMoney_ExactArithmetic(t *testing.T) {
	// 0.1 + 0.2 is not 0.3 with binary floats.
	sum := USD(0.1).Add(USD(0.2))
	if !sum.Equal(USD(0.3)) {
		t.Errorf("0.1 + 0.2 = %s, want 0.3", sum.Decimal())
	}
	if got := USD(10).Mul(Q(0.333)).Decimal().String(); got != "3.33" {
		t.Errorf("10 × 0.333 = %s, want 3.33", got)
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	var zero Money
	if got := zero.Add(USD(1)).Currency(); got != "USD" {
		t.Errorf("zero.Add(USD).Currency() = %q, want USD", got)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("USD + EUR did not panic")
		}
	}()
	USD(1).Add(M(1, "EUR"))
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("1234.567", "USD")
	if err != nil {
		t.Fatalf("ParseMoney() error = %v", err)
	}
	if got := m.Decimal().String(); got != "1234.567" {
		t.Errorf("ParseMoney() = %s, want 1234.567", got)
	}
	if _, err := ParseMoney("$12", "USD"); err == nil {
		t.Errorf("ParseMoney(\"$12\") succeeded, want an error")
	}
}

func TestPercent_SignedString(t *testing.T) {
	testCases := []struct {
		p    Percent
		want string
	}{
		{P(12.345), "+12.35%"},
		{P(-20), "-20.00%"},
		{P(0.001), "-"},
	}
	for _, tc := range testCases {
		if got := tc.p.SignedString(); got != tc.want {
			t.Errorf("Percent(%s).SignedString() = %q, want %q", tc.p.Decimal(), got, tc.want)
		}
	}
}
