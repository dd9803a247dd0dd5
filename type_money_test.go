package folio

import (
	"encoding/json"
	"testing"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := USD(100.50)
	b := USD(0.25)

	if got := a.Add(b); !got.Equal(USD(100.75)) {
		t.Errorf("Add = %s", got)
	}
	if got := a.Sub(b); !got.Equal(USD(100.25)) {
		t.Errorf("Sub = %s", got)
	}
	if got := a.Mul(Q(3)); !got.Equal(USD(301.50)) {
		t.Errorf("Mul = %s", got)
	}
	if got := USD(301.50).Div(Q(3)); !got.Equal(USD(100.50)) {
		t.Errorf("Div = %s", got)
	}
	if got := USD(1500).DivPrice(USD(150)); !got.Equal(Q(10)) {
		t.Errorf("DivPrice = %s", got)
	}
}

// Money with no currency set is weak: it adopts the other operand's
// currency so normalized broker rows combine with configured amounts.
func TestMoney_WeakCurrency(t *testing.T) {
	if got := NO(10).Add(USD(5)); got.Currency() != "USD" {
		t.Errorf("currency = %q, want USD", got.Currency())
	}

	defer func() {
		if recover() == nil {
			t.Error("mixing two real currencies did not panic")
		}
	}()
	_ = USD(10).Add(M(5, "EUR"))
}

func TestMoney_Within(t *testing.T) {
	if !USD(100).Within(USD(100.009), 0.01) {
		t.Error("sub-tolerance difference reported")
	}
	if USD(100).Within(USD(100.02), 0.01) {
		t.Error("over-tolerance difference missed")
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(USD(1234.56))
	if err != nil {
		t.Fatal(err)
	}

	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(USD(1234.56)) {
		t.Errorf("round trip gave %s", back)
	}

	// Bare numbers decode as currencyless amounts.
	var bare Money
	if err := json.Unmarshal([]byte("42.5"), &bare); err != nil {
		t.Fatal(err)
	}
	if !bare.Equal(NO(42.5)) {
		t.Errorf("bare number gave %s", bare)
	}
}

func TestQuantity_Within(t *testing.T) {
	if !Q(100).Within(Q(100.0005), 0.001) {
		t.Error("sub-tolerance difference reported")
	}
	if Q(100).Within(Q(100.002), 0.001) {
		t.Error("over-tolerance difference missed")
	}
	if !Q(0).Within(Q(0), 0.001) {
		t.Error("zero not within zero")
	}
}

func TestPercentDifference(t *testing.T) {
	if got := PercentDifference(Q(110), Q(100)); !got.Equal(10) {
		t.Errorf("10%% case = %s", got)
	}
	if got := PercentDifference(Q(10), Q(0)); !got.Equal(100) {
		t.Errorf("zero actual = %s, want 100%%", got)
	}
	if got := PercentDifference(Q(0), Q(0)); !got.Equal(0) {
		t.Errorf("both zero = %s, want 0%%", got)
	}
}
