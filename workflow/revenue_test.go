package workflow

import (
	"testing"

	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/shopspring/decimal"
)

func TestPrudenceCoefficientZeroIsFullyDoubtful(t *testing.T) {
	zero := decimal.Zero
	coefficient := prudenceCoefficientOrDefault(&zero)
	if !coefficient.IsZero() {
		t.Fatalf("explicit 0 must be kept, got %s", coefficient)
	}

	recognized := decimal.NewFromInt(5000000)
	net, provision, err := models.ComputePrudence(recognized, coefficient)
	if err != nil {
		t.Fatalf("coefficient 0 is in range: %v", err)
	}
	if !net.IsZero() {
		t.Errorf("net = %s, want 0", net)
	}
	if !provision.Equal(recognized) {
		t.Errorf("provision = %s, want the full recognized amount", provision)
	}
}

func TestPrudenceCoefficientDefaultsOnlyWhenAbsent(t *testing.T) {
	if got := prudenceCoefficientOrDefault(nil); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("absent coefficient should default to 1, got %s", got)
	}

	half := decimal.NewFromFloat(0.5)
	if got := prudenceCoefficientOrDefault(&half); !got.Equal(half) {
		t.Errorf("explicit 0.5 must be kept, got %s", got)
	}
}
