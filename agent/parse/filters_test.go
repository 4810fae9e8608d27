package parse

import (
	"testing"
	"time"

	contractx "github.com/renzovallejo/lima-property-agent/agent/contract"
)

func intPtr(v int) *int { return &v }

func TestFiltersBedrooms(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want *int
	}{
		{"busco un depa de 3 dormitorios", intPtr(3)},
		{"quiero 2 habitaciones", intPtr(2)},
		{"algo con 4 cuartos", intPtr(4)},
		{"un estudio en barranco", intPtr(0)},
		{"hola buenas", nil},
	}
	for _, tc := range cases {
		got := Filters(tc.text)
		if tc.want == nil {
			if got.Bedrooms != nil {
				t.Errorf("Filters(%q).Bedrooms = %d, want nil", tc.text, *got.Bedrooms)
			}
			continue
		}
		if got.Bedrooms == nil || *got.Bedrooms != *tc.want {
			t.Errorf("Filters(%q).Bedrooms = %v, want %d", tc.text, got.Bedrooms, *tc.want)
		}
	}
}

func TestFiltersPrice(t *testing.T) {
	t.Parallel()

	got := Filters("menos de 150 mil dólares")
	if got.MaxPrice == nil || *got.MaxPrice != 150000 {
		t.Fatalf("MaxPrice = %v, want 150000", got.MaxPrice)
	}

	got = Filters("desde 80,000 hasta 120,000")
	if got.MinPrice == nil || *got.MinPrice != 80000 {
		t.Errorf("MinPrice = %v, want 80000", got.MinPrice)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 120000 {
		t.Errorf("MaxPrice = %v, want 120000", got.MaxPrice)
	}
}

func TestFiltersDistrictAndType(t *testing.T) {
	t.Parallel()

	got := Filters("busco un depa en surco")
	if got.District != "Santiago de Surco" {
		t.Errorf("District = %q, want Santiago de Surco", got.District)
	}
	if got.PropertyType != "departamento" {
		t.Errorf("PropertyType = %q, want departamento", got.PropertyType)
	}
}

func TestAccumulateNewerWins(t *testing.T) {
	t.Parallel()

	now := time.Now()
	turns := []contractx.Turn{
		{Role: contractx.RoleHuman, Text: "busco un depa de 2 dormitorios en miraflores", Timestamp: now},
		{Role: contractx.RoleAssistant, Text: "claro, 3 dormitorios en lince", Timestamp: now},
		{Role: contractx.RoleHuman, Text: "mejor 3 dormitorios", Timestamp: now},
	}

	got := Accumulate(turns, "que sea en barranco")

	if got.Bedrooms == nil || *got.Bedrooms != 3 {
		t.Errorf("Bedrooms = %v, want 3", got.Bedrooms)
	}
	if got.District != "Barranco" {
		t.Errorf("District = %q, want Barranco", got.District)
	}
	if got.PropertyType != "departamento" {
		t.Errorf("PropertyType = %q, want departamento", got.PropertyType)
	}
}
