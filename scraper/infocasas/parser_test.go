package infocasas

import (
	"testing"

	"inmobiliaria-analyzer/config"
	"inmobiliaria-analyzer/models"
)

const fixturePage = `
<html><body>
<div class="results">
  <div class="property-item">
    <a href="/apartamento-en-pocitos/1001"></a>
    <span class="price">U$S 145.000</span>
    <div class="property-details">Apartamento 72 m² 2 dorm. 1 baño</div>
    <div class="location">POCITOS, Montevideo</div>
  </div>
  <div class="property-item">
    <a href="https://www.infocasas.com.uy/apartamento/1002"></a>
    <span class="price">Consultar</span>
    <div class="property-details">Monoambiente 35 m²</div>
    <div class="location">Barrio Nuevo Oeste </div>
  </div>
</div>
</body></html>`

func TestParsePageExtractsCards(t *testing.T) {
	p := NewParser(config.MontevideoNeighborhoods)

	props, err := p.ParsePage(fixturePage, models.OperationSale, "https://www.infocasas.com.uy")
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(props))
	}

	first := props[0]
	if first.Price == nil || *first.Price != 145000 {
		t.Errorf("price: got %v, want 145000", first.Price)
	}
	if first.AreaM2 == nil || *first.AreaM2 != 72 {
		t.Errorf("area: got %v, want 72", first.AreaM2)
	}
	if first.Rooms == nil || *first.Rooms != 2 {
		t.Errorf("rooms: got %v, want 2", first.Rooms)
	}
	if first.Baths == nil || *first.Baths != 1 {
		t.Errorf("baths: got %v, want 1", first.Baths)
	}
	if first.Neighborhood != "Pocitos" {
		t.Errorf("neighborhood: got %q, want canonical Pocitos", first.Neighborhood)
	}
	if first.Operation != models.OperationSale {
		t.Errorf("operation: got %q", first.Operation)
	}
	if first.URL != "https://www.infocasas.com.uy/apartamento-en-pocitos/1001" {
		t.Errorf("url: got %q", first.URL)
	}
}

func TestParsePageMissingFields(t *testing.T) {
	p := NewParser(config.MontevideoNeighborhoods)

	props, err := p.ParsePage(fixturePage, models.OperationRent, "https://www.infocasas.com.uy")
	if err != nil {
		t.Fatal(err)
	}

	second := props[1]
	if second.Price != nil {
		t.Errorf("price without digits should stay nil, got %v", *second.Price)
	}
	if second.Rooms != nil || second.Baths != nil {
		t.Error("missing rooms/baths should stay nil")
	}
	if second.Neighborhood != "Barrio Nuevo Oeste" {
		t.Errorf("unknown location should be kept as trimmed free text, got %q", second.Neighborhood)
	}
	if second.URL != "https://www.infocasas.com.uy/apartamento/1002" {
		t.Errorf("absolute url should pass through unchanged, got %q", second.URL)
	}
}

func TestParsePageEmpty(t *testing.T) {
	p := NewParser(nil)
	props, err := p.ParsePage("<html><body></body></html>", models.OperationSale, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != 0 {
		t.Errorf("expected no cards, got %d", len(props))
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantNil bool
	}{
		{"U$S 145.000", 145000, false},
		{"$ 32.500", 32500, false},
		{"U$S 1.250.000", 1250000, false},
		{"Consultar", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got := parsePrice(tt.raw)
		if tt.wantNil {
			if got != nil {
				t.Errorf("parsePrice(%q) = %v; want nil", tt.raw, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("parsePrice(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}
