package models

import "time"

// Moeda is the currency of a provento
type Moeda string

// Supported currencies
const (
	MoedaBRL Moeda = "brl"
	MoedaUSD Moeda = "usd"
)

// Provento is an income event (dividend, JCP, rendimento) of a position
type Provento struct {
	ID             string    `json:"id,omitempty"`
	PositionID     string    `json:"position_id"`
	TipoProvento   string    `json:"tipo_provento"`
	Data           time.Time `json:"data"`
	ValorMonetario float64   `json:"valor_monetario"`
	Moeda          Moeda     `json:"moeda"`
}

// ApplyDefaults fills optional fields
func (p *Provento) ApplyDefaults() {
	if p.Moeda == "" {
		p.Moeda = MoedaBRL
	}
}

// Validate checks field constraints
func (p Provento) Validate() error {
	var errs ValidationErrors
	errs.required("position_id", p.PositionID)
	errs.required("tipo_provento", p.TipoProvento)
	if p.Data.IsZero() {
		errs.add("data", "is required")
	}
	errs.positive("valor_monetario", p.ValorMonetario)
	if p.Moeda != MoedaBRL && p.Moeda != MoedaUSD {
		errs.add("moeda", "invalid value %q", p.Moeda)
	}
	return errs.err()
}
