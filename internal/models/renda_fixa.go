package models

import "time"

// RendaFixaTipo is the kind of fixed-income asset
type RendaFixaTipo string

// Renda fixa asset kinds
const (
	RendaFixaCDB              RendaFixaTipo = "cdb"
	RendaFixaLCI              RendaFixaTipo = "lci"
	RendaFixaLCA              RendaFixaTipo = "lca"
	RendaFixaTesouroPrefixado RendaFixaTipo = "tesouro_prefixado"
	RendaFixaTesouroIPCA      RendaFixaTipo = "tesouro_ipca"
	RendaFixaTesouroSelic     RendaFixaTipo = "tesouro_selic"
	RendaFixaDebenture        RendaFixaTipo = "debenture"
	RendaFixaOutros           RendaFixaTipo = "outros"
)

// Valid reports whether t is a known kind
func (t RendaFixaTipo) Valid() bool {
	switch t {
	case RendaFixaCDB, RendaFixaLCI, RendaFixaLCA, RendaFixaTesouroPrefixado,
		RendaFixaTesouroIPCA, RendaFixaTesouroSelic, RendaFixaDebenture, RendaFixaOutros:
		return true
	}
	return false
}

// Indexador is the rate index of a fixed-income asset
type Indexador string

// Indexadores
const (
	IndexadorPre      Indexador = "pre"
	IndexadorPosCDI   Indexador = "pos_cdi"
	IndexadorPosIPCA  Indexador = "pos_ipca"
	IndexadorPosSelic Indexador = "pos_selic"
	IndexadorOutros   Indexador = "outros"
)

// Valid reports whether i is a known index
func (i Indexador) Valid() bool {
	switch i {
	case IndexadorPre, IndexadorPosCDI, IndexadorPosIPCA, IndexadorPosSelic, IndexadorOutros:
		return true
	}
	return false
}

// DefaultMoeda is applied when a renda fixa payload has no currency
const DefaultMoeda = "brl"

// RendaFixaPosition is stored in the renda_fixa_positions collection
type RendaFixaPosition struct {
	ID              string        `json:"id,omitempty"`
	Ativo           string        `json:"ativo"`
	Tipo            RendaFixaTipo `json:"tipo"`
	Indexador       Indexador     `json:"indexador"`
	RentabilidadeAA float64       `json:"rentabilidade_aa"`
	Distribuidor    *string       `json:"distribuidor,omitempty"`
	Valor           float64       `json:"valor"`
	DataInicio      time.Time     `json:"data_inicio"`
	Vencimento      time.Time     `json:"vencimento"`
	Moeda           string        `json:"moeda"`
}

// ApplyDefaults fills optional fields
func (p *RendaFixaPosition) ApplyDefaults() {
	if p.Moeda == "" {
		p.Moeda = DefaultMoeda
	}
}

// Validate checks field constraints
func (p RendaFixaPosition) Validate() error {
	var errs ValidationErrors
	errs.required("ativo", p.Ativo)
	if !p.Tipo.Valid() {
		errs.add("tipo", "invalid value %q", p.Tipo)
	}
	if !p.Indexador.Valid() {
		errs.add("indexador", "invalid value %q", p.Indexador)
	}
	errs.nonNegative("rentabilidade_aa", p.RentabilidadeAA)
	if p.Distribuidor != nil {
		errs.maxLen("distribuidor", *p.Distribuidor, 128)
	}
	errs.positive("valor", p.Valor)
	if p.DataInicio.IsZero() {
		errs.add("data_inicio", "is required")
	}
	if p.Vencimento.IsZero() {
		errs.add("vencimento", "is required")
	}
	if n := len([]rune(p.Moeda)); n != 3 {
		errs.add("moeda", "must have exactly 3 characters")
	}
	return errs.err()
}
