package models

import (
	"strings"
	"time"
)

// PassivoCategoria identifies the kind of liability
type PassivoCategoria string

// Passivo categories
const (
	PassivoFinanciamento PassivoCategoria = "financiamento"
	PassivoEmprestimo    PassivoCategoria = "emprestimo"
	PassivoCartao        PassivoCategoria = "cartao"
	PassivoOutros        PassivoCategoria = "outros"
)

// Valid reports whether c is a known category
func (c PassivoCategoria) Valid() bool {
	switch c {
	case PassivoFinanciamento, PassivoEmprestimo, PassivoCartao, PassivoOutros:
		return true
	}
	return false
}

// Passivo is a liability stored in the passivos collection
type Passivo struct {
	ID          string           `json:"id,omitempty"`
	Nome        string           `json:"nome"`
	Categoria   PassivoCategoria `json:"categoria"`
	SaldoAtual  float64          `json:"saldo_atual"`
	TaxaJurosAA *float64         `json:"taxa_juros_aa,omitempty"`
	Vencimento  *time.Time       `json:"vencimento,omitempty"`
	Observacoes *string          `json:"observacoes,omitempty"`
}

// Normalize trims free-text fields
func (p *Passivo) Normalize() {
	p.Nome = strings.TrimSpace(p.Nome)
}

// Validate checks field constraints
func (p Passivo) Validate() error {
	var errs ValidationErrors
	errs.required("nome", p.Nome)
	if !p.Categoria.Valid() {
		errs.add("categoria", "invalid value %q", p.Categoria)
	}
	errs.nonNegative("saldo_atual", p.SaldoAtual)
	if p.TaxaJurosAA != nil {
		errs.nonNegative("taxa_juros_aa", *p.TaxaJurosAA)
	}
	if p.Observacoes != nil {
		errs.maxLen("observacoes", *p.Observacoes, 1024)
	}
	return errs.err()
}
