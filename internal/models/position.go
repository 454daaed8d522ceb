package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is a renda variavel holding of one ticker within one asset class
type Position struct {
	ID                     string    `json:"id,omitempty"`
	Ticker                 string    `json:"ticker"`
	Tipo                   Tipo      `json:"tipo"`
	Quantidade             float64   `json:"quantidade"`
	PrecoMedio             float64   `json:"preco_medio"`
	CotacaoAtual           float64   `json:"cotacao_atual"`
	TotalCompra            float64   `json:"total_compra"`
	TotalMercado           float64   `json:"total_mercado"`
	ResultadoMonetario     float64   `json:"resultado_monetario"`
	PerformancePercentual  float64   `json:"performance_percentual"`
	PesoPercentual         float64   `json:"peso_percentual"`
	PesoDesejadoPercentual float64   `json:"peso_desejado_percentual"`
	AtualizadoEm           time.Time `json:"atualizado_em"`
}

// ComputeTotals derives the monetary totals from quantity, average cost and quote
func (p *Position) ComputeTotals() {
	quantidade := decimal.NewFromFloat(p.Quantidade)
	precoMedio := decimal.NewFromFloat(p.PrecoMedio)
	cotacao := decimal.NewFromFloat(p.CotacaoAtual)

	totalCompra := quantidade.Mul(precoMedio)
	totalMercado := quantidade.Mul(cotacao)

	performance := decimal.Zero
	if !precoMedio.IsZero() {
		performance = cotacao.Div(precoMedio).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	}

	p.TotalCompra = totalCompra.InexactFloat64()
	p.TotalMercado = totalMercado.InexactFloat64()
	p.ResultadoMonetario = totalMercado.Sub(totalCompra).InexactFloat64()
	p.PerformancePercentual = performance.InexactFloat64()
}

// Validate checks field constraints
func (p Position) Validate() error {
	var errs ValidationErrors
	errs.required("ticker", p.Ticker)
	if !p.Tipo.Valid() {
		errs.add("tipo", "invalid value %q", p.Tipo)
	}
	errs.nonNegative("quantidade", p.Quantidade)
	errs.nonNegative("preco_medio", p.PrecoMedio)
	errs.nonNegative("cotacao_atual", p.CotacaoAtual)
	errs.nonNegative("total_compra", p.TotalCompra)
	errs.nonNegative("total_mercado", p.TotalMercado)
	errs.nonNegative("peso_percentual", p.PesoPercentual)
	errs.nonNegative("peso_desejado_percentual", p.PesoDesejadoPercentual)
	if p.AtualizadoEm.IsZero() {
		errs.add("atualizado_em", "is required")
	}
	return errs.err()
}
