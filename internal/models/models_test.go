package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosition() Position {
	return Position{
		Ticker:                 "PETR4",
		Tipo:                   TipoAcaoBR,
		Quantidade:             10,
		PrecoMedio:             15,
		CotacaoAtual:           18,
		TotalCompra:            150,
		TotalMercado:           180,
		ResultadoMonetario:     30,
		PerformancePercentual:  20,
		PesoDesejadoPercentual: 30,
		AtualizadoEm:           time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCategoriaSlugTable(t *testing.T) {
	t.Run("slug resolves ignoring case", func(t *testing.T) {
		tipo, ok := TipoForSlug("FIIs")
		require.True(t, ok)
		assert.Equal(t, TipoFII, tipo)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, ok := TipoForSlug("cripto")
		assert.False(t, ok)
	})

	t.Run("every slug round-trips", func(t *testing.T) {
		for _, c := range Categorias() {
			tipo, ok := TipoForSlug(c.Slug)
			require.True(t, ok)
			slug, ok := SlugForTipo(tipo)
			require.True(t, ok)
			assert.Equal(t, c.Slug, slug)
		}
	})

	t.Run("display order", func(t *testing.T) {
		assert.Equal(t, []Tipo{TipoAcaoBR, TipoFII, TipoStockUS, TipoREIT, TipoETF}, CategoriaTipos())
	})

	t.Run("tipos without slug are still valid", func(t *testing.T) {
		_, ok := SlugForTipo(TipoFundoInvestimento)
		assert.False(t, ok)
		assert.True(t, TipoFundoInvestimento.Valid())
		assert.False(t, Tipo("cripto").Valid())
	})
}

func TestPosition_ComputeTotals(t *testing.T) {
	p := Position{Quantidade: 100, PrecoMedio: 28.5, CotacaoAtual: 30.1}
	p.ComputeTotals()

	assert.InDelta(t, 2850.0, p.TotalCompra, 1e-9)
	assert.InDelta(t, 3010.0, p.TotalMercado, 1e-9)
	assert.InDelta(t, 160.0, p.ResultadoMonetario, 1e-9)
	assert.InDelta(t, (30.1/28.5-1)*100, p.PerformancePercentual, 1e-9)

	zero := Position{Quantidade: 5, CotacaoAtual: 10}
	zero.ComputeTotals()
	assert.Equal(t, 0.0, zero.PerformancePercentual)
	assert.Equal(t, 50.0, zero.ResultadoMonetario)
}

func TestPosition_Validate(t *testing.T) {
	require.NoError(t, validPosition().Validate())

	p := validPosition()
	p.Ticker = " "
	p.Tipo = "cripto"
	p.Quantidade = -1
	p.AtualizadoEm = time.Time{}

	err := p.Validate()
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"ticker", "tipo", "quantidade", "atualizado_em"}, fields)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestTrade_Validate(t *testing.T) {
	trade := Trade{
		PositionID:   "p1",
		TipoOperacao: OperacaoCompra,
		Data:         time.Now(),
		Quantidade:   5,
		Cotacao:      20,
		Total:        100,
	}
	require.NoError(t, trade.Validate())

	trade.TipoOperacao = "short"
	trade.Quantidade = 0
	assert.Error(t, trade.Validate())
}

func TestTrade_NullResultForBuys(t *testing.T) {
	trade := Trade{PositionID: "p1", TipoOperacao: OperacaoCompra, Quantidade: 1, Cotacao: 1, Total: 1}

	data, err := json.Marshal(trade)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	v, present := doc["resultado_monetario"]
	assert.True(t, present)
	assert.Nil(t, v)
	_, hasID := doc["id"]
	assert.False(t, hasID)
}

func TestPassivo_Validate(t *testing.T) {
	p := Passivo{Nome: "  Financiamento casa ", Categoria: PassivoFinanciamento, SaldoAtual: 1000}
	p.Normalize()
	assert.Equal(t, "Financiamento casa", p.Nome)
	require.NoError(t, p.Validate())

	taxa := -1.0
	p.TaxaJurosAA = &taxa
	p.Categoria = "agiota"
	assert.Error(t, p.Validate())
}

func TestRendaFixaPosition_Validate(t *testing.T) {
	p := RendaFixaPosition{
		Ativo:           "CDB Banco X",
		Tipo:            RendaFixaCDB,
		Indexador:       IndexadorPosCDI,
		RentabilidadeAA: 110,
		Valor:           1000,
		DataInicio:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Vencimento:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	p.ApplyDefaults()
	assert.Equal(t, DefaultMoeda, p.Moeda)
	require.NoError(t, p.Validate())

	p.Valor = 0
	p.Moeda = "reais"
	assert.Error(t, p.Validate())
}

func TestProvento_Validate(t *testing.T) {
	p := Provento{PositionID: "p1", TipoProvento: "dividendo", Data: time.Now(), ValorMonetario: 12.5}
	p.ApplyDefaults()
	assert.Equal(t, MoedaBRL, p.Moeda)
	require.NoError(t, p.Validate())

	p.Moeda = "eur"
	assert.Error(t, p.Validate())
}
