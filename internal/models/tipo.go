package models

import "strings"

// Tipo is the asset class of a renda variavel position
type Tipo string

// Renda variavel asset classes
const (
	TipoFII               Tipo = "fii"
	TipoAcaoBR            Tipo = "acao_br"
	TipoStockUS           Tipo = "stock_us"
	TipoETF               Tipo = "etf"
	TipoREIT              Tipo = "reit"
	TipoFundoInvestimento Tipo = "fundo_investimento"
	TipoOutros            Tipo = "outros"
)

var allTipos = []Tipo{
	TipoFII,
	TipoAcaoBR,
	TipoStockUS,
	TipoETF,
	TipoREIT,
	TipoFundoInvestimento,
	TipoOutros,
}

// AllTipos returns every renda variavel asset class
func AllTipos() []Tipo {
	return append([]Tipo(nil), allTipos...)
}

// Valid reports whether t is a known asset class
func (t Tipo) Valid() bool {
	for _, known := range allTipos {
		if t == known {
			return true
		}
	}
	return false
}

// Categoria maps a route-facing slug to an asset class
type Categoria struct {
	Slug string
	Tipo Tipo
}

// categorias is ordered; grouped listings follow this order.
var categorias = []Categoria{
	{Slug: "acoes", Tipo: TipoAcaoBR},
	{Slug: "fiis", Tipo: TipoFII},
	{Slug: "stocks", Tipo: TipoStockUS},
	{Slug: "reits", Tipo: TipoREIT},
	{Slug: "etf", Tipo: TipoETF},
}

// Categorias returns the slug table in display order
func Categorias() []Categoria {
	return append([]Categoria(nil), categorias...)
}

// CategoriaTipos returns the tipos of the slug table in display order
func CategoriaTipos() []Tipo {
	tipos := make([]Tipo, 0, len(categorias))
	for _, c := range categorias {
		tipos = append(tipos, c.Tipo)
	}
	return tipos
}

// TipoForSlug resolves a categoria slug, ignoring case
func TipoForSlug(slug string) (Tipo, bool) {
	slug = strings.ToLower(slug)
	for _, c := range categorias {
		if c.Slug == slug {
			return c.Tipo, true
		}
	}
	return "", false
}

// SlugForTipo returns the categoria slug of a tipo, if it has one
func SlugForTipo(t Tipo) (string, bool) {
	for _, c := range categorias {
		if c.Tipo == t {
			return c.Slug, true
		}
	}
	return "", false
}
