package models

import "time"

// Trade operations as stored
const (
	OperacaoCompra = "compra"
	OperacaoVenda  = "venda"
)

// Broker side constants used by inbound trade events
const (
	TradeTypeBuy  = "BUY"
	TradeTypeSell = "SELL"
)

// Trade is a buy or sell recorded against one position
type Trade struct {
	ID                    string    `json:"id,omitempty"`
	PositionID            string    `json:"position_id"`
	TipoOperacao          string    `json:"tipo_operacao"`
	Data                  time.Time `json:"data"`
	Quantidade            float64   `json:"quantidade"`
	Cotacao               float64   `json:"cotacao"`
	Total                 float64   `json:"total"`
	PrecoMedioNoAto       *float64  `json:"preco_medio_no_ato,omitempty"`
	ResultadoMonetario    *float64  `json:"resultado_monetario"`
	PerformancePercentual *float64  `json:"performance_percentual"`
	// Set for trades imported from a broker event
	OrderID string `json:"order_id,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Validate checks field constraints
func (t Trade) Validate() error {
	var errs ValidationErrors
	errs.required("position_id", t.PositionID)
	if t.TipoOperacao != OperacaoCompra && t.TipoOperacao != OperacaoVenda {
		errs.add("tipo_operacao", "must be %q or %q", OperacaoCompra, OperacaoVenda)
	}
	if t.Data.IsZero() {
		errs.add("data", "is required")
	}
	errs.positive("quantidade", t.Quantidade)
	errs.positive("cotacao", t.Cotacao)
	errs.positive("total", t.Total)
	if t.PrecoMedioNoAto != nil {
		errs.nonNegative("preco_medio_no_ato", *t.PrecoMedioNoAto)
	}
	return errs.err()
}
