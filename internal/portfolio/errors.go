package portfolio

// Reasons a trade is refused
const (
	ReasonInvalidAmounts = "quantidade e cotacao devem ser maiores que zero"
	ReasonInvalidTipo    = "tipo de transacao invalido"
	ReasonOversell       = "quantidade vendida excede a quantidade em carteira"
)

// TradeNotAllowedError is a business-rule violation on a trade request
type TradeNotAllowedError struct {
	Reason string
}

func (e *TradeNotAllowedError) Error() string {
	return e.Reason
}

func tradeNotAllowed(reason string) error {
	return &TradeNotAllowedError{Reason: reason}
}
