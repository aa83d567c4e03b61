package model

import "github.com/shopspring/decimal"

// Round2 округляет денежную сумму до центов (половина — от нуля)
// округляем в момент вычисления, а не только при выводе
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
