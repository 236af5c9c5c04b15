package events

import "github.com/koscakluka/ema-tutor/core/expression"

const KindExpressionChanged Kind = "expression.changed"

type ExpressionChanged struct {
	Base
	From expression.Expression
	To   expression.Expression
}

func NewExpressionChanged(from, to expression.Expression) ExpressionChanged {
	return ExpressionChanged{Base: NewBase(KindExpressionChanged), From: from, To: to}
}
