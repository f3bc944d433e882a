package legform

import (
	"fmt"
	"strings"
)

// ExprFormat documents the compact leg syntax accepted by ParseExpr.
const ExprFormat = "ACTION TYPE QTY EXPIRATION STRIKE PREMIUM"

// ParseExpr splits a compact leg such as "BUY CALL 1 2024-03-15 450 2.5" into
// its raw fields. Fields may be separated by spaces or commas. Values are not
// validated here; ToLegs does that.
func ParseExpr(expr string) (SlotInput, error) {
	fields := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 6 {
		return SlotInput{}, fmt.Errorf("legform: leg %q: want %s", strings.TrimSpace(expr), ExprFormat)
	}
	return SlotInput{
		Action:     fields[0],
		Type:       fields[1],
		Quantity:   fields[2],
		Expiration: fields[3],
		Strike:     fields[4],
		Premium:    fields[5],
	}, nil
}

// Expr formats input back into the compact syntax.
func (in SlotInput) Expr() string {
	return strings.Join([]string{in.Action, in.Type, in.Quantity, in.Expiration, in.Strike, in.Premium}, " ")
}
