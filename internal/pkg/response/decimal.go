package response

import "github.com/shopspring/decimal"

// Money leaves every handler as a JSON number, not a quoted string.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
