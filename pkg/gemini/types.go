package gemini

import (
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// Product is one line item read from a receipt. Price is nil when the
// model could not read it.
type Product struct {
	Name        string           `json:"name"`
	EnglishName *string          `json:"english_name"`
	Price       *decimal.Decimal `json:"price"`
}

// ReceiptAnalysis is the structured answer of the model. ErrorCode 0 means
// the receipt passed validation and the remaining fields are filled.
type ReceiptAnalysis struct {
	ErrorCode   int             `json:"error_code"`
	StoreName   *string         `json:"store_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Products    []Product       `json:"products"`
}

// Validation error codes returned in ReceiptAnalysis.ErrorCode.
const (
	CodeOK                 = 0
	CodeNotReceipt         = 1
	CodeEdited             = 2
	CodeDateOutOfRange     = 3
	CodeDateUnreadable     = 4
	CodeOutsideCity        = 5
	CodeLocationUnreadable = 6
	CodeStoreUnreadable    = 7
)

// receiptSchema mirrors ReceiptAnalysis for the structured output mode.
var receiptSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"error_code":   {Type: genai.TypeInteger},
		"store_name":   {Type: genai.TypeString, Nullable: genai.Ptr(true)},
		"total_amount": {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
		"products": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":         {Type: genai.TypeString},
					"english_name": {Type: genai.TypeString, Nullable: genai.Ptr(true)},
					"price":        {Type: genai.TypeNumber, Nullable: genai.Ptr(true)},
				},
				Required: []string{"name", "english_name", "price"},
			},
		},
	},
	Required: []string{"error_code", "store_name", "total_amount", "products"},
}
