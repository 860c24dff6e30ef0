package gemini

import (
	"fmt"
	"strings"
)

// BuildInstruction renders the extraction instruction for a receipt uploaded
// on date (YYYY-MM-DD) in city, given the known store names.
func BuildInstruction(date, city string, stores []string) string {
	var b strings.Builder

	b.WriteString("You analyze photographs of shopping receipts and answer in the given JSON format.\n")
	b.WriteString("Apply these checks in order and stop at the first failure.\n\n")

	fmt.Fprintf(&b, "1. The image must be an unedited photo of a convenience store, supermarket or drug store receipt. "+
		"If it is not such a receipt set error_code to %d. If it looks edited or generated set error_code to %d.\n",
		CodeNotReceipt, CodeEdited)
	fmt.Fprintf(&b, "2. The purchase date must fall within the 3 days up to and including %s. "+
		"If it is older or later set error_code to %d. If it cannot be read set error_code to %d.\n",
		date, CodeDateOutOfRange, CodeDateUnreadable)
	fmt.Fprintf(&b, "3. The store must be located in %s. "+
		"If it is elsewhere set error_code to %d. If the location cannot be read set error_code to %d.\n",
		city, CodeOutsideCity, CodeLocationUnreadable)
	fmt.Fprintf(&b, "4. Match the store against [%s] and use the listed name. "+
		"Without a match use the brand name without the branch. If no name can be read set error_code to %d.\n",
		strings.Join(stores, ", "), CodeStoreUnreadable)
	fmt.Fprintf(&b, "5. Extract every product with its name as printed, an English translation and the price before discounts, "+
		"and the grand total. Set error_code to %d.\n\n", CodeOK)

	b.WriteString("When error_code is not 0 return store_name null, total_amount 0 and an empty products list.\n")
	return b.String()
}
