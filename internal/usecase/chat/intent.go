package chat

import "strings"

// Intent is what the user asked for.
type Intent string

// Supported intents. Everything that is not a requisition runs a search.
const (
	IntentSearch            Intent = "SEARCH_PRODUCTS"
	IntentCreateRequisition Intent = "CREATE_REQUISITION"
)

var requisitionPhrases = []string{
	"create requisition", "create a requisition", "create purchase requisition",
	"make requisition", "make a requisition", "raise a pr", "raise pr",
	"purchase requisition", "采购申请", "申请",
}

// requisitionVerbs and requisitionNouns must both occur for a loose match,
// e.g. "create an order for safety shoes".
var (
	requisitionVerbs = []string{"create", "make", "raise"}
	requisitionNouns = []string{"requisition", "purchase", "order"}
)

// DetectIntent classifies a chat message.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, p := range requisitionPhrases {
		if strings.Contains(lower, p) {
			return IntentCreateRequisition
		}
	}
	if containsAny(lower, requisitionVerbs) && containsAny(lower, requisitionNouns) {
		return IntentCreateRequisition
	}
	return IntentSearch
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
