package sendbox

const (
	MethodMotorcycle = "motorcycle"
	MethodVan        = "van"
)

const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// Defaults applied when product metadata is incomplete. One policy for every
// call path, so quotes and webhook-triggered bookings never diverge.
const (
	DefaultSizeCategory = SizeMedium
	DefaultWeight       = 1.0
)

// DetermineMethod selects the transport for a shipment. Large packages and
// interstate routes need a van; everything else rides a motorcycle. The rule
// is shared by the quote, direct booking and payment-webhook paths.
func DetermineMethod(sizeCategory, originState, destinationState string) string {
	interstate := originState != destinationState
	if sizeCategory == SizeLarge || interstate {
		return MethodVan
	}
	return MethodMotorcycle
}
