// Package push defines the transport-neutral payload and delivery result
// types shared by the Expo and FCM senders.
package push

import "fmt"

// Payload is the transport-neutral notification content. Each transport
// shapes it into its own wire format.
type Payload struct {
	Title    string
	Body     string
	Data     map[string]any
	ImageURL *string

	// Sound is the notification sound ("default" when empty).
	Sound string

	// ChannelID is the Android notification channel.
	ChannelID string

	// ThreadID groups related notifications (iOS thread-id, also used as
	// the FCM collapse key). Chat rooms set it to the room ID.
	ThreadID string

	// Badge, when set, updates the app icon badge count on iOS.
	Badge *int
}

// StringData returns Data with every value stringified. FCM rejects
// non-string data values, and Expo clients read strings consistently, so
// both transports send the stringified form.
func (p Payload) StringData() map[string]string {
	out := make(map[string]string, len(p.Data)+2)
	for k, v := range p.Data {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	// Title and body are deliberately duplicated into data: some client
	// SDK versions only surface data fields when the app is foregrounded.
	// Provider-compat rule, not redundancy to clean up.
	out["title"] = p.Title
	out["body"] = p.Body
	return out
}

// DeliveryResult is the outcome of one delivery attempt to one endpoint.
type DeliveryResult struct {
	// Token is the push token the attempt targeted, recovered from the
	// request (not the response) so attribution is unambiguous.
	Token string

	// OK is true when the provider accepted the message.
	OK bool

	// PermanentFailure is true when the provider confirmed the endpoint
	// will never accept delivery again and should be pruned.
	PermanentFailure bool

	// Raw is the provider's error or receipt detail for logging.
	Raw string
}
