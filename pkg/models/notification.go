package models

// Recognized push event types.
const (
	EventTypeDeviceState = "device_state"
	EventTypeMotion      = "motion_event"
)

var eventTypeLabels = map[string]string{
	EventTypeDeviceState: "Device State Event",
	EventTypeMotion:      "Motion Event",
}

// EventTypeLabel returns the display label of a recognized event type.
func EventTypeLabel(eventType string) (string, bool) {
	l, ok := eventTypeLabels[eventType]
	return l, ok
}

// NotificationPayload is the data section of an inbound push message.
type NotificationPayload struct {
	ServerID   string `json:"serverId"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName,omitempty"`
	EventType  string `json:"eventType"`
}

// MobileConfig is served at /mobile-app-config.json
type MobileConfig struct {
	NotificationAPIEndpoint string `json:"notification_api_endpoint"`
}

// TokenPayload is the body of POST {endpoint}/store-token and /remove-token.
type TokenPayload struct {
	ClientID string `json:"client_id"`
	ServerID string `json:"server_id"`
	Token    string `json:"token,omitempty"`
}

// TokenResponse is the notification API reply.
type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
