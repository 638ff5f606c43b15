package port

// Notifier displays a short user-facing message. Delivery is best-effort.
type Notifier interface {
	Notify(message string)
}
