package constant

const (
	QueueStreamName = "ticket_market_queue_stream"
)

const (
	AllWildcard          = "events.>"
	NotificationWildcard = "events.notification.>"
	EmailWildcard        = "events.email.>"

	SubjectNotificationPrefix = "events.notification."
	SubjectSendEmail          = "events.email.send"
)

const (
	NotifyKindOrgApproved    = "org_approved"
	NotifyKindOrgRejected    = "org_rejected"
	NotifyKindOrderCompleted = "order_completed"
)
