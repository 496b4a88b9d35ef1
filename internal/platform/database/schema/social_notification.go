package schema

// SocialNotificationTable represents the 'social.notification' table
type SocialNotificationTable struct {
	Table     string
	ID        string
	UserID    string
	Message   string
	Read      string
	CreatedAt string
}

// SocialNotification is the schema definition for social.notification
var SocialNotification = SocialNotificationTable{
	Table:     "social.notification",
	ID:        "id",
	UserID:    "userid",
	Message:   "message",
	Read:      "read",
	CreatedAt: "createdat",
}
