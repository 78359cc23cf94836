package globals

// Context keys
type ContextKey string

const (
	UserIDKey  ContextKey = "userId"
	IsAdminKey ContextKey = "isAdmin"
	TokenKey   ContextKey = "token"
	RequestKey ContextKey = "requestId"
)
