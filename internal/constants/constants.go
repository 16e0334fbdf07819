package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyActor is the gin context key holding the services.Actor loaded by LoadActor.
	ContextKeyActor = "actor"
	// ContextKeyTask is the gin context key holding the task loaded by RequireTaskAccess.
	ContextKeyTask = "task"

	SessionCookieName = "task_session"

	MinPasswordLength = 8

	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// RevisionExtensionDays is how far a revision request pushes the deadline.
	RevisionExtensionDays = 3
	// WorkHoursPerDay converts estimated service hours into default deadline days.
	WorkHoursPerDay = 8

	// DeadlineLayout formats deadlines inside audit comments.
	DeadlineLayout = "2006-01-02"

	MaxUploadFiles = 20
	MaxBriefLength = 8000
)
