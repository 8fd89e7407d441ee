package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldEntryCode  = "entry_code"
	FieldMeetTitle  = "meet_title"
	FieldUserID     = "user_id"
	FieldPeople     = "people"
	FieldPlaces     = "places"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentMeeting    = "meeting"
	ComponentSettlement = "settlement"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentReport     = "report"
	ComponentCache      = "cache"
)

// Operations defines standard operation names
const (
	OpRegister = "register"
	OpLoad     = "load"
	OpSave     = "save"
	OpRefresh  = "refresh"
	OpSettle   = "settle"
	OpExport   = "export"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
