package event

// Kind discriminates the record variants.
type Kind string

const (
	KindPageView Kind = "page_view"
	KindVital    Kind = "vital"
	KindError    Kind = "error"
	KindCustom   Kind = "custom"
)

// Payload bounds. Error text is truncated and custom properties are
// sanitized at construction so a single record can never blow up a batch.
const (
	MaxErrorMessageLen  = 1000
	MaxErrorStackLen    = 2000
	MaxCustomProperties = 50
	MaxCustomValueLen   = 500
)

// PageContext describes the page an event was observed on. The platform
// adapter keeps it current; the agent reads it when building envelopes.
type PageContext struct {
	URL            string
	Path           string
	Title          string
	Referrer       string
	ScreenWidth    int
	Timezone       string
	Language       string
	ConnectionType string
}

// Event is the unit flowing through the pipeline: a shared envelope plus
// exactly one variant payload. Records are immutable once constructed;
// nothing downstream of the collectors mutates them.
type Event struct {
	Kind           Kind   `json:"kind"`
	Timestamp      int64  `json:"timestamp"` // epoch milliseconds
	SiteID         string `json:"site_id"`
	URL            string `json:"url"`
	Path           string `json:"path"`
	Referrer       string `json:"referrer,omitempty"`
	ScreenWidth    int    `json:"screen_width,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	Language       string `json:"language,omitempty"`
	ConnectionType string `json:"connection_type,omitempty"`
	AgentVersion   string `json:"agent_version"`

	PageView *PageViewData `json:"page_view,omitempty"`
	Vital    *VitalData    `json:"vital,omitempty"`
	Error    *ErrorData    `json:"error,omitempty"`
	Custom   *CustomData   `json:"custom,omitempty"`
}

// PageViewData carries the page-view variant. ViewID is regenerated on
// every navigation; the server counts distinct IDs to approximate unique
// visitors without any persistent identity.
type PageViewData struct {
	Title  string `json:"title,omitempty"`
	ViewID string `json:"view_id"`
}

// VitalData carries a single web-vital measurement. MeasurementID lets the
// ingestion layer upsert idempotently when the same metric is reported by
// overlapping deliveries.
type VitalData struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Rating         string  `json:"rating"`
	MeasurementID  string  `json:"measurement_id"`
	NavigationType string  `json:"navigation_type,omitempty"`
}

// SourceLocation points at the origin of a page error, when known.
type SourceLocation struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// ErrorData carries the error variant with bounded message and stack.
type ErrorData struct {
	Message string          `json:"message"`
	Stack   string          `json:"stack,omitempty"`
	Source  *SourceLocation `json:"source,omitempty"`
}

// CustomData carries a caller-defined event with a flat property map.
type CustomData struct {
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

// NewError builds an ErrorData with message and stack truncated to their
// caps.
func NewError(message, stack string, source *SourceLocation) *ErrorData {
	return &ErrorData{
		Message: Truncate(message, MaxErrorMessageLen),
		Stack:   Truncate(stack, MaxErrorStackLen),
		Source:  source,
	}
}

// NewCustom builds a CustomData with its properties sanitized.
func NewCustom(name string, properties map[string]any) *CustomData {
	return &CustomData{
		Name:       name,
		Properties: SanitizeProperties(properties),
	}
}

// Truncate cuts s to at most limit bytes.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// SanitizeProperties copies the map keeping only primitive values
// (strings, numbers, booleans), truncating strings and capping the key
// count. Nested structures are dropped rather than serialized.
func SanitizeProperties(properties map[string]any) map[string]any {
	if len(properties) == 0 {
		return nil
	}

	sanitized := make(map[string]any, len(properties))
	for key, value := range properties {
		if len(sanitized) >= MaxCustomProperties {
			break
		}
		switch v := value.(type) {
		case string:
			sanitized[key] = Truncate(v, MaxCustomValueLen)
		case bool:
			sanitized[key] = v
		case int:
			sanitized[key] = v
		case int32:
			sanitized[key] = v
		case int64:
			sanitized[key] = v
		case float32:
			sanitized[key] = v
		case float64:
			sanitized[key] = v
		}
	}

	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}
