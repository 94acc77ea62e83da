package logging

const emptyString = ""

const (
	errMsgNilService = "logging service is nil"
)

// Field names used on span lifecycle records.
const (
	fieldSpan      = "span"
	fieldSpanID    = "span_id"
	fieldSpanEvent = "span_event"
	fieldSpanDur   = "dur"
)
