package mediacore

import "log"

// Logger is the package-level logging sink. Callers can replace it with
// SetLogger to route engine diagnostics into their own logging stack.
type Logger interface {
	Printf(format string, v ...any)
}

var pkgLogger Logger = log.Default()

// SetLogger replaces the package-level logger used by the engine.
func SetLogger(logger Logger) {
	pkgLogger = logger
}

// aspect tags a log line with the subsystem that produced it, following
// the aspects named by the error handling design: Engine.Commands,
// Engine.Reading, Engine.Decoding, Engine.Rendering, Container,
// Container.Component, ReferenceCounter.
type aspect string

const (
	aspectCommands  aspect = "Engine.Commands"
	aspectReading   aspect = "Engine.Reading"
	aspectDecoding  aspect = "Engine.Decoding"
	aspectRendering aspect = "Engine.Rendering"
	aspectContainer aspect = "Container"
	aspectComponent aspect = "Container.Component"
	aspectRefCount  aspect = "ReferenceCounter"
	aspectEvent     aspect = "Engine.Events"
)

func logf(a aspect, format string, v ...any) {
	pkgLogger.Printf("["+string(a)+"] "+format, v...)
}
