package config

// Specialization names. They double as the registry keys of the specializers
// and as the SpecializationName stamped on specialized functions.
const (
	StridedSpecialization = "strided"
	ContigSpecialization  = "contig"
)

// DefaultSpecializations are run when the configuration names none.
var DefaultSpecializations = []string{StridedSpecialization, ContigSpecialization}

// DefaultDtype is the dtype of kernel parameters that do not name one.
const DefaultDtype = "double"

// ConfigFileNames are searched, in order, when no -config flag is given.
var ConfigFileNames = []string{"minispec.yaml", "minispec.yml"}

// Environment variables read by the driver.
const (
	EnvTrace           = "MINISPEC_TRACE"
	EnvColor           = "MINISPEC_COLOR"
	EnvSpecializations = "MINISPEC_SPECIALIZATIONS"
)

// Elementwise operators accepted in kernel bodies.
var KernelOperators = []string{"+", "-", "*", "/"}

// IsTraceMode enables dispatch tracing and access-path recording.
// It is set once at startup by the driver.
var IsTraceMode = false
