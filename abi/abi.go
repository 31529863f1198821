// Package abi defines the wire contract between a demo-actions WASM guest and
// its host: export names, the packed pointer/length convention and the JSON
// documents exchanged through guest memory.
package abi

// Guest exports.
const (
	ExportInfo       = "INFO"
	ExportPost       = "POST"
	ExportGet        = "GET"
	ExportAllocate   = "allocate"
	ExportDeallocate = "deallocate"
	ExportInitialize = "_initialize"
)

// Host imports.
const (
	HostModule        = "reglet_host"
	HostLogMessage    = "log_message"
	DefaultPluginName = "demo-actions"
)

// PackPtrLen packs a guest pointer and length into the single uint64 used
// for every string argument and result crossing the boundary.
func PackPtrLen(ptr, length uint32) uint64 {
	return uint64(ptr)<<32 | uint64(length)
}

// UnpackPtrLen is the inverse of PackPtrLen.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	//nolint:gosec // WASM pointers are 32-bit
	return uint32(packed >> 32), uint32(packed)
}

// LogMessage is the payload of the log_message host function.
type LogMessage struct {
	Level   string      `json:"level"`
	Message string      `json:"message"`
	Attrs   []LogAttr   `json:"attrs,omitempty"`
	Context WireContext `json:"context,omitempty"`
}

// LogAttr is a typed log attribute. Value is always the string form;
// Type is one of string, int64, bool, float64, time, error, any.
type LogAttr struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// WireContext carries request correlation across the boundary.
type WireContext struct {
	RequestID string `json:"request_id,omitempty"`
}

// ErrorDocument is written by the guest when an export fails outright
// (for example, when the params document is not valid JSON).
type ErrorDocument struct {
	Error string `json:"error"`
	Fatal bool   `json:"fatal"`
}
