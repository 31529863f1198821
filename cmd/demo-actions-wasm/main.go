//go:build wasip1

// Command demo-actions-wasm is the demo counter module compiled as a WASI
// reactor. Build with:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o demo-actions.wasm ./cmd/demo-actions-wasm
//
// Every string argument and result is a packed ptr<<32|len value pointing
// into guest memory. The host writes arguments into buffers obtained from
// allocate and releases results with deallocate.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	demoactions "github.com/reglet-dev/reglet-demo-actions"
	"github.com/reglet-dev/reglet-demo-actions/abi"
)

//go:wasmimport reglet_host log_message
func hostLogMessage(packed uint64)

var (
	pinnedMu sync.Mutex
	pinned   = map[uint32][]byte{}

	requestSeq atomic.Uint64

	module = demoactions.New(demoactions.WithLogger(slog.New(abi.NewLogHandler(sendLog, slog.LevelInfo))))
)

func main() {}

func sendLog(data []byte) {
	if len(data) == 0 {
		return
	}
	hostLogMessage(abi.PackPtrLen(addr(data), uint32(len(data))))
	runtime.KeepAlive(data)
}

func addr(b []byte) uint32 {
	//nolint:gosec // WASM pointers are 32-bit
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}

// pin keeps b reachable until the host deallocates it.
func pin(b []byte) uint32 {
	p := addr(b)
	pinnedMu.Lock()
	pinned[p] = b
	pinnedMu.Unlock()
	return p
}

//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	return pin(make([]byte, size))
}

//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pinnedMu.Lock()
	delete(pinned, ptr)
	pinnedMu.Unlock()
}

func readString(packed uint64) string {
	ptr, length := abi.UnpackPtrLen(packed)
	if length == 0 {
		return ""
	}
	return strings.Clone(unsafe.String((*byte)(unsafe.Pointer(uintptr(ptr))), length))
}

func writeString(s string) uint64 {
	if s == "" {
		return 0
	}
	b := []byte(s)
	return abi.PackPtrLen(pin(b), uint32(len(b)))
}

func writeResult(resp string, err error) uint64 {
	if err != nil {
		doc, _ := json.Marshal(abi.ErrorDocument{Error: err.Error(), Fatal: true})
		return writeString(string(doc))
	}
	return writeString(resp)
}

func requestContext(op string) context.Context {
	return abi.WithRequestID(context.Background(), fmt.Sprintf("%s-%d", op, requestSeq.Add(1)))
}

//go:wasmexport INFO
func info() uint64 {
	return writeResult(module.Invoke(requestContext(demoactions.OpInfo), demoactions.Call{Operation: demoactions.OpInfo}))
}

//go:wasmexport POST
func post(action, params, network, memo uint64) uint64 {
	return writeResult(module.Invoke(requestContext(demoactions.OpPost), demoactions.Call{
		Operation: demoactions.OpPost,
		Action:    readString(action),
		Params:    readString(params),
		Network:   readString(network),
		Memo:      readString(memo),
	}))
}

//go:wasmexport GET
func get(action, params, network uint64) uint64 {
	return writeResult(module.Invoke(requestContext(demoactions.OpGet), demoactions.Call{
		Operation: demoactions.OpGet,
		Action:    readString(action),
		Params:    readString(params),
		Network:   readString(network),
	}))
}
