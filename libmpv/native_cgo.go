// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

//go:build cgo && libmpv

package libmpv

/*
#include <stdlib.h>
#include <stdint.h>
#include <mpv/client.h>

// The real header takes enum mpv_format, the placeholder takes int.
static int bridge_set_property(mpv_handle *ctx, const char *name, int format, void *data) {
	return mpv_set_property(ctx, name, format, data);
}

static int bridge_get_property(mpv_handle *ctx, const char *name, int format, void *data) {
	return mpv_get_property(ctx, name, format, data);
}

static int bridge_command(mpv_handle *ctx, char **args) {
	return mpv_command(ctx, (const char **)args);
}

static int bridge_format(int i) {
	switch (i) {
	case 0: return MPV_FORMAT_NONE;
	case 1: return MPV_FORMAT_STRING;
	case 3: return MPV_FORMAT_FLAG;
	case 4: return MPV_FORMAT_INT64;
	case 5: return MPV_FORMAT_DOUBLE;
	}
	return -1;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Available reports whether this build links libmpv.
func Available() bool { return true }

// CheckABI compares the Format values against the MPV_FORMAT_* constants of
// the header the package was compiled with.
func CheckABI() error {
	for _, f := range []Format{FormatNone, FormatString, FormatFlag, FormatInt64, FormatDouble} {
		if got := int(C.bridge_format(C.int(f))); got != int(f) {
			return fmt.Errorf("format %s: header value %d, want %d", f, got, int(f))
		}
	}
	return nil
}

// Free releases memory that libmpv allocated and handed to the caller.
func Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	C.mpv_free(ptr)
}

func nativeErrorString(code ErrorCode) string {
	cStr := C.mpv_error_string(C.int(code))
	if cStr == nil {
		return ""
	}
	return C.GoString(cStr)
}

type cCore struct {
	handle *C.mpv_handle
}

func createCore() (core, error) {
	handle := C.mpv_create()
	if handle == nil {
		return nil, ErrUnavailable
	}
	return &cCore{handle: handle}, nil
}

func (c *cCore) initialize() ErrorCode {
	return ErrorCode(C.mpv_initialize(c.handle))
}

func (c *cCore) destroy() {
	C.mpv_destroy(c.handle)
	c.handle = nil
}

func (c *cCore) setOptionString(name, value string) ErrorCode {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cValue := C.CString(value)
	defer C.free(unsafe.Pointer(cValue))

	return ErrorCode(C.mpv_set_option_string(c.handle, cName, cValue))
}

func (c *cCore) command(args []string) ErrorCode {
	cArgs := make([]*C.char, len(args)+1)
	for i, arg := range args {
		cArgs[i] = C.CString(arg)
	}
	defer func() {
		for _, arg := range cArgs[:len(args)] {
			C.free(unsafe.Pointer(arg))
		}
	}()

	return ErrorCode(C.bridge_command(c.handle, &cArgs[0]))
}

func (c *cCore) setProperty(name string, format Format, value any) ErrorCode {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var data unsafe.Pointer
	switch format {
	case FormatString:
		cStr := C.CString(value.(string))
		defer C.free(unsafe.Pointer(cStr))
		data = unsafe.Pointer(&cStr)
	case FormatFlag:
		var flag C.int
		if value.(bool) {
			flag = 1
		}
		data = unsafe.Pointer(&flag)
	case FormatInt64:
		i := C.int64_t(value.(int64))
		data = unsafe.Pointer(&i)
	case FormatDouble:
		d := C.double(value.(float64))
		data = unsafe.Pointer(&d)
	default:
		return ErrPropertyFormat
	}

	return ErrorCode(C.bridge_set_property(c.handle, cName, C.int(format), data))
}

func (c *cCore) getProperty(name string, format Format) (any, ErrorCode) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	switch format {
	case FormatString:
		var cStr *C.char
		ret := ErrorCode(C.bridge_get_property(c.handle, cName, C.int(format), unsafe.Pointer(&cStr)))
		if ret < 0 {
			return nil, ret
		}
		if cStr == nil {
			return "", ret
		}
		defer Free(unsafe.Pointer(cStr))
		return C.GoString(cStr), ret
	case FormatFlag:
		var flag C.int
		ret := ErrorCode(C.bridge_get_property(c.handle, cName, C.int(format), unsafe.Pointer(&flag)))
		if ret < 0 {
			return nil, ret
		}
		return flag != 0, ret
	case FormatInt64:
		var i C.int64_t
		ret := ErrorCode(C.bridge_get_property(c.handle, cName, C.int(format), unsafe.Pointer(&i)))
		if ret < 0 {
			return nil, ret
		}
		return int64(i), ret
	case FormatDouble:
		var d C.double
		ret := ErrorCode(C.bridge_get_property(c.handle, cName, C.int(format), unsafe.Pointer(&d)))
		if ret < 0 {
			return nil, ret
		}
		return float64(d), ret
	}
	return nil, ErrPropertyFormat
}
