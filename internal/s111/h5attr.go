package s111

// #cgo LDFLAGS: -lhdf5
// #cgo darwin CFLAGS: -I/usr/local/include
// #cgo darwin LDFLAGS: -L/usr/local/lib
// #cgo linux,!arm64 CFLAGS: -I/usr/local/include -I/usr/lib/x86_64-linux-gnu/hdf5/serial/include
// #cgo linux,!arm64 LDFLAGS: -L/usr/local/lib -L/usr/lib/x86_64-linux-gnu/hdf5/serial/
// #cgo linux,arm64 CFLAGS: -I/usr/local/include -I/usr/lib/aarch64-linux-gnu/hdf5/serial/include
// #cgo linux,arm64 LDFLAGS: -L/usr/local/lib -L/usr/lib/aarch64-linux-gnu/hdf5/serial/
// #include <stdlib.h>
// #include "hdf5.h"
import "C"

import (
	"fmt"
	"unsafe"
)

// gonum.org/v1/hdf5 has no binding for H5Aexists and H5Adelete. Both take
// the identifier of an open object, as returned by Identifier.ID.

func attrExists(loc int64, name string) (bool, error) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	rc := C.H5Aexists(C.hid_t(loc), cname)
	if rc < 0 {
		return false, fmt.Errorf("hdf5: cannot look up attribute %q", name)
	}
	return rc > 0, nil
}

func deleteAttr(loc int64, name string) error {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	if C.H5Adelete(C.hid_t(loc), cname) < 0 {
		return fmt.Errorf("hdf5: cannot delete attribute %q", name)
	}
	return nil
}
