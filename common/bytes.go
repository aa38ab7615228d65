// Package common holds small helpers shared by the engine packages: input codes, frustum math and
// byte views for GPU uploads.
package common

import "unsafe"

// SliceToBytes views the backing array of data as bytes for a buffer write. The result aliases
// data and is nil for an empty slice.
//
// Parameters:
//   - data: the elements to view
//
// Returns:
//   - []byte: the byte view
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// StructToBytes views *v as bytes. The result aliases v.
func StructToBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}
