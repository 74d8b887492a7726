/*
Package rsrc reads and writes classic-Mac resource containers: the
original resource fork layout and the Rez layout used by Windows ports.

A container holds typed, numbered resources. The model here is a plain
in-memory map: read a file, enumerate or mutate resources, write it back.
Type and resource listings return snapshots, so a pass may add or remove
resources while iterating an earlier listing.
*/
package rsrc

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
)

// Format identifies a container layout on disk.
type Format int

const (
	FormatClassic Format = iota
	FormatRez
)

// File is an in-memory resource container.
type File struct {
	types  []*Type
	format Format
}

// Type groups the resources sharing one four-character type code.
type Type struct {
	file      *File
	code      string
	resources []*Resource
}

// Resource is a single typed, numbered resource.
type Resource struct {
	typ  *Type
	id   int
	name string
	data []byte
}

// New returns an empty container in the classic format.
func New() *File {
	return &File{}
}

// ReadFile loads a container, sniffing the layout from its signature.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if bytes.HasPrefix(data, []byte(rezSignature)) {
		f, err := parseRez(data)
		return f, errors.Wrap(err, "rsrc: reading rez container")
	}
	f, err := parseFork(data)
	return f, errors.Wrap(err, "rsrc: reading resource fork")
}

// CurrentFormat reports the layout the container was read from.
func (f *File) CurrentFormat() Format { return f.format }

// Types returns a snapshot of the container's type list.
func (f *File) Types() []*Type {
	types := make([]*Type, len(f.types))
	copy(types, f.types)
	return types
}

// TypeContainer returns the type with the given code, or nil.
func (f *File) TypeContainer(code string) *Type {
	for _, t := range f.types {
		if t.code == code {
			return t
		}
	}
	return nil
}

// Find returns the resource with the given type and id, or nil.
func (f *File) Find(code string, id int) *Resource {
	t := f.TypeContainer(code)
	if t == nil {
		return nil
	}
	for _, r := range t.resources {
		if r.id == id {
			return r
		}
	}
	return nil
}

// AddResource adds a resource, replacing any existing resource with the
// same type and id.
func (f *File) AddResource(code string, id int, name string, data []byte) *Resource {
	t := f.TypeContainer(code)
	if t == nil {
		t = &Type{file: f, code: code}
		f.types = append(f.types, t)
	}
	r := &Resource{typ: t, id: id, name: name, data: data}
	for i, existing := range t.resources {
		if existing.id == id {
			existing.typ = nil
			t.resources[i] = r
			return r
		}
	}
	t.resources = append(t.resources, r)
	return r
}

// Write serializes the container to path in the requested layout.
func (f *File) Write(path string, format Format) error {
	var data []byte
	var err error
	if format == FormatRez {
		data, err = f.buildRez()
	} else {
		data, err = f.buildFork()
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	f.format = format
	return nil
}

// Code returns the type's four-character code.
func (t *Type) Code() string { return t.code }

// Count returns the number of resources of this type.
func (t *Type) Count() int { return len(t.resources) }

// Resources returns a snapshot of the type's resource list.
func (t *Type) Resources() []*Resource {
	resources := make([]*Resource, len(t.resources))
	copy(resources, t.resources)
	return resources
}

// Data returns the resource's bytes. The slice is owned by the resource;
// callers must not modify it.
func (r *Resource) Data() []byte { return r.data }

// SetData replaces the resource's bytes.
func (r *Resource) SetData(data []byte) { r.data = data }

// ID returns the resource id.
func (r *Resource) ID() int { return r.id }

// Name returns the resource name, which may be empty.
func (r *Resource) Name() string { return r.name }

// TypeCode returns the four-character code of the resource's type.
func (r *Resource) TypeCode() string {
	if r.typ == nil {
		return ""
	}
	return r.typ.code
}

// Remove deletes the resource from its container. Listings taken before
// the removal still hold the detached resource.
func (r *Resource) Remove() {
	t := r.typ
	if t == nil {
		return
	}
	for i, existing := range t.resources {
		if existing == r {
			t.resources = append(t.resources[:i], t.resources[i+1:]...)
			break
		}
	}
	r.typ = nil
}
