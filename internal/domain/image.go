package domain

// ImageKind discriminates the shapes an image reference can take when it
// enters the system from the remote catalog.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageURL            // absolute or relative URL string
	ImagePath           // server-relative file path
	ImageFileID         // bare file identifier on the remote file service
)

// ImageRef is the normalized form of the heterogeneous image payloads the
// catalog returns (plain string, {url}, {path} or {id} objects). External
// data is converted once at the boundary; everything downstream works with
// this type only.
type ImageRef struct {
	Kind  ImageKind `json:"kind"`
	Value string    `json:"value,omitempty"`
}

// IsZero reports whether no usable reference is present.
func (r ImageRef) IsZero() bool {
	return r.Kind == ImageNone || r.Value == ""
}
