// Package snapshot is the persistence collaborator for a world: it
// captures the live buffers, blocks, and tasks into an image, and
// reconstructs them later, re-registering every object under its
// original identifier. The wire format is canonical CBOR and is owned
// entirely by this package; the core only exposes its
// BeforeSerialize/AfterDeserialize hooks.
package snapshot

// ImageVersion is the current image format version. Readers reject
// images with a different version rather than guessing.
const ImageVersion = 1

// Image is a serializable picture of one world instance. Symbols are
// written by name so the image is independent of any particular symbol
// table's numbering.
type Image struct {
	Version    int    `cbor:"1,keyasint"`
	InstanceID string `cbor:"2,keyasint"`
	NextID     uint32 `cbor:"3,keyasint"`

	Buffers []BufferRec `cbor:"4,keyasint"`
	Blocks  []BlockRec  `cbor:"5,keyasint"`
	Tasks   []TaskRec   `cbor:"6,keyasint"`

	ActiveBuffer uint32 `cbor:"7,keyasint"`
}

// BufferRec is the wire form of one buffer.
type BufferRec struct {
	ID     uint32   `cbor:"1,keyasint"`
	Name   string   `cbor:"2,keyasint"`
	Vars   []VarRec `cbor:"3,keyasint,omitempty"`
	Blocks []uint32 `cbor:"4,keyasint,omitempty"`
}

// BlockRec is the wire form of one block.
type BlockRec struct {
	ID     uint32   `cbor:"1,keyasint"`
	Op     string   `cbor:"2,keyasint"`
	Inputs []uint32 `cbor:"3,keyasint,omitempty"`
	Parent uint32   `cbor:"4,keyasint,omitempty"`

	Tags     []string `cbor:"5,keyasint,omitempty"`
	Category string   `cbor:"6,keyasint,omitempty"`

	Pinned    bool `cbor:"7,keyasint,omitempty"`
	Temporary bool `cbor:"8,keyasint,omitempty"`
	Visible   bool `cbor:"9,keyasint"`

	Events []EventRec `cbor:"10,keyasint,omitempty"`
	Tasks  []uint32   `cbor:"11,keyasint,omitempty"`
	Vars   []VarRec   `cbor:"12,keyasint,omitempty"`

	X      float64 `cbor:"13,keyasint,omitempty"`
	Y      float64 `cbor:"14,keyasint,omitempty"`
	Width  float64 `cbor:"15,keyasint,omitempty"`
	Height float64 `cbor:"16,keyasint,omitempty"`
}

// EventRec is the wire form of one event binding.
type EventRec struct {
	Key  string `cbor:"1,keyasint"`
	Mods uint8  `cbor:"2,keyasint,omitempty"`
	Task uint32 `cbor:"3,keyasint"`
}

// TaskRec is the wire form of one task.
type TaskRec struct {
	ID       uint32     `cbor:"1,keyasint"`
	Method   string     `cbor:"2,keyasint"`
	Target   uint32     `cbor:"3,keyasint,omitempty"`
	Args     []ValueRec `cbor:"4,keyasint,omitempty"`
	Clock    uint8      `cbor:"5,keyasint,omitempty"`
	Count    int        `cbor:"6,keyasint,omitempty"`
	Subtasks []uint32   `cbor:"7,keyasint,omitempty"`
	Finished bool       `cbor:"8,keyasint,omitempty"`
}

// VarRec is the wire form of one variable binding.
type VarRec struct {
	Name  string   `cbor:"1,keyasint"`
	Value ValueRec `cbor:"2,keyasint"`
}

// ValueRec is the wire form of one runtime value. Quoted-code values are
// not serializable and are written as nil; they are rebuilt by the next
// recompile after restore.
type ValueRec struct {
	Type  uint8      `cbor:"1,keyasint"`
	Int   int64      `cbor:"2,keyasint,omitempty"`
	Float float64    `cbor:"3,keyasint,omitempty"`
	Str   string     `cbor:"4,keyasint,omitempty"`
	Sym   string     `cbor:"5,keyasint,omitempty"`
	Block uint32     `cbor:"6,keyasint,omitempty"`
	List  []ValueRec `cbor:"7,keyasint,omitempty"`
}
