package server

// Wire messages for the host service. The service speaks Connect with a
// JSON codec; field names are part of the protocol.

// ValuePayload is the wire form of a runtime value.
type ValuePayload struct {
	Type    string         `json:"type"`
	Int     int64          `json:"int,omitempty"`
	Float   float64        `json:"float,omitempty"`
	Str     string         `json:"str,omitempty"`
	Sym     string         `json:"sym,omitempty"`
	Block   string         `json:"block,omitempty"`
	List    []ValuePayload `json:"list,omitempty"`
	Display string         `json:"display,omitempty"`
}

type OpenSessionRequest struct {
	Name string `json:"name,omitempty"`
}

type OpenSessionResponse struct {
	SessionId string `json:"session_id"`
}

type CloseSessionRequest struct {
	SessionId string `json:"session_id"`
}

type CloseSessionResponse struct{}

type CreateBufferRequest struct {
	SessionId string `json:"session_id"`
	Name      string `json:"name"`
}

type CreateBufferResponse struct {
	Handle string `json:"handle"`
	// Name is the actual buffer name, disambiguated if the requested
	// name was already live.
	Name string `json:"name"`
}

type CreateBlockRequest struct {
	SessionId string `json:"session_id"`
	Op        string `json:"op"`
	// Buffer places the block as a top-level of that buffer.
	Buffer string `json:"buffer,omitempty"`
	// Parent adopts the block under that parent instead.
	Parent string        `json:"parent,omitempty"`
	Value  *ValuePayload `json:"value,omitempty"`
}

type CreateBlockResponse struct {
	Handle string `json:"handle"`
}

type EvaluateRequest struct {
	Handle string `json:"handle"`
}

type EvaluateResponse struct {
	Success      bool          `json:"success"`
	Result       *ValuePayload `json:"result,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type InspectRequest struct {
	Handle string `json:"handle"`
}

type InspectResponse struct {
	Op      string         `json:"op"`
	Inputs  int            `json:"inputs"`
	Tags    []string       `json:"tags,omitempty"`
	Visible bool           `json:"visible"`
	Pinned  bool           `json:"pinned"`
	Results []ValuePayload `json:"results,omitempty"`
	Tasks   int            `json:"tasks"`
}

type TickRequest struct {
	Count int `json:"count,omitempty"`
}

type TickResponse struct {
	Ticks int `json:"ticks"`
}

type SaveSnapshotRequest struct {
	Name string `json:"name"`
}

type SaveSnapshotResponse struct {
	Bytes int `json:"bytes"`
}

type LoadSnapshotRequest struct {
	Name string `json:"name"`
}

type LoadSnapshotResponse struct {
	InstanceId string `json:"instance_id"`
}
