package server

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"connectrpc.com/connect"

	"github.com/chazu/mosaic/snapshot"
	"github.com/chazu/mosaic/store"
	"github.com/chazu/mosaic/world"
)

// Procedure paths for the host service. Hand-rolled rather than
// generated, so they are spelled out once here.
const (
	procOpenSession  = "/mosaic.v1.HostService/OpenSession"
	procCloseSession = "/mosaic.v1.HostService/CloseSession"
	procCreateBuffer = "/mosaic.v1.HostService/CreateBuffer"
	procCreateBlock  = "/mosaic.v1.HostService/CreateBlock"
	procEvaluate     = "/mosaic.v1.HostService/Evaluate"
	procInspect      = "/mosaic.v1.HostService/Inspect"
	procTick         = "/mosaic.v1.HostService/Tick"
	procSaveSnapshot = "/mosaic.v1.HostService/SaveSnapshot"
	procLoadSnapshot = "/mosaic.v1.HostService/LoadSnapshot"
)

// HostService exposes a running world to Connect clients. All world
// access funnels through the worker goroutine.
type HostService struct {
	worker   *WorldWorker
	handles  *HandleStore
	sessions *SessionStore
	store    *store.Store
}

// NewHostService creates a HostService. The store may be nil, in which
// case the snapshot endpoints report unavailability.
func NewHostService(worker *WorldWorker, handles *HandleStore, sessions *SessionStore, st *store.Store) *HostService {
	return &HostService{
		worker:   worker,
		handles:  handles,
		sessions: sessions,
		store:    st,
	}
}

// OpenSession starts a workspace session.
func (s *HostService) OpenSession(
	ctx context.Context,
	req *connect.Request[OpenSessionRequest],
) (*connect.Response[OpenSessionResponse], error) {
	session := s.sessions.Create(req.Msg.Name)
	return connect.NewResponse(&OpenSessionResponse{SessionId: session.ID}), nil
}

// CloseSession ends a session and releases its handles.
func (s *HostService) CloseSession(
	ctx context.Context,
	req *connect.Request[CloseSessionRequest],
) (*connect.Response[CloseSessionResponse], error) {
	if _, ok := s.sessions.Get(req.Msg.SessionId); !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("session %q not found", req.Msg.SessionId))
	}
	s.sessions.Destroy(req.Msg.SessionId)
	return connect.NewResponse(&CloseSessionResponse{}), nil
}

// CreateBuffer creates a named buffer and returns a handle to it.
func (s *HostService) CreateBuffer(
	ctx context.Context,
	req *connect.Request[CreateBufferRequest],
) (*connect.Response[CreateBufferResponse], error) {
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		return w.CreateBuffer(req.Msg.Name)
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	buf := result.(*world.Buffer)

	h := s.handles.Create(buf.ID, buf.Name, req.Msg.SessionId)
	return connect.NewResponse(&CreateBufferResponse{Handle: h, Name: buf.Name}), nil
}

// CreateBlock creates a block, optionally placing it in a buffer or
// under a parent block.
func (s *HostService) CreateBlock(
	ctx context.Context,
	req *connect.Request[CreateBlockRequest],
) (*connect.Response[CreateBlockResponse], error) {
	if req.Msg.Op == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("op is required"))
	}
	if req.Msg.Buffer != "" && req.Msg.Parent != "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("buffer and parent are mutually exclusive"))
	}

	var bufID, parentID world.ID
	if req.Msg.Buffer != "" {
		id, ok := s.handles.Lookup(req.Msg.Buffer)
		if !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("handle %q not found", req.Msg.Buffer))
		}
		bufID = id
	}
	if req.Msg.Parent != "" {
		id, ok := s.handles.Lookup(req.Msg.Parent)
		if !ok {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("handle %q not found", req.Msg.Parent))
		}
		parentID = id
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		var b *world.Block
		if req.Msg.Value != nil {
			b = w.NewLiteralBlock(payloadToValue(w, *req.Msg.Value))
		} else {
			b = w.NewBlock(w.Symbols.Intern(req.Msg.Op))
		}
		if bufID != world.NoID {
			if err := w.AppendTopLevel(bufID, b.ID); err != nil {
				return err
			}
		}
		if parentID != world.NoID {
			if err := w.Adopt(parentID, b.ID); err != nil {
				return err
			}
		}
		return b
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if opErr, ok := result.(error); ok {
		return nil, connect.NewError(connect.CodeFailedPrecondition, opErr)
	}

	b := result.(*world.Block)
	h := s.handles.Create(b.ID, req.Msg.Op, req.Msg.SessionId)
	return connect.NewResponse(&CreateBlockResponse{Handle: h}), nil
}

// Evaluate runs the two-stage pipeline on the referenced block.
func (s *HostService) Evaluate(
	ctx context.Context,
	req *connect.Request[EvaluateRequest],
) (*connect.Response[EvaluateResponse], error) {
	id, ok := s.handles.Lookup(req.Msg.Handle)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("handle %q not found", req.Msg.Handle))
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		v, err := w.Evaluate(id)
		if err != nil {
			return err
		}
		p := valueToPayload(w, v)
		return &p
	})
	if err != nil {
		return connect.NewResponse(&EvaluateResponse{
			Success:      false,
			ErrorMessage: err.Error(),
		}), nil
	}
	if evalErr, ok := result.(error); ok {
		return connect.NewResponse(&EvaluateResponse{
			Success:      false,
			ErrorMessage: evalErr.Error(),
		}), nil
	}

	return connect.NewResponse(&EvaluateResponse{
		Success: true,
		Result:  result.(*ValuePayload),
	}), nil
}

// Inspect reports the structure of the referenced block.
func (s *HostService) Inspect(
	ctx context.Context,
	req *connect.Request[InspectRequest],
) (*connect.Response[InspectResponse], error) {
	id, ok := s.handles.Lookup(req.Msg.Handle)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("handle %q not found", req.Msg.Handle))
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		b, err := w.Block(id)
		if err != nil {
			return err
		}
		res := &InspectResponse{
			Op:      w.Symbols.Name(b.Op),
			Inputs:  len(b.Inputs),
			Visible: b.Visible,
			Pinned:  b.Pinned,
			Tasks:   len(b.Tasks),
		}
		for tag := range b.Tags {
			res.Tags = append(res.Tags, w.Symbols.Name(tag))
		}
		sort.Strings(res.Tags)
		for _, v := range b.Results {
			res.Results = append(res.Results, valueToPayload(w, v))
		}
		return res
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if opErr, ok := result.(error); ok {
		return nil, connect.NewError(connect.CodeNotFound, opErr)
	}
	return connect.NewResponse(result.(*InspectResponse)), nil
}

// Tick advances the scheduler. A zero or negative count means one tick.
func (s *HostService) Tick(
	ctx context.Context,
	req *connect.Request[TickRequest],
) (*connect.Response[TickResponse], error) {
	count := req.Msg.Count
	if count <= 0 {
		count = 1
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		for i := 0; i < count; i++ {
			if err := w.Tick(); err != nil {
				return fmt.Errorf("tick %d: %w", i+1, err)
			}
		}
		return count
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if tickErr, ok := result.(error); ok {
		return nil, connect.NewError(connect.CodeInternal, tickErr)
	}
	return connect.NewResponse(&TickResponse{Ticks: result.(int)}), nil
}

// SaveSnapshot captures the world and writes it to the snapshot store.
func (s *HostService) SaveSnapshot(
	ctx context.Context,
	req *connect.Request[SaveSnapshotRequest],
) (*connect.Response[SaveSnapshotResponse], error) {
	if s.store == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("no snapshot store configured"))
	}
	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("name is required"))
	}

	result, err := s.worker.Do(func(w *world.World) interface{} {
		img, err := snapshot.Capture(w)
		if err != nil {
			return err
		}
		data, err := snapshot.Marshal(img)
		if err != nil {
			return err
		}
		return data
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	if capErr, ok := result.(error); ok {
		return nil, connect.NewError(connect.CodeInternal, capErr)
	}

	data := result.([]byte)
	if err := s.store.Save(req.Msg.Name, data); err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&SaveSnapshotResponse{Bytes: len(data)}), nil
}

// LoadSnapshot replaces the running world with a stored image. All live
// handles are invalidated.
func (s *HostService) LoadSnapshot(
	ctx context.Context,
	req *connect.Request[LoadSnapshotRequest],
) (*connect.Response[LoadSnapshotResponse], error) {
	if s.store == nil {
		return nil, connect.NewError(connect.CodeUnavailable, fmt.Errorf("no snapshot store configured"))
	}

	data, err := s.store.Load(req.Msg.Name)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	img, err := snapshot.Unmarshal(data)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var instanceID string
	err = s.worker.Swap(func(old *world.World) (*world.World, error) {
		fresh := world.NewWorld()
		if err := snapshot.Restore(fresh, img); err != nil {
			return nil, err
		}
		instanceID = fresh.InstanceID
		return fresh, nil
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	// Handles point at identifiers from the replaced world.
	s.handles.ReleaseAll()

	return connect.NewResponse(&LoadSnapshotResponse{InstanceId: instanceID}), nil
}

// ---------------------------------------------------------------------------
// Value conversion
// ---------------------------------------------------------------------------

func valueToPayload(w *world.World, v world.Value) ValuePayload {
	p := ValuePayload{Display: v.String()}
	switch v.Type {
	case world.TypeNil:
		p.Type = "nil"
	case world.TypeBool:
		p.Type = "bool"
		p.Int = v.Int
	case world.TypeInt:
		p.Type = "int"
		p.Int = v.Int
	case world.TypeFloat:
		p.Type = "float"
		p.Float = v.Float
	case world.TypeString:
		p.Type = "string"
		p.Str = v.Str
	case world.TypeSymbol:
		p.Type = "symbol"
		p.Sym = w.Symbols.Name(v.Sym)
	case world.TypeBlock:
		p.Type = "block"
		p.Block = fmt.Sprintf("%d", v.Block)
	case world.TypeList:
		p.Type = "list"
		for _, item := range v.List {
			p.List = append(p.List, valueToPayload(w, item))
		}
	case world.TypeNode:
		p.Type = "code"
	}
	return p
}

func payloadToValue(w *world.World, p ValuePayload) world.Value {
	switch p.Type {
	case "bool":
		return world.Bool(p.Int != 0)
	case "int":
		return world.Int64(p.Int)
	case "float":
		return world.Float64(p.Float)
	case "string":
		return world.Str(p.Str)
	case "symbol":
		return world.Sym(w.Symbols.Intern(p.Sym))
	case "list":
		items := make([]world.Value, 0, len(p.List))
		for _, item := range p.List {
			items = append(items, payloadToValue(w, item))
		}
		return world.ListVal(items...)
	default:
		return world.Nil()
	}
}
