package device

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// State is the last reported state of a remote AR device. It is what the
// sketch session sees as its camera, tracking and UI collaborators.
type State struct {
	mu       sync.RWMutex
	position mgl64.Vec3
	forward  mgl64.Vec3
	tracking bool
	overUI   map[int]bool // touchID -> over UI
}

// NewState creates a state that is not tracking and looks down -Z.
func NewState() *State {
	return &State{
		forward: mgl64.Vec3{0, 0, -1},
		overUI:  make(map[int]bool),
	}
}

func (st *State) SetPose(position, forward mgl64.Vec3) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.position = position
	st.forward = forward
}

func (st *State) SetTracking(tracking bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.tracking = tracking
}

func (st *State) SetPointerOverUI(touchID int, over bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if over {
		st.overUI[touchID] = true
	} else {
		delete(st.overUI, touchID)
	}
}

func (st *State) CameraPose() (mgl64.Vec3, mgl64.Vec3) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.position, st.forward
}

func (st *State) SessionIsTracking() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.tracking
}

func (st *State) IsPointerOverUI(touchID int) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.overUI[touchID]
}
