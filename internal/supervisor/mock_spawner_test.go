// Mock of ChildSpawner (spawner.go), written by hand in the shape MockGen
// generates.

package supervisor_test

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"

	supervisor "github.com/practiceraptor/execcore/internal/supervisor"
)

// MockChildSpawner is a mock of the ChildSpawner interface.
type MockChildSpawner struct {
	ctrl     *gomock.Controller
	recorder *MockChildSpawnerMockRecorder
}

// MockChildSpawnerMockRecorder is the mock recorder for MockChildSpawner.
type MockChildSpawnerMockRecorder struct {
	mock *MockChildSpawner
}

// NewMockChildSpawner creates a new mock instance.
func NewMockChildSpawner(ctrl *gomock.Controller) *MockChildSpawner {
	mock := &MockChildSpawner{ctrl: ctrl}
	mock.recorder = &MockChildSpawnerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockChildSpawner) EXPECT() *MockChildSpawnerMockRecorder {
	return m.recorder
}

// Spawn mocks base method.
func (m *MockChildSpawner) Spawn() (supervisor.Child, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Spawn")
	ret0, _ := ret[0].(supervisor.Child)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Spawn indicates an expected call of Spawn.
func (mr *MockChildSpawnerMockRecorder) Spawn() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Spawn", reflect.TypeOf((*MockChildSpawner)(nil).Spawn))
}
