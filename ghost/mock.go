package ghost

import (
	"github.com/stretchr/testify/mock"
)

// MockSession is a testify mock of Session for use in tests.
type MockSession struct {
	mock.Mock
}

var _ Session = (*MockSession)(nil)

func NewMockSession() *MockSession {
	return &MockSession{}
}

func (m *MockSession) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSession) SendRequest(cmd Command) (Response, error) {
	args := m.Called(cmd)
	return args.Get(0).(Response), args.Error(1)
}

func (m *MockSession) SendFireAndForget(cmd Command) error {
	args := m.Called(cmd)
	return args.Error(0)
}

func (m *MockSession) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSession) Close() error {
	args := m.Called()
	return args.Error(0)
}
