package mocks

import (
	"github.com/stretchr/testify/mock"
)

// Notifier is a mock of model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) Success(message string) {
	m.Called(message)
}

func (m *Notifier) Error(message string) {
	m.Called(message)
}

// Navigator is a mock of model.Navigator.
type Navigator struct {
	mock.Mock
}

func (m *Navigator) Location() string {
	args := m.Called()
	return args.String(0)
}

func (m *Navigator) Navigate(target string) {
	m.Called(target)
}
