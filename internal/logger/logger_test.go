package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (s *LoggerTestSuite) TestNew() {
	l, err := New("debug")
	s.Require().NoError(err)
	s.NotNil(l.Logger)
	s.True(l.Core().Enabled(-1), "debug should be enabled")
}

func (s *LoggerTestSuite) TestNewUnknownLevel() {
	l, err := New("chatty")
	s.Require().NoError(err)
	s.False(l.Core().Enabled(-1), "unknown level falls back to info")
}

func (s *LoggerTestSuite) TestSyncNilLogger() {
	l := &Logger{}
	s.NoError(l.Sync())
}

func (s *LoggerTestSuite) TestNop() {
	l := NewNop()
	l.Info("discarded")
	s.NotNil(l.Logger)
}
