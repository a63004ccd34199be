package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite covers the error primitives every layer relies on:
// wrapped domain errors keep their code, and errors.Is matches by code.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "tenant not found"}
		s.Equal("tenant not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodePaymentRequired}
		s.Equal("payment_required", err.Error())
	})
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	s.Run("same code different message", func() {
		s.True(errors.Is(New(CodeUnauthorized, "token expired"), &Error{Code: CodeUnauthorized}))
	})

	s.Run("different codes", func() {
		s.False(errors.Is(New(CodeUnauthorized, "x"), &Error{Code: CodeForbidden}))
	})

	s.Run("through fmt wrapping", func() {
		err := fmt.Errorf("fetch tenants: %w", New(CodeUnavailable, "api down"))
		s.True(errors.Is(err, &Error{Code: CodeUnavailable}))
	})
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("preserves original domain code", func() {
		original := New(CodeNotFound, "agent not found")
		wrapped := Wrap(original, CodeInternal, "delete agent")

		var domainErr *Error
		s.Require().True(errors.As(wrapped, &domainErr))
		s.Equal(CodeNotFound, domainErr.Code)
		s.Equal("delete agent", domainErr.Message)
	})

	s.Run("uses provided code for plain errors", func() {
		original := errors.New("connection reset")
		wrapped := Wrap(original, CodeUnavailable, "call api")

		s.True(HasCode(wrapped, CodeUnavailable))
		s.True(errors.Is(wrapped, original))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.False(HasCode(nil, CodeNotFound))
	s.False(HasCode(errors.New("plain"), CodeNotFound))
	s.True(HasCode(Wrap(New(CodeConflict, "dup"), CodeInternal, "wrapped"), CodeConflict))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeRateLimited, CodeOf(New(CodeRateLimited, "slow down")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))
}
