// Package domain provides type-safe identifiers so resource IDs cannot be mixed up at compile time.
package domain

import (
	"regexp"

	"github.com/google/uuid"

	dErrors "tausepro/pkg/domain-errors"
)

// Backend resource IDs are opaque strings ("tenant_colombia_1", "agent-7").
// Console session IDs are UUIDs minted by the console itself.
type (
	TenantID  string
	UserID    string
	ModuleID  string
	AgentID   string
	SessionID uuid.UUID
)

// MaxResourceIDLength bounds IDs that end up in URL paths.
const MaxResourceIDLength = 128

// validResourceID keeps IDs safe to interpolate into REST paths and headers.
var validResourceID = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func ParseTenantID(s string) (TenantID, error) {
	v, err := parseResourceID(s, "tenant ID")
	return TenantID(v), err
}

func ParseUserID(s string) (UserID, error) {
	v, err := parseResourceID(s, "user ID")
	return UserID(v), err
}

func ParseModuleID(s string) (ModuleID, error) {
	v, err := parseResourceID(s, "module ID")
	return ModuleID(v), err
}

func ParseAgentID(s string) (AgentID, error) {
	v, err := parseResourceID(s, "agent ID")
	return AgentID(v), err
}

// ParseSessionID rejects anything but a non-nil UUID; session cookies are untrusted input.
func ParseSessionID(s string) (SessionID, error) {
	if s == "" {
		return SessionID(uuid.Nil), dErrors.New(dErrors.CodeBadRequest, "session ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return SessionID(uuid.Nil), dErrors.New(dErrors.CodeBadRequest, "invalid session ID format")
	}
	return SessionID(id), nil
}

// NewSessionID mints a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

func (id TenantID) String() string  { return string(id) }
func (id UserID) String() string    { return string(id) }
func (id ModuleID) String() string  { return string(id) }
func (id AgentID) String() string   { return string(id) }
func (id SessionID) String() string { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool  { return id == "" }
func (id UserID) IsNil() bool    { return id == "" }
func (id ModuleID) IsNil() bool  { return id == "" }
func (id AgentID) IsNil() bool   { return id == "" }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func parseResourceID(s, label string) (string, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	if len(s) > MaxResourceIDLength || !validResourceID.MatchString(s) {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return s, nil
}
