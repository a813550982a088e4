package ws

import (
	"encoding/json"
	"errors"
	"fmt"
)

// initialRequest is the first message a peer must send: either a request to
// create a fresh mailbox or a request to connect to an existing one by ID.
// This is the wire shape; [ParseInitialRequest] turns it into a typed
// [InitialRequest].
type initialRequest struct {
	Req string `json:"req"`
	ID  uint32 `json:"id"`
}

// InitialRequestKind distinguishes the two initial-message shapes a peer
// can send before a mailbox is attached.
type InitialRequestKind int

const (
	RequestCreateMailbox InitialRequestKind = iota
	RequestConnectToMailbox
)

// InitialRequest is the parsed form of the first frame on a connection.
type InitialRequest struct {
	Kind InitialRequestKind
	ID   uint32 // only meaningful for RequestConnectToMailbox
}

// ErrUnrecognizedInitialMessage is returned when the frame parses as JSON
// but doesn't match either known request shape.
var ErrUnrecognizedInitialMessage = errors.New("unrecognized initial message")

// ParseInitialRequest decodes the first frame of a connection.
func ParseInitialRequest(payload []byte) (InitialRequest, error) {
	var raw initialRequest
	if err := json.Unmarshal(payload, &raw); err != nil {
		return InitialRequest{}, fmt.Errorf("parse initial message: %w", err)
	}

	switch raw.Req {
	case "create":
		return InitialRequest{Kind: RequestCreateMailbox}, nil
	case "connect":
		return InitialRequest{Kind: RequestConnectToMailbox, ID: raw.ID}, nil
	default:
		return InitialRequest{}, fmt.Errorf("%w: %q", ErrUnrecognizedInitialMessage, raw.Req)
	}
}

// initialReply is the wire shape of both possible replies to an initial
// request; exactly one of the two response kinds is ever used per reply,
// matching the Rust original's tagged enum (`resp`: "created"|"connected").
type initialReply struct {
	Resp string `json:"resp"`
	ID   uint32 `json:"id"`
}

// FormatCreated builds the reply to a successful "create" request.
func FormatCreated(id uint32) ([]byte, error) {
	return json.Marshal(initialReply{Resp: "created", ID: id})
}

// FormatConnected builds the reply to a successful "connect" request.
func FormatConnected(id uint32) ([]byte, error) {
	return json.Marshal(initialReply{Resp: "connected", ID: id})
}
