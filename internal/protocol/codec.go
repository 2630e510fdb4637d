package protocol

import (
	"encoding/json"
	"fmt"
)

// Wire tags for inbound frames.
const (
	typeJoin    = "join"
	typeMessage = "message"
)

// Wire tags for outbound frames.
const (
	typeUserJoined     = "user-joined"
	typeUserDisconnect = "user-disconnect"
	typeUserMessage    = "user-message"
	typeBroadcast      = "message"
	typeError          = "error"
	typeKeepAliveTick  = "keep-alive-tick"
)

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeInput parses an inbound wire frame. Any shape other than a join or
// message frame is a decode failure, which the transport treats as fatal to
// that connection's inbound stream.
func DecodeInput(data []byte) (Input, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed inbound frame: %w", err)
	}

	switch f.Type {
	case typeJoin:
		var in JoinInput
		if err := json.Unmarshal(f.Payload, &in); err != nil {
			return nil, fmt.Errorf("malformed join payload: %w", err)
		}
		return in, nil
	case typeMessage:
		var in MessageInput
		if err := json.Unmarshal(f.Payload, &in); err != nil {
			return nil, fmt.Errorf("malformed message payload: %w", err)
		}
		return in, nil
	default:
		return nil, fmt.Errorf("unknown inbound frame type %q", f.Type)
	}
}

// EncodeInput renders an inbound event back to its wire form. Used by test
// clients and kept symmetrical with DecodeInput.
func EncodeInput(in Input) ([]byte, error) {
	var typ string
	switch in.(type) {
	case JoinInput:
		typ = typeJoin
	case MessageInput:
		typ = typeMessage
	default:
		return nil, fmt.Errorf("unknown input type %T", in)
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame{Type: typ, Payload: payload})
}

// EncodeOutput renders an outbound event to its wire form. The keep-alive
// tick has no payload and serializes to a bare type tag.
func EncodeOutput(out Output) ([]byte, error) {
	var (
		typ     string
		payload any = out
	)

	switch out.(type) {
	case UserJoinedOutput:
		typ = typeUserJoined
	case UserDisconnectOutput:
		typ = typeUserDisconnect
	case UserMessageOutput:
		typ = typeUserMessage
	case MessageOutput:
		typ = typeBroadcast
	case ErrorOutput:
		typ = typeError
	case KeepAliveTickOutput:
		typ = typeKeepAliveTick
		payload = nil
	default:
		return nil, fmt.Errorf("unknown output type %T", out)
	}

	f := frame{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		f.Payload = raw
	}
	return json.Marshal(f)
}

// DecodeOutput parses an outbound wire frame back into its typed event.
func DecodeOutput(data []byte) (Output, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("malformed outbound frame: %w", err)
	}

	switch f.Type {
	case typeUserJoined:
		var out UserJoinedOutput
		if err := json.Unmarshal(f.Payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	case typeUserDisconnect:
		var out UserDisconnectOutput
		if err := json.Unmarshal(f.Payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	case typeUserMessage:
		var out UserMessageOutput
		if err := json.Unmarshal(f.Payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	case typeBroadcast:
		var out MessageOutput
		if err := json.Unmarshal(f.Payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	case typeError:
		var out ErrorOutput
		if err := json.Unmarshal(f.Payload, &out); err != nil {
			return nil, err
		}
		return out, nil
	case typeKeepAliveTick:
		return KeepAliveTickOutput{}, nil
	default:
		return nil, fmt.Errorf("unknown outbound frame type %q", f.Type)
	}
}
