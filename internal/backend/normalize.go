package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// Normalize turns any of the registry's response shapes into a list of T:
// {dados:[[...]]}, {dados:[...]}, {dados:{...}}, a bare array or a bare object.
// Records that do not decode as T are dropped; the payload is malformed only
// when its shape is unknown or none of its records decode.
func Normalize[T any](payload []byte) ([]T, error) {
	items, _, err := normalize[T](payload)
	return items, err
}

// normalize is Normalize that also reports the dropped records.
func normalize[T any](payload []byte) ([]T, []error, error) {
	raw, err := records(payload)
	if err != nil {
		return nil, nil, errors.Malformed(err)
	}

	out := make([]T, 0, len(raw))
	var skipped []error
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			skipped = append(skipped, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 && len(skipped) > 0 {
		return nil, skipped, errors.Malformed(skipped[0])
	}
	return out, skipped, nil
}

// NormalizeOne returns the first record of payload.
func NormalizeOne[T any](payload []byte, notFound string) (*T, error) {
	items, err := Normalize[T](payload)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errors.NotFound(notFound, nil)
	}
	return &items[0], nil
}

func records(payload []byte) ([]json.RawMessage, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	switch payload[0] {
	case '[':
		return array(payload)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(payload, &obj); err != nil {
			return nil, err
		}
		dados, ok := obj["dados"]
		if !ok {
			return []json.RawMessage{payload}, nil
		}
		return unwrap(dados)
	default:
		return nil, fmt.Errorf("unexpected payload starting with %q", payload[0])
	}
}

func unwrap(dados json.RawMessage) ([]json.RawMessage, error) {
	dados = bytes.TrimSpace(dados)
	if len(dados) == 0 || bytes.Equal(dados, []byte("null")) {
		return nil, nil
	}

	switch dados[0] {
	case '[':
		items, err := array(dados)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			if first := bytes.TrimSpace(items[0]); len(first) > 0 && first[0] == '[' {
				return array(first)
			}
		}
		return items, nil
	case '{':
		return []json.RawMessage{dados}, nil
	default:
		return nil, fmt.Errorf("unexpected dados starting with %q", dados[0])
	}
}

func array(b []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// apiMessage extracts {mensagem} or {message} from an error body.
func apiMessage(body []byte) string {
	var msg struct {
		Mensagem string `json:"mensagem"`
		Message  string `json:"message"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}
	if msg.Mensagem != "" {
		return msg.Mensagem
	}
	return msg.Message
}
