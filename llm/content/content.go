// Package content flattens chat-completion message content into display text.
//
// Completion endpoints return message content in several shapes: a plain
// string, a list of typed chunks, null, or occasionally a bare object. The
// shape is decided once, when the payload is decoded, into one of the Node
// variants below; Normalize then folds any Node into a single string.
package content

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Node is a decoded content value. The set of implementations is closed.
type Node interface {
	isNode()
}

// Null is an absent or JSON null content value.
type Null struct{}

// Text is a plain string value.
type Text string

// List is an ordered sequence of chunks.
type List []Node

// Field is one member of a KeyValue object, in source order.
type Field struct {
	Key   string
	Value Node
}

// KeyValue is a JSON object or Go map.
type KeyValue struct {
	Fields []Field
	raw    string
}

// Attributed is a typed value exposing a text attribute, see TextCarrier.
type Attributed struct {
	Text Node
	Repr string
}

// Opaque is any other scalar (number, bool) kept in its rendered form.
type Opaque struct {
	Repr string
}

func (Null) isNode()       {}
func (Text) isNode()       {}
func (List) isNode()       {}
func (KeyValue) isNode()   {}
func (Attributed) isNode() {}
func (Opaque) isNode()     {}

// Get returns the value stored under key. When a key repeats the last one wins,
// matching JSON object semantics.
func (kv KeyValue) Get(key string) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	for _, f := range kv.Fields {
		if f.Key == key {
			found, ok = f.Value, true
		}
	}
	return found, ok
}

// TextCarrier is implemented by typed chunk values that carry their text in an
// attribute rather than a map key. ContentText may return a string, a slice of
// parts, or anything else FromValue understands.
type TextCarrier interface {
	ContentText() any
}

// Normalize folds n into a single string. It never fails: shapes it does not
// recognize degrade to their generic rendering.
func Normalize(n Node) string {
	switch v := n.(type) {
	case nil, Null:
		return ""
	case Text:
		return string(v)
	case List:
		// inner lists flatten into the same string
		var b strings.Builder
		for _, chunk := range v {
			b.WriteString(Normalize(chunk))
		}
		return b.String()
	case KeyValue:
		if text, ok := v.Get("text"); ok {
			if s, ok := textAttribute(text); ok {
				return s
			}
		}
		if c, ok := v.Get("content"); ok {
			if s, ok := c.(Text); ok {
				return string(s)
			}
		}
		return Render(v)
	case Attributed:
		if s, ok := textAttribute(v.Text); ok {
			return s
		}
		return Render(v)
	default:
		return Render(n)
	}
}

// textAttribute resolves a "text" member: a string is used as is and a list
// contributes the string form of each element.
func textAttribute(n Node) (string, bool) {
	switch v := n.(type) {
	case Text:
		return string(v), true
	case List:
		var b strings.Builder
		for _, part := range v {
			b.WriteString(Render(part))
		}
		return b.String(), true
	}
	return "", false
}

// Render is the generic string form of n: strings render as themselves, null
// as the empty string and structured values as compact JSON.
func Render(n Node) string {
	switch v := n.(type) {
	case nil, Null:
		return ""
	case Text:
		return string(v)
	default:
		return jsonForm(n)
	}
}

func jsonForm(n Node) string {
	switch v := n.(type) {
	case nil, Null:
		return "null"
	case Text:
		b, _ := json.Marshal(string(v))
		return string(b)
	case List:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = jsonForm(item)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KeyValue:
		if v.raw != "" {
			return v.raw
		}
		parts := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			k, _ := json.Marshal(f.Key)
			parts[i] = string(k) + ":" + jsonForm(f.Value)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case Attributed:
		return v.Repr
	case Opaque:
		return v.Repr
	}
	return fmt.Sprint(n)
}

// FromValue converts an in-memory Go value into a Node.
func FromValue(v any) Node {
	switch x := v.(type) {
	case nil:
		return Null{}
	case Node:
		return x
	case string:
		return Text(x)
	case json.RawMessage:
		return Decode(x)
	case TextCarrier:
		return Attributed{Text: FromValue(x.ContentText()), Repr: fmt.Sprintf("%+v", x)}
	case []string:
		list := make(List, len(x))
		for i, s := range x {
			list[i] = Text(s)
		}
		return list
	case []any:
		list := make(List, len(x))
		for i, item := range x {
			list[i] = FromValue(item)
		}
		return list
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kv := KeyValue{Fields: make([]Field, len(keys))}
		for i, k := range keys {
			kv.Fields[i] = Field{Key: k, Value: FromValue(x[k])}
		}
		return kv
	case fmt.Stringer:
		return Opaque{Repr: x.String()}
	}
	return Opaque{Repr: fmt.Sprint(v)}
}
