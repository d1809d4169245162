package content

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Decode classifies a raw JSON content value. Objects always decode to
// KeyValue; Attributed is only produced from typed Go values by FromValue.
// Input that is not valid JSON is kept as Opaque text.
func Decode(raw []byte) Node {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Null{}
	}
	if !gjson.ValidBytes(trimmed) {
		return Opaque{Repr: string(trimmed)}
	}
	return fromResult(gjson.ParseBytes(trimmed))
}

func fromResult(r gjson.Result) Node {
	switch {
	case r.Type == gjson.Null:
		return Null{}
	case r.Type == gjson.String:
		return Text(r.String())
	case r.IsArray():
		list := List{}
		r.ForEach(func(_, item gjson.Result) bool {
			list = append(list, fromResult(item))
			return true
		})
		return list
	case r.IsObject():
		kv := KeyValue{raw: r.Raw}
		r.ForEach(func(key, value gjson.Result) bool {
			kv.Fields = append(kv.Fields, Field{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return kv
	}
	return Opaque{Repr: r.Raw}
}
