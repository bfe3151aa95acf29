package foreign

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yen-lang/Yen-sub000/internal/object"
)

// Map key order is preserved in both directions.

func fnJSONParse() *object.Native {
	return &object.Native{
		Name:  "json.parse",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			src, err := unpackString(args[0], "parse", 1)
			if err != nil {
				return nil, err
			}
			dec := json.NewDecoder(strings.NewReader(src))
			dec.UseNumber()
			val, err := decodeJSON(dec)
			if err != nil {
				return nil, object.NewError(object.NativeError, "invalid json: %v", err)
			}
			if _, err := dec.Token(); !errors.Is(err, io.EOF) {
				return nil, object.NewError(object.NativeError, "invalid json: trailing data")
			}
			return val, nil
		},
	}
}

func decodeJSON(dec *json.Decoder) (object.Object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '[' {
			list := &object.List{Elements: []object.Object{}}
			for dec.More() {
				el, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, el)
			}
			_, err := dec.Token()
			return list, err
		}
		m := object.NewMap()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			val, err := decodeJSON(dec)
			if err != nil {
				return nil, err
			}
			m.Set(keyTok.(string), val)
		}
		_, err := dec.Token()
		return m, err
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return &object.Integer{Value: i}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return &object.Float{Value: f}, nil
	}
	return fromHost(tok), nil
}

func fnJSONStringify() *object.Native {
	return &object.Native{
		Name:  "json.stringify",
		Arity: -1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, object.NewError(object.ArityError, "`stringify` expects 1 or 2 arguments, got %d", len(args))
			}
			var buf bytes.Buffer
			if err := encodeJSON(&buf, args[0]); err != nil {
				return nil, err
			}
			if len(args) == 2 {
				indent, err := unpackString(args[1], "stringify", 2)
				if err != nil {
					return nil, err
				}
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, buf.Bytes(), "", indent); err != nil {
					return nil, object.NewError(object.NativeError, "failed to indent json: %v", err)
				}
				buf = pretty
			}
			return &object.String{Value: buf.String()}, nil
		},
	}
}

func encodeJSON(buf *bytes.Buffer, obj object.Object) error {
	switch o := obj.(type) {
	case *object.List:
		buf.WriteByte('[')
		for i, el := range o.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *object.Map:
		return encodeJSONObject(buf, o)
	case *object.StructInstance:
		return encodeJSONObject(buf, o.Fields)
	case *object.Instance:
		return encodeJSONObject(buf, o.Fields)
	}
	host, err := toHost(obj)
	if err != nil {
		return err
	}
	data, err := json.Marshal(host)
	if err != nil {
		return object.NewError(object.NativeError, "cannot encode %s as json: %v", obj.Inspect(), err)
	}
	buf.Write(data)
	return nil
}

func encodeJSONObject(buf *bytes.Buffer, m *object.Map) error {
	buf.WriteByte('{')
	for i, key := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		val, _ := m.Get(key)
		if err := encodeJSON(buf, val); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func fnYAMLParse() *object.Native {
	return &object.Native{
		Name:  "yaml.parse",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			src, err := unpackString(args[0], "parse", 1)
			if err != nil {
				return nil, err
			}
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
				return nil, object.NewError(object.NativeError, "invalid yaml: %v", err)
			}
			return decodeYAML(&doc)
		},
	}
}

func decodeYAML(node *yaml.Node) (object.Object, error) {
	switch node.Kind {
	case 0:
		return object.NULL, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return object.NULL, nil
		}
		return decodeYAML(node.Content[0])
	case yaml.AliasNode:
		return decodeYAML(node.Alias)
	case yaml.SequenceNode:
		list := &object.List{Elements: make([]object.Object, 0, len(node.Content))}
		for _, child := range node.Content {
			el, err := decodeYAML(child)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, el)
		}
		return list, nil
	case yaml.MappingNode:
		m := object.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := decodeYAML(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(node.Content[i].Value, val)
		}
		return m, nil
	}
	var scalar any
	if err := node.Decode(&scalar); err != nil {
		return nil, object.NewError(object.NativeError, "invalid yaml scalar %q: %v", node.Value, err)
	}
	return fromHost(scalar), nil
}

func fnYAMLStringify() *object.Native {
	return &object.Native{
		Name:  "yaml.stringify",
		Arity: 1,
		Fn: func(ctx object.EvaluatorContext, args ...object.Object) (object.Object, error) {
			node, err := encodeYAML(args[0])
			if err != nil {
				return nil, err
			}
			data, err := yaml.Marshal(node)
			if err != nil {
				return nil, object.NewError(object.NativeError, "failed to encode yaml: %v", err)
			}
			return &object.String{Value: string(data)}, nil
		},
	}
}

func encodeYAML(obj object.Object) (*yaml.Node, error) {
	switch o := obj.(type) {
	case *object.List:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, el := range o.Elements {
			child, err := encodeYAML(el)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *object.Map:
		return encodeYAMLMapping(o)
	case *object.StructInstance:
		return encodeYAMLMapping(o.Fields)
	case *object.Instance:
		return encodeYAMLMapping(o.Fields)
	}
	host, err := toHost(obj)
	if err != nil {
		return nil, err
	}
	node := &yaml.Node{}
	if err := node.Encode(host); err != nil {
		return nil, object.NewError(object.NativeError, "cannot encode %s as yaml: %v", obj.Inspect(), err)
	}
	return node, nil
}

func encodeYAMLMapping(m *object.Map) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range m.Keys() {
		val, _ := m.Get(key)
		child, err := encodeYAML(val)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
	}
	return node, nil
}
