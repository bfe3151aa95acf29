package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/yen-lang/Yen-sub000/internal/ast"
	"github.com/yen-lang/Yen-sub000/internal/token"
	"gopkg.in/yaml.v3"
)

var (
	tokenType   = reflect.TypeOf(token.Token{})
	typeRefType = reflect.TypeOf(&ast.TypeRef{})
)

// WalkAST converts an AST into nested maps and slices for the debug dumps.
// Map keys carry an ordinal prefix ("0.type", "1.position", ...) so the
// encoders, which sort keys, keep the field order of the node.
func WalkAST(node interface{}) interface{} {
	if node == nil {
		return nil
	}
	return walkValue(reflect.ValueOf(node))
}

func walkValue(v reflect.Value) interface{} {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return walkValue(v.Elem())

	case reflect.Ptr:
		if v.IsNil() {
			return nil
		}
		if v.Type() == typeRefType {
			return v.Interface().(*ast.TypeRef).String()
		}
		return walkValue(v.Elem())

	case reflect.Struct:
		t := v.Type()
		out := map[string]interface{}{"0.type": t.Name()}
		key := 1
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			if f.Type == tokenType {
				tok := v.Field(i).Interface().(token.Token)
				out[fmt.Sprintf("%d.position", key)] = fmt.Sprintf("%d:%d", tok.Line, tok.Column)
				key++
				continue
			}
			out[fmt.Sprintf("%d.%s", key, lowerFirst(f.Name))] = walkValue(v.Field(i))
			key++
		}
		return out

	case reflect.Slice:
		items := make([]interface{}, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = walkValue(v.Index(i))
		}
		return items

	default:
		return v.Interface()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// RenderASTAsJSON pretty-prints the AST as JSON.
func RenderASTAsJSON(node ast.Node) (string, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")  // Pretty-print the JSON
	encoder.SetEscapeHTML(false) // Disable escaping of characters like <, >, &

	if err := encoder.Encode(WalkAST(node)); err != nil {
		return "", fmt.Errorf("failed to render AST as JSON: %w", err)
	}
	return buf.String(), nil
}

// RenderASTAsYAML renders the AST as a YAML document.
func RenderASTAsYAML(node ast.Node) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(WalkAST(node)); err != nil {
		return "", fmt.Errorf("failed to render AST as YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to render AST as YAML: %w", err)
	}
	return buf.String(), nil
}
