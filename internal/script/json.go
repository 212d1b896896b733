package script

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"
)

// maxJSONDepth bounds table nesting in encode.
const maxJSONDepth = 64

func registerJSONModule(L *lua.LState) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"decode": jsonDecode,
		"get":    jsonGet,
		"encode": jsonEncode,
	})
	L.SetGlobal("json", mod)
}

// decode(text) -> value
func jsonDecode(L *lua.LState) int {
	s := L.CheckString(1)
	if !gjson.Valid(s) {
		L.ArgError(1, "invalid JSON")
	}
	L.Push(resultToLua(L, gjson.Parse(s)))
	return 1
}

// get(text, path) -> value | nil
// path uses gjson syntax, such as "items.#.name".
func jsonGet(L *lua.LState) int {
	s := L.CheckString(1)
	r := gjson.Get(s, L.CheckString(2))
	if !r.Exists() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(resultToLua(L, r))
	return 1
}

// encode(value, [indent]) -> text
func jsonEncode(L *lua.LState) int {
	raw, err := encodeValue(L.CheckAny(1), 0)
	if err != nil {
		L.RaiseError("encode: %v", err)
	}
	if L.OptBool(2, false) {
		raw = pretty.PrettyOptions(raw, &pretty.Options{Indent: "  ", SortKeys: true})
	}
	L.Push(lua.LString(raw))
	return 1
}

func resultToLua(L *lua.LState, r gjson.Result) lua.LValue {
	switch r.Type {
	case gjson.Null:
		return lua.LNil
	case gjson.False:
		return lua.LFalse
	case gjson.True:
		return lua.LTrue
	case gjson.Number:
		return lua.LNumber(r.Num)
	case gjson.String:
		return lua.LString(r.Str)
	}

	t := L.NewTable()
	if r.IsArray() {
		for _, item := range r.Array() {
			t.Append(resultToLua(L, item))
		}
		return t
	}
	r.ForEach(func(k, v gjson.Result) bool {
		t.RawSetString(k.String(), resultToLua(L, v))
		return true
	})
	return t
}

// scalarJSON returns the JSON text of a Go scalar.
func scalarJSON(v any) ([]byte, error) {
	doc, err := sjson.SetBytes([]byte(`{"v":null}`), "v", v)
	if err != nil {
		return nil, err
	}
	return []byte(gjson.GetBytes(doc, "v").Raw), nil
}

func encodeValue(v lua.LValue, depth int) ([]byte, error) {
	if depth > maxJSONDepth {
		return nil, errors.New("tables nested too deeply")
	}
	switch v := v.(type) {
	case *lua.LNilType:
		return []byte("null"), nil
	case lua.LBool:
		return scalarJSON(bool(v))
	case lua.LNumber:
		return []byte(strconv.FormatFloat(float64(v), 'f', -1, 64)), nil
	case lua.LString:
		return scalarJSON(string(v))
	case *lua.LTable:
		return encodeTable(v, depth)
	default:
		return nil, errors.Newf("cannot encode %s", v.Type())
	}
}

// encodeTable writes a sequence as an array and anything else as an
// object with string keys.
func encodeTable(t *lua.LTable, depth int) ([]byte, error) {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	var err error
	if n > 0 && n == count {
		out := []byte("[]")
		for i := 1; i <= n && err == nil; i++ {
			var raw []byte
			if raw, err = encodeValue(t.RawGetInt(i), depth+1); err == nil {
				out, err = sjson.SetRawBytes(out, "-1", raw)
			}
		}
		return out, err
	}

	out := []byte("{}")
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		var raw []byte
		if raw, err = encodeValue(v, depth+1); err == nil {
			out, err = sjson.SetRawBytes(out, objectKey(k.String()), raw)
		}
	})
	return out, err
}

// objectKey escapes a key for use as an sjson path.
func objectKey(k string) string {
	var b strings.Builder
	if _, err := strconv.Atoi(k); err == nil {
		b.WriteByte(':')
	}
	for _, r := range k {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
