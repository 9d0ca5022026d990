package botapi

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// With returns a copy of p with every entry of opts applied on top.
func (p Params) With(opts Params) Params {
	out := p.Clone()
	for k, v := range opts {
		out[k] = v
	}
	return out
}

// Add sets key only when v is not a zero value. It mirrors how the Bot API
// treats absent optional fields, so builders can pass unset options through.
func (p Params) Add(key string, v any) Params {
	if !isZero(v) {
		p[key] = v
	}
	return p
}

func isZero(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case int:
		return val == 0
	case int64:
		return val == 0
	case float64:
		return val == 0
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
