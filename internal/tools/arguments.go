package tools

// Arguments is the decoded JSON argument object of one tool call. JSON
// numbers arrive as float64; the getters normalize them.
type Arguments map[string]any

// Int64 returns the named argument as an int64, with ok reporting
// presence and convertibility.
func (a Arguments) Int64(key string) (int64, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// String returns the named argument as a string.
func (a Arguments) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the named argument as a bool.
func (a Arguments) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Has reports whether the argument is present, regardless of type.
func (a Arguments) Has(key string) bool {
	_, ok := a[key]
	return ok
}
