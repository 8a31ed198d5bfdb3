package domain

// Attributes is an insertion-ordered string map holding the non-core columns
// of a tool row. The zero value is ready to use.
type Attributes struct {
	keys   []string
	values map[string]string
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Value returns the value stored under key or the empty string.
func (a Attributes) Value(key string) string {
	return a.values[key]
}

// Set stores value under key, keeping the original position of existing keys.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Delete removes key; it is a no-op when the key is absent.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (a Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of stored keys.
func (a Attributes) Len() int { return len(a.keys) }

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if len(a.keys) == 0 {
		return Attributes{}
	}
	out := Attributes{
		keys:   make([]string, len(a.keys)),
		values: make(map[string]string, len(a.values)),
	}
	copy(out.keys, a.keys)
	for k, v := range a.values {
		out.values[k] = v
	}
	return out
}
