package cube

// Attr is a single named attribute of a cube, a variable
// or a dataset.
type Attr struct {
	Name  string
	Value interface{}
}

// Attrs is an ordered mapping from attribute names to values.
// The order is the one in which the attributes were first set.
type Attrs []Attr

// Get returns the value of the attribute `name` and
// whether the attribute exists.
func (attrs Attrs) Get(name string) (interface{}, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Text returns the value of the attribute `name` when it
// is a string, or an empty string otherwise.
func (attrs Attrs) Text(name string) string {
	val, _ := attrs.Get(name)
	s, _ := val.(string)
	return s
}

// Set replaces the value of an existing attribute
// or appends a new one.
func (attrs *Attrs) Set(name string, value interface{}) {
	for i := range *attrs {
		if (*attrs)[i].Name == name {
			(*attrs)[i].Value = value
			return
		}
	}
	*attrs = append(*attrs, Attr{Name: name, Value: value})
}

// Update sets every attribute of other on attrs. On name
// collision the value from other wins.
func (attrs *Attrs) Update(other Attrs) {
	for _, a := range other {
		attrs.Set(a.Name, a.Value)
	}
}

// Clone returns a shallow copy: the list is copied,
// the values are shared.
func (attrs Attrs) Clone() Attrs {
	if attrs == nil {
		return nil
	}
	res := make(Attrs, len(attrs))
	copy(res, attrs)
	return res
}
