package fee

// Option is a fee field that is either unset or carries an explicit value.
// Unset means "let the network decide"; it is never the same as "0".
type Option struct {
	value string
	set   bool
}

// Unset returns an Option without a value.
func Unset() Option {
	return Option{}
}

// Value returns an Option holding v, even when v is "0".
func Value(v string) Option {
	return Option{value: v, set: true}
}

// FromString maps a wire string to an Option; the empty string is Unset.
func FromString(s string) Option {
	if s == "" {
		return Unset()
	}

	return Value(s)
}

// FromPtr maps an optional wire string to an Option; nil and "" are Unset.
func FromPtr(s *string) Option {
	if s == nil {
		return Unset()
	}

	return FromString(*s)
}

func (o Option) IsSet() bool {
	return o.set
}

// Get returns the value and whether it is set.
func (o Option) Get() (string, bool) {
	return o.value, o.set
}

func (o Option) String() string {
	if !o.set {
		return "<unset>"
	}

	return o.value
}
