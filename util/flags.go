package util

// Per-item scratch values of a graph search.
//
// Items are initialized lazily with the default value, Reset is O(touched).
type Flags[T any] struct {
	values        Array[T]
	touched       Array[bool]
	touched_list  List[int32]
	default_value T
}

func NewFlags[T any](size int32, default_value T) Flags[T] {
	values := NewArray[T](int(size))
	for i := range values {
		values[i] = default_value
	}
	return Flags[T]{
		values:        values,
		touched:       NewArray[bool](int(size)),
		touched_list:  NewList[int32](100),
		default_value: default_value,
	}
}

func (self *Flags[T]) Get(item int32) *T {
	if !self.touched[item] {
		self.touched[item] = true
		self.touched_list.Add(item)
	}
	return &self.values[item]
}

func (self *Flags[T]) Reset() {
	for _, item := range self.touched_list {
		self.values[item] = self.default_value
		self.touched[item] = false
	}
	self.touched_list.Clear()
}

func (self *Flags[T]) Length() int {
	return len(self.values)
}
