package stats

import "hydroroute/types"

// Entry 排行榜中的一项,Element 为 nil 表示空位
type Entry struct {
	Element types.Element
	Value   float64
}

// Index 对象索引,空位返回 -1
func (e Entry) Index() int {
	if e.Element == nil {
		return -1
	}
	return e.Element.ElementIndex()
}

// Used 是否为有效项
func (e Entry) Used() bool { return e.Element != nil }

// Tracker 固定容量的最大值排行,按值降序排列
//
//	新候选值严格大于当前最小值时才替换该位置,然后上浮到正确位置;
//	相等的值不会越过先插入的项,因此相等时保留先插入者的排名。
type Tracker struct {
	entries []Entry
}

// NewTracker 创建容量为 k 的排行
func NewTracker(k int) *Tracker {
	if k < 0 {
		k = 0
	}
	return &Tracker{entries: make([]Entry, k)}
}

// Cap 容量
func (t *Tracker) Cap() int { return len(t.entries) }

// Reset 清空全部项
func (t *Tracker) Reset() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
}

// Insert 插入候选项,返回是否进入排行
func (t *Tracker) Insert(elem types.Element, value float64) bool {
	n := len(t.entries)
	if n == 0 || elem == nil {
		return false
	}
	last := t.entries[n-1]
	if last.Used() && !(value > last.Value) {
		return false
	}
	t.entries[n-1] = Entry{Element: elem, Value: value}
	for i := n - 1; i > 0; i-- {
		prev := t.entries[i-1]
		if prev.Used() && !(value > prev.Value) {
			break
		}
		t.entries[i-1], t.entries[i] = t.entries[i], t.entries[i-1]
	}
	return true
}

// Entries 返回排行副本(含空位)
func (t *Tracker) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Values 有效项的值
func (t *Tracker) Values() []float64 {
	vals := make([]float64, 0, len(t.entries))
	for _, e := range t.entries {
		if e.Used() {
			vals = append(vals, e.Value)
		}
	}
	return vals
}

// Top 第一项
func (t *Tracker) Top() Entry {
	if len(t.entries) == 0 {
		return Entry{}
	}
	return t.entries[0]
}
