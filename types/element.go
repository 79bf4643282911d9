package types

// Element 统计排序使用的对象,只由 *Node 和 *Link 实现
type Element interface {
	ObjectType() ObjectType // 对象类型
	ElementID() string      // 名称
	ElementIndex() int      // 在网络中的索引
}

var (
	_ Element = (*Node)(nil)
	_ Element = (*Link)(nil)
)
