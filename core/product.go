package core

// Product 是商品目录中的一条记录，对引擎只读（目录归属方负责维护）。
// Available 为 false 的商品不参与候选生成。
type Product struct {
	ID        string
	Category  string
	Brand     string
	Price     float64
	StyleTags []string
	Available bool
}
