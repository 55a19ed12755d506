package domain

// DefaultLowStockThreshold applies when a variant has no threshold of its own
const DefaultLowStockThreshold = 5

// StockLevel is the availability bucket rendered next to a variant
type StockLevel string

const (
	StockLevelInStock    StockLevel = "in_stock"
	StockLevelLowStock   StockLevel = "low_stock"
	StockLevelOutOfStock StockLevel = "out_of_stock"
)

func (l StockLevel) Label() string {
	switch l {
	case StockLevelInStock:
		return "Còn hàng"
	case StockLevelLowStock:
		return "Sắp hết"
	case StockLevelOutOfStock:
		return "Hết hàng"
	default:
		return string(l)
	}
}

// VariantStock is the per-variant stock aggregate reported by the warehouse API
type VariantStock struct {
	VariantID         int64  `json:"id"`
	SKU               string `json:"sku"`
	ProductName       string `json:"product_name,omitempty"`
	ProductBrand      string `json:"product_brand,omitempty"`
	Color             string `json:"color,omitempty"`
	Size              string `json:"size,omitempty"`
	Stock             int    `json:"stock"`
	LowStockThreshold int    `json:"low_stock_threshold,omitempty"`
	IsLowStock        bool   `json:"is_low_stock"`
	IsOutOfStock      bool   `json:"is_out_of_stock"`
	IsActive          bool   `json:"is_active,omitempty"`
}

func effectiveThreshold(threshold int) int {
	if threshold <= 0 {
		return DefaultLowStockThreshold
	}
	return threshold
}

// IsLowStock holds when 0 < stock <= threshold
func IsLowStock(stock, threshold int) bool {
	return stock > 0 && stock <= effectiveThreshold(threshold)
}

// IsOutOfStock holds when stock == 0
func IsOutOfStock(stock int) bool {
	return stock == 0
}

// LevelOf buckets a stock count
func LevelOf(stock, threshold int) StockLevel {
	switch {
	case IsOutOfStock(stock):
		return StockLevelOutOfStock
	case IsLowStock(stock, threshold):
		return StockLevelLowStock
	default:
		return StockLevelInStock
	}
}

// FlagsConsistent reports whether the server-supplied flags agree with the stock count
func (v VariantStock) FlagsConsistent() bool {
	return v.IsLowStock == IsLowStock(v.Stock, v.LowStockThreshold) &&
		v.IsOutOfStock == IsOutOfStock(v.Stock)
}

// Level returns the availability bucket of the variant
func (v VariantStock) Level() StockLevel {
	return LevelOf(v.Stock, v.LowStockThreshold)
}

// ClampQuantity bounds a requested quantity to [1, stock]. It returns 0 when nothing is available.
func ClampQuantity(requested, stock int) int {
	if stock <= 0 {
		return 0
	}
	if requested < 1 {
		return 1
	}
	if requested > stock {
		return stock
	}
	return requested
}

// CanIncrement reports whether the quantity control may go up from quantity
func CanIncrement(quantity, stock int) bool {
	return quantity < stock
}

// CanDecrement reports whether the quantity control may go down from quantity
func CanDecrement(quantity int) bool {
	return quantity > 1
}

// LowStockReport is the response of the low stock query
type LowStockReport struct {
	Count     int            `json:"count"`
	Threshold int            `json:"threshold"`
	Results   []VariantStock `json:"results"`
}

// InventoryStats is the warehouse dashboard summary
type InventoryStats struct {
	TotalVariants   int          `json:"total_variants"`
	LowStockCount   int          `json:"low_stock_count"`
	OutOfStockCount int          `json:"out_of_stock_count"`
	RecentImports   []ImportNote `json:"recent_imports"`
}
