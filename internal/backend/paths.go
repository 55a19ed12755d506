package backend

import (
	"fmt"

	"github.com/eyewearvn/storefront/internal/domain"
)

// Shop API paths, relative to the configured base URL
const (
	PathOrders      = "/orders/"
	PathOrderStats  = "/orders/stats/"
	PathCreateOrder = "/orders/create_order/"

	PathLowStock       = "/warehouse/inventory/low_stock/"
	PathInventoryLogs  = "/warehouse/inventory/logs/"
	PathInventoryStats = "/warehouse/inventory/stats/"
	PathImportNotes    = "/warehouse/import-notes/"

	PathVNPayCreate = "/payments/vnpay/create/"
	PathVNPayReturn = "/payments/vnpay/return/"

	PathCart           = "/cart/"
	PathCartAddItem    = "/cart/add_item/"
	PathCartUpdateItem = "/cart/update_item/"
	PathCartRemoveItem = "/cart/remove_item/"
	PathCartClear      = "/cart/clear/"

	PathWishlist           = "/wishlist/"
	PathWishlistAddItem    = "/wishlist/add_item/"
	PathWishlistRemoveItem = "/wishlist/remove_item/"
	PathWishlistClear      = "/wishlist/clear/"

	PathAddresses = "/addresses/"

	PathActiveVouchers  = "/vouchers/active/"
	PathValidateVoucher = "/vouchers/validate/"

	PathLogin  = "/auth/login/"
	PathLogout = "/auth/logout/"
	PathMe     = "/auth/me/"
)

func OrderPath(id int64) string {
	return fmt.Sprintf("/orders/%d/", id)
}

// OrderActionPath is /orders/{id}/{action}/
func OrderActionPath(id int64, action domain.Action) string {
	return fmt.Sprintf("/orders/%d/%s/", id, action)
}

func ImportNotePath(id int64) string {
	return fmt.Sprintf("/warehouse/import-notes/%d/", id)
}

// ImportNoteOpPath is /warehouse/import-notes/{id}/{op}/ for complete and cancel
func ImportNoteOpPath(id int64, op string) string {
	return fmt.Sprintf("/warehouse/import-notes/%d/%s/", id, op)
}

// VariantPath is /variants/{id}/, active variants only
func VariantPath(id int64) string {
	return fmt.Sprintf("/variants/%d/", id)
}

func AddressPath(id int64) string {
	return fmt.Sprintf("/addresses/%d/", id)
}

func AddressDefaultPath(id int64) string {
	return fmt.Sprintf("/addresses/%d/set_default/", id)
}
