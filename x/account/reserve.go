package account

import (
	otx "github.com/secureonelabs/opentxs-sub000"
)

// Reserve account kinds. One reserve account exists per kind and
// instrument, created lazily by the controller.
const (
	// ReserveTransfer escrows in-flight transfer amounts until the
	// recipient accepts or the sender reclaims.
	ReserveTransfer = "transfer"
	// ReserveVoucher backs outstanding vouchers one to one.
	ReserveVoucher = "voucher"
	// ReserveMint absorbs the value of minted cash tokens.
	ReserveMint = "mint"
	// ReserveDividend holds a dividend payout between the payer debit and
	// the holder fan-out.
	ReserveDividend = "dividend"
	// ReserveBasket holds the component legs backing issued basket units.
	ReserveBasket = "basket"
)

// ReserveCondition derives the condition of an internal reserve account.
func ReserveCondition(kind, instrument string) otx.Condition {
	return otx.NewCondition("notary", kind, []byte(instrument))
}

// ReserveAddress is a shortcut for ReserveCondition(...).Address().
func ReserveAddress(kind, instrument string) otx.Address {
	return ReserveCondition(kind, instrument).Address()
}
