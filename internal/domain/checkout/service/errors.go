package service

import "errors"

// 结算流程的哨兵错误，handler 按 errors.Is 翻译成业务码
var (
	ErrCartNotFound           = errors.New("no active cart for user")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrSessionCreationFailed  = errors.New("failed to create payment session")
	ErrCheckoutURLUnavailable = errors.New("payment session has no checkout url")
	ErrOrderIDMissing         = errors.New("order id missing in session metadata")
	ErrOrderNotFound          = errors.New("order not found for session")
)
