package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 认证错误 100xx
	ErrAuthFailed   = 10001
	ErrTokenInvalid = 10002
	ErrNoPermission = 10003

	// 商品模块错误 200xx
	ErrProductNotFound = 20001
	ErrProductSoldOut  = 20002

	// 购物车模块错误 300xx
	ErrCartNotFound = 30001
	ErrCartEmpty    = 30002

	// 订单/结算模块错误 400xx
	ErrOrderNotFound      = 40001
	ErrSessionCreation    = 40002
	ErrCheckoutURLMissing = 40003
	ErrWebhookInvalid     = 40004

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
