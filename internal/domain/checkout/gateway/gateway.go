package gateway

import "context"

// 会话 metadata 里携带订单号的键，回调对账只认它
const MetadataOrderIDKey = "order_id"

// PaymentStatusPaid 网关侧"已支付"状态
const PaymentStatusPaid = "paid"

// LineItem 发给支付网关的行项目
// UnitAmount 是最小货币单位（日元无小数位），已含网关侧的 10% 税
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
	Currency    string
	Images      []string
}

// Session 托管支付会话，网关是其权威数据源，本地只存引用
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	PaymentRef    string
	Metadata      map[string]string
}

type CreateSessionInput struct {
	OrderID    uint
	LineItems  []LineItem
	SuccessURL string
	CancelURL  string
}

// PaymentGateway 托管收银台适配器
type PaymentGateway interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
