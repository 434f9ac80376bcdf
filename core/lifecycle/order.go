package lifecycle

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

type OrderAction string

const (
	OrderComplete OrderAction = "complete"
	OrderFail     OrderAction = "fail"
	OrderRefund   OrderAction = "refund"
)

var OrderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderCancelled, OrderRefunded}

var OrderActions = []OrderAction{OrderComplete, OrderFail, OrderRefund}

// pending is only reachable once payment capture becomes asynchronous; orders
// are created completed today.
var orderTable = table[OrderStatus, OrderAction]{
	OrderPending: {
		OrderComplete: OrderCompleted,
		OrderFail:     OrderCancelled,
	},
	OrderCompleted: {
		OrderRefund: OrderRefunded,
	},
	OrderCancelled: {},
	OrderRefunded:  {},
}

func TransitionOrder(state OrderStatus, action OrderAction) (OrderStatus, error) {
	return orderTable.transition(EntityOrder, state, action)
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	return parse(orderTable, EntityOrder, s)
}

func ParseOrderAction(s string) (OrderAction, error) {
	return parseAction(OrderActions, EntityOrder, s)
}
