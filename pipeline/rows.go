package pipeline

import (
	"fmt"

	"seedgen/gen"
	"seedgen/sink"
)

// The row types flatten generated records for the destination store. The
// latent attributes (tier, propensities) deliberately do not appear here.

type userRow struct {
	u *gen.User
}

func (r userRow) Table() string { return TableUsers }

func (r userRow) Key() string { return fmt.Sprint(r.u.ID) }

func (r userRow) Columns() []string {
	return []string{
		"user_id", "username", "email", "first_name", "last_name",
		"created_at", "country", "city", "referrer", "is_active",
	}
}

func (r userRow) Values() []interface{} {
	return []interface{}{
		r.u.ID, r.u.Username, r.u.Email, r.u.FirstName, r.u.LastName,
		r.u.CreatedAt.Format(gen.TimestampLayout), r.u.Country, r.u.City, r.u.Referrer, r.u.IsActive,
	}
}

type eventRow struct {
	e *gen.Event
}

func (r eventRow) Table() string { return TableEvents }

func (r eventRow) Key() string { return fmt.Sprint(r.e.UserID) }

func (r eventRow) Columns() []string {
	return []string{
		"event_id", "user_id", "session_id", "event_type", "timestamp",
		"utm_source", "utm_medium", "device_type", "duration_seconds", "revenue",
	}
}

func (r eventRow) Values() []interface{} {
	return []interface{}{
		r.e.ID, r.e.UserID, r.e.SessionID, string(r.e.Type), r.e.Timestamp.Format(gen.TimestampLayout),
		r.e.UTMSource, r.e.UTMMedium, string(r.e.Device), r.e.DurationSeconds, r.e.Revenue,
	}
}

type orderRow struct {
	o *gen.Order
}

func (r orderRow) Table() string { return TableOrders }

func (r orderRow) Key() string { return fmt.Sprint(r.o.UserID) }

func (r orderRow) Columns() []string {
	return []string{
		"order_id", "user_id", "order_number", "order_sequence", "order_timestamp",
		"product_category", "quantity", "amount", "currency", "payment_method",
		"discount_amount", "discount_code",
	}
}

func (r orderRow) Values() []interface{} {
	return []interface{}{
		r.o.ID, r.o.UserID, r.o.OrderNumber, r.o.Sequence, r.o.Timestamp.Format(gen.TimestampLayout),
		string(r.o.Category), r.o.Quantity, r.o.Amount, r.o.Currency, string(r.o.PaymentMethod),
		r.o.DiscountAmount, r.o.DiscountCode,
	}
}

func userRows(users []*gen.User) []sink.Row {
	rows := make([]sink.Row, len(users))
	for i, u := range users {
		rows[i] = userRow{u}
	}
	return rows
}

func eventRows(events []*gen.Event) []sink.Row {
	rows := make([]sink.Row, len(events))
	for i, e := range events {
		rows[i] = eventRow{e}
	}
	return rows
}

func orderRows(orders []*gen.Order) []sink.Row {
	rows := make([]sink.Row, len(orders))
	for i, o := range orders {
		rows[i] = orderRow{o}
	}
	return rows
}
